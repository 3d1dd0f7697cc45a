// Package kakao exposes the bot as a Kakao i Open Builder skill server.
package kakao

import "github.com/xaenox/school-bot/internal/models"

const skillVersion = "2.0"

// SkillRequest holds the parts of a skill payload the bot reads.
type SkillRequest struct {
	UserRequest struct {
		Utterance string `json:"utterance"`
		User      struct {
			ID     string `json:"id"`
			UserID string `json:"userId"`
		} `json:"user"`
	} `json:"userRequest"`
}

// UserID prefers user.id and falls back to user.userId.
func (r SkillRequest) UserID() string {
	if id := r.UserRequest.User.ID; id != "" {
		return id
	}
	return r.UserRequest.User.UserID
}

type SkillResponse struct {
	Version  string   `json:"version"`
	Template Template `json:"template"`
}

type Template struct {
	Outputs      []Output     `json:"outputs"`
	QuickReplies []QuickReply `json:"quickReplies,omitempty"`
}

type Output struct {
	SimpleText SimpleText `json:"simpleText"`
}

type SimpleText struct {
	Text string `json:"text"`
}

type QuickReply struct {
	Action      string `json:"action"`
	Label       string `json:"label"`
	MessageText string `json:"messageText"`
}

// NewSkillResponse wraps a reply in a single simpleText output.
func NewSkillResponse(reply models.Reply) SkillResponse {
	resp := SkillResponse{
		Version: skillVersion,
		Template: Template{
			Outputs: []Output{{SimpleText: SimpleText{Text: reply.Text}}},
		},
	}
	for _, qr := range reply.QuickReplies {
		resp.Template.QuickReplies = append(resp.Template.QuickReplies, QuickReply{
			Action:      "message",
			Label:       qr.Label,
			MessageText: qr.MessageText,
		})
	}
	return resp
}
