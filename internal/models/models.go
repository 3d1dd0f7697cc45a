package models

import "time"

// UserProfile is the registered grade/class of a chat user.
type UserProfile struct {
	ID          string    `json:"id"`
	Grade       int       `json:"grade"`
	ClassNumber int       `json:"class_number"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Intent is the classified purpose of an utterance.
type Intent string

const (
	IntentTimetable     Intent = "timetable"
	IntentMeal          Intent = "meal"
	IntentCalendarWeek  Intent = "calendar_week"
	IntentCalendarMonth Intent = "calendar_month"
	IntentFallback      Intent = "fallback"
)

// IsContent reports whether the intent is answered by a content provider.
func (i Intent) IsContent() bool {
	switch i {
	case IntentTimetable, IntentMeal, IntentCalendarWeek, IntentCalendarMonth:
		return true
	}
	return false
}

// QuickReply is a suggested follow-up. Tapping it resubmits MessageText as a new utterance.
type QuickReply struct {
	Label       string `json:"label"`
	MessageText string `json:"messageText"`
}

// Reply is the platform independent answer to one utterance.
type Reply struct {
	Text         string       `json:"text"`
	QuickReplies []QuickReply `json:"quickReplies,omitempty"`
}

// NewReply builds a Reply, keeping quick replies in the given order.
func NewReply(text string, quickReplies ...QuickReply) Reply {
	r := Reply{Text: text}
	if len(quickReplies) > 0 {
		r.QuickReplies = make([]QuickReply, len(quickReplies))
		copy(r.QuickReplies, quickReplies)
	}
	return r
}
