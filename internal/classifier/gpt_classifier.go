package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

type GPTResponse struct {
	Intent string `json:"intent"`
}

// GPTClassifier asks an OpenAI model to pick an intent for utterances the
// keyword rules could not place, such as "점심 뭐 나와?".
type GPTClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGPTClassifier builds a classifier; baseURL may be empty for the public API.
// timeout bounds each completion call; zero means no limit beyond the caller's context.
func NewGPTClassifier(apiKey, baseURL, model string, maxTokens int, temperature float64, timeout time.Duration, logger *zap.Logger) *GPTClassifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GPTClassifier{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

const gptPrompt = `You route messages sent to a Korean high school chat bot.
Pick exactly one intent for the message:
- "timetable": class timetable (시간표, 수업, 교시)
- "meal": cafeteria menu (급식, 점심, 메뉴, 밥)
- "calendar_week": school events this week
- "calendar_month": school events or schedule in general
- "none": anything else

Return only a JSON object: {"intent": "<intent>"}

Message: %s`

// Classify returns IntentFallback when the model answers "none" or something
// unknown; an error means the model could not be asked at all.
func (c *GPTClassifier) Classify(ctx context.Context, text string) (models.Intent, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(gptPrompt, text),
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return models.IntentFallback, fmt.Errorf("gpt completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.IntentFallback, fmt.Errorf("gpt completion returned no choices")
	}

	var gptResponse GPTResponse
	response := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(response), &gptResponse); err != nil {
		c.logger.Error("Failed to parse GPT response",
			zap.Error(err),
			zap.String("response", response))
		return models.IntentFallback, fmt.Errorf("parse gpt response: %w", err)
	}

	intent := models.Intent(strings.ToLower(strings.TrimSpace(gptResponse.Intent)))
	if !intent.IsContent() {
		return models.IntentFallback, nil
	}
	return intent, nil
}
