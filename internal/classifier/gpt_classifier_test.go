package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

func newGPTServer(t *testing.T, status int, content string) *GPTClassifier {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(server.Close)
	return NewGPTClassifier("test-key", server.URL+"/v1", "gpt-4o-mini", 20, 0, 5*time.Second, zap.NewNop())
}

func TestGPTClassifier_Classify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.Intent
		wantErr bool
	}{
		{"meal", `{"intent":"meal"}`, models.IntentMeal, false},
		{"timetable with padding", ` {"intent":" Timetable "} `, models.IntentTimetable, false},
		{"calendar week", `{"intent":"calendar_week"}`, models.IntentCalendarWeek, false},
		{"none", `{"intent":"none"}`, models.IntentFallback, false},
		{"register is not allowed", `{"intent":"register"}`, models.IntentFallback, false},
		{"not json", `meal`, models.IntentFallback, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGPTServer(t, http.StatusOK, tt.content)
			got, err := c.Classify(context.Background(), "점심 뭐 나와?")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGPTClassifier_APIError(t *testing.T) {
	c := newGPTServer(t, http.StatusTooManyRequests, "")
	got, err := c.Classify(context.Background(), "점심 뭐 나와?")
	assert.Error(t, err)
	assert.Equal(t, models.IntentFallback, got)
}

func TestGPTClassifier_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)
	c := NewGPTClassifier("test-key", server.URL+"/v1", "gpt-4o-mini", 20, 0, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	got, err := c.Classify(context.Background(), "점심 뭐 나와?")

	assert.Error(t, err)
	assert.Equal(t, models.IntentFallback, got)
	assert.Less(t, time.Since(start), time.Second)
}
