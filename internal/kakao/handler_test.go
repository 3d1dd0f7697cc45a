package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/bot"
	"github.com/xaenox/school-bot/internal/classifier"
	"github.com/xaenox/school-bot/internal/models"
	"github.com/xaenox/school-bot/internal/provider"
	"github.com/xaenox/school-bot/internal/storage"
)

var kst = time.FixedZone("KST", 9*60*60)

type recordingResponder struct {
	userID, text string
	now          time.Time
	reply        models.Reply
}

func (r *recordingResponder) Handle(ctx context.Context, userID, text string, now time.Time) models.Reply {
	r.userID, r.text, r.now = userID, text, now
	return r.reply
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type failingMeal struct{}

func (failingMeal) Meal(ctx context.Context, date time.Time) provider.Result {
	return provider.Failure("급식", errors.New("connection reset"))
}

func newTestEngine(h *Handler) *gin.Engine {
	return NewEngine(gin.TestMode, h, zap.NewNop())
}

func post(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, SkillResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp SkillResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func skillBody(userID, utterance string) string {
	b, _ := json.Marshal(map[string]any{
		"userRequest": map[string]any{
			"utterance": utterance,
			"user":      map[string]any{"id": userID},
		},
	})
	return string(b)
}

func TestWebhook_PassesUtteranceAndLocalTime(t *testing.T) {
	responder := &recordingResponder{reply: models.NewReply("hi", models.QuickReply{Label: "a", MessageText: "b"})}
	h := NewHandler(responder, nil, kst, zap.NewNop())
	h.clock = func() time.Time { return time.Date(2025, 9, 2, 16, 30, 0, 0, time.UTC) }

	w, resp := post(t, newTestEngine(h), skillBody("user-1", "내일 급식"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "user-1", responder.userID)
	assert.Equal(t, "내일 급식", responder.text)
	assert.Equal(t, kst, responder.now.Location())
	assert.Equal(t, 3, responder.now.Day(), "16:30 UTC is already the next day in Seoul")

	assert.Equal(t, "2.0", resp.Version)
	require.Len(t, resp.Template.Outputs, 1)
	assert.Equal(t, "hi", resp.Template.Outputs[0].SimpleText.Text)
	assert.Equal(t, []QuickReply{{Action: "message", Label: "a", MessageText: "b"}}, resp.Template.QuickReplies)
}

func TestWebhook_UserIDFallback(t *testing.T) {
	responder := &recordingResponder{reply: models.NewReply("ok")}
	h := NewHandler(responder, nil, kst, zap.NewNop())

	post(t, newTestEngine(h), `{"userRequest":{"utterance":"오늘 급식","user":{"userId":"legacy-7"}}}`)

	assert.Equal(t, "legacy-7", responder.userID)
}

func TestWebhook_MalformedBody(t *testing.T) {
	responder := &recordingResponder{}
	h := NewHandler(responder, nil, kst, zap.NewNop())

	for _, body := range []string{"", "{not json", `{"userRequest": 5}`} {
		w, resp := post(t, newTestEngine(h), body)

		assert.Equal(t, http.StatusOK, w.Code, body)
		assert.Equal(t, "요청 파싱 실패", resp.Template.Outputs[0].SimpleText.Text)
		assert.NotEmpty(t, resp.Template.QuickReplies)
	}
	assert.Empty(t, responder.userID)
}

func TestWebhook_EndToEnd(t *testing.T) {
	store := storage.NewMemoryStorage()
	b := bot.New(store, classifier.NewKeywordClassifier(), bot.Providers{Meal: failingMeal{}}, zap.NewNop())
	h := NewHandler(b, store, kst, zap.NewNop())
	h.clock = func() time.Time { return time.Date(2025, 9, 3, 9, 0, 0, 0, kst) }
	r := newTestEngine(h)

	_, resp := post(t, r, skillBody("", "오늘 급식"))
	assert.Equal(t, "사용자 ID를 확인할 수 없습니다.", resp.Template.Outputs[0].SimpleText.Text)

	_, resp = post(t, r, skillBody("u1", "오늘 급식"))
	require.Len(t, resp.Template.QuickReplies, 3)
	assert.Equal(t, "2학년 8반", resp.Template.QuickReplies[0].Label)
	assert.Equal(t, "1학년 1반", resp.Template.QuickReplies[1].Label)
	assert.Equal(t, "학년/반 도움말", resp.Template.QuickReplies[2].Label)

	_, resp = post(t, r, skillBody("u1", "3 5"))
	assert.Contains(t, resp.Template.Outputs[0].SimpleText.Text, "3학년 5반")

	w, resp := post(t, r, skillBody("u1", "오늘 급식"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-09-03 급식\n급식 불러오기 실패: connection reset", resp.Template.Outputs[0].SimpleText.Text)
	assert.Len(t, resp.Template.QuickReplies, 5)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		registry Pinger
		want     string
	}{
		{"no registry", nil, "ok"},
		{"registry up", pingFunc(func(context.Context) error { return nil }), "ok"},
		{"registry down", pingFunc(func(context.Context) error { return errors.New("refused") }), "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&recordingResponder{}, tt.registry, kst, zap.NewNop())
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			newTestEngine(h).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "ok", body["status"])
			assert.Equal(t, tt.want, body["registry"])
		})
	}
}

func TestRequestLogger_KeepsIncomingRequestID(t *testing.T) {
	h := NewHandler(&recordingResponder{}, nil, kst, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	newTestEngine(h).ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
