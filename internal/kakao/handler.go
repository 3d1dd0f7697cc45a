package kakao

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/bot"
	"github.com/xaenox/school-bot/internal/models"
)

// Responder answers a single utterance.
type Responder interface {
	Handle(ctx context.Context, userID, text string, now time.Time) models.Reply
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	bot      Responder
	registry Pinger
	location *time.Location
	clock    func() time.Time
	logger   *zap.Logger
}

func NewHandler(b Responder, registry Pinger, location *time.Location, logger *zap.Logger) *Handler {
	return &Handler{
		bot:      b,
		registry: registry,
		location: location,
		clock:    time.Now,
		logger:   logger,
	}
}

// Register mounts the webhook and health routes.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/webhook", h.Webhook)
	r.GET("/health", h.Health)
}

// Webhook answers a skill request. It always responds 200 with a skill
// payload, even when the body cannot be decoded.
func (h *Handler) Webhook(c *gin.Context) {
	logger := requestLogger(c, h.logger)

	var req SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to decode skill request", zap.Error(err))
		c.JSON(http.StatusOK, NewSkillResponse(bot.ParseFailureReply()))
		return
	}

	now := h.clock().In(h.location)
	reply := h.bot.Handle(c.Request.Context(), req.UserID(), req.UserRequest.Utterance, now)
	c.JSON(http.StatusOK, NewSkillResponse(reply))
}

func (h *Handler) Health(c *gin.Context) {
	registry := "ok"
	if h.registry != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.registry.Ping(ctx); err != nil {
			requestLogger(c, h.logger).Warn("Registry ping failed", zap.Error(err))
			registry = "unavailable"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "registry": registry})
}
