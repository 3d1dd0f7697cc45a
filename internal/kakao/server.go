package kakao

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewEngine builds the gin engine serving h. mode is a gin mode name; an empty
// mode keeps gin's current setting.
func NewEngine(mode string, h *Handler, logger *zap.Logger) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	h.Register(r)
	return r
}
