package tokend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// corsMiddleware lets the browser shell call the service from its own
// origin; the allowed verbs are fixed, only the origin varies.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(mode, allowedOrigin string, h *Handler) *gin.Engine {
	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(allowedOrigin))

	r.POST("/session", h.handleSession)
	r.POST("/start_interview", h.handleStartInterview)

	log.Info().Str("module", "tokend").Str("origin", allowedOrigin).Msg("router setup")
	return r
}
