package ui

import (
	"net/http"

	"gosieve/ui/middleware"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID())
	s.router.Use(s.metrics.Middleware())
	s.router.Use(s.limitUploadSize())
}

// limitUploadSize caps request bodies at the configured upload size plus
// room for the multipart envelope
func (s *Server) limitUploadSize() gin.HandlerFunc {
	limit := s.config.Server.MaxUploadBytes() + 1<<20
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
