package ui

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"time"

	"gosieve/app"
	"gosieve/internal/config"
	"gosieve/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP shell around the pipeline service. It keeps no
// per-user data: every request carries its own upload.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	pipeline *app.PipelineService
	metrics  *middleware.Metrics
}

// NewServer creates a server with routes and middleware installed
func NewServer(cfg *config.Config, pipeline *app.PipelineService) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:   gin.Default(),
		config:   cfg,
		pipeline: pipeline,
		metrics:  middleware.NewMetrics(),
	}
	s.router.MaxMultipartMemory = cfg.Server.MaxUploadBytes()

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the router, for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.router.Group("/api")
	api.POST("/clean", s.handleClean)
	api.POST("/export", s.handleExport)
	api.POST("/chart", s.handleChart)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[Server] Shutting down (timeout %v)", s.config.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
