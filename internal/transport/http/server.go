package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/pkg/log"
)

// Server is the HTTP surface: chat turns, direct search, ingestion and
// health. It implements srv.Service.
type Server struct {
	cfg        *config.AppConfig
	controller ChatController
	searcher   Searcher
	ingester   Ingester
	health     HealthChecker

	router *gin.Engine
	server *http.Server
}

func NewServer(cfg *config.AppConfig, controller ChatController, searcher Searcher, ingester Ingester, health HealthChecker) *Server {
	s := &Server{
		cfg:        cfg,
		controller: controller,
		searcher:   searcher,
		ingester:   ingester,
		health:     health,
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	if !config.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    s.cfg.GetHTTPAddr(),
		Handler: s.router,
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/chat", s.chat)
		api.POST("/chat/stream", s.chatStream)
		api.GET("/chat/sessions/:session_id", s.session)

		search := api.Group("/search")
		{
			search.POST("/vector", s.searchHandler("vector"))
			search.POST("/graph", s.searchHandler("graph"))
			search.POST("/hybrid", s.searchHandler("hybrid"))
		}

		api.POST("/ingest/documents", s.ingestDocument)
	}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.server.Addr).Msg("starting http server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("stopping http server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, Cache-Control")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
