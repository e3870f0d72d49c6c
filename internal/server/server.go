// Package server exposes campaignforge over HTTP: the generic resource
// API the admin frontend consumes, the wizard endpoints, a websocket
// feed of process data changes, and runtime stats.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dadmor/campaignforge/internal/db"
	"github.com/dadmor/campaignforge/internal/metrics"
	"github.com/dadmor/campaignforge/internal/service"
	"github.com/dadmor/campaignforge/internal/wizard"
)

// DataAPI is the resource surface backing /api/data. *db.Client
// satisfies it; tests substitute fakes.
type DataAPI interface {
	List(ctx context.Context, resource string, opts db.ListOptions) ([]map[string]any, int, error)
	Get(ctx context.Context, resource, id string) (map[string]any, error)
	Create(ctx context.Context, resource string, values map[string]any) (map[string]any, error)
	Update(ctx context.Context, resource, id string, values map[string]any) (map[string]any, error)
	Delete(ctx context.Context, resource, id string) error
}

// Config holds the HTTP server configuration.
type Config struct {
	Port string

	// APIToken, when set, gates /api behind a bearer token.
	APIToken string
}

// Server wires the wizard engine, services and data API into a gin router.
type Server struct {
	cfg          Config
	engine       *wizard.Engine
	campaigns    *service.CampaignService
	registration *service.RegistrationService
	data         DataAPI
	collector    *metrics.Collector
	logger       *slog.Logger
	router       *gin.Engine
}

// New creates the HTTP server and builds its routes.
func New(cfg Config, engine *wizard.Engine, campaigns *service.CampaignService,
	registration *service.RegistrationService, data DataAPI,
	collector *metrics.Collector, logger *slog.Logger) *Server {

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:          cfg,
		engine:       engine,
		campaigns:    campaigns,
		registration: registration,
		data:         data,
		collector:    collector,
		logger:       logger,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(s.requireToken())
	{
		api.GET("/stats", s.handleStats)

		data := api.Group("/data")
		{
			data.GET("/:resource", s.handleList)
			data.POST("/:resource", s.handleCreate)
			data.GET("/:resource/:id", s.handleGet)
			data.PATCH("/:resource/:id", s.handleUpdate)
			data.DELETE("/:resource/:id", s.handleDelete)
		}

		wiz := api.Group("/wizard")
		{
			wiz.GET("/:process", s.handleWizardState)
			wiz.POST("/:process/enter", s.handleWizardEnter)
			wiz.POST("/:process/advance", s.handleWizardAdvance)
			wiz.POST("/:process/leave", s.handleWizardLeave)
			wiz.POST("/:process/restore", s.handleWizardRestore)
			wiz.POST("/:process/save", s.handleWizardSave)
			wiz.DELETE("/:process", s.handleWizardDiscard)
		}
	}

	// The websocket feed authenticates via query token because browser
	// websocket clients cannot set headers.
	router.GET("/ws/wizard/:process", s.handleWizardWatch)

	return router
}

// requestLog logs each request the way the rest of the app logs: slog,
// not gin's own writer.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// requireToken enforces the configured bearer token. A blank token
// leaves the API open, which is the local-development default.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.APIToken == "" {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		if strings.TrimPrefix(auth, "Bearer ") != s.cfg.APIToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleStats(c *gin.Context) {
	if s.collector == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.collector.Snapshot())
}
