// Package api serves the site's routes as JSON view models. Each request is
// bound to a visitor session whose token and chat widget live in
// pkg/session; backend data is loaded through pkg/apiclient and tracked with
// pkg/fetch.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/kientrucanlac/anlac/pkg/apiclient"
	"github.com/kientrucanlac/anlac/pkg/config"
	"github.com/kientrucanlac/anlac/pkg/session"
	"github.com/kientrucanlac/anlac/pkg/site"
)

// Server is the HTTP server.
type Server struct {
	cfg        *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	sessions   *session.Manager
	catalog    *site.Catalog
	apiCfg     apiclient.Config
	transport  http.RoundTripper
	redis      *redis.Client // nil unless configured
	logger     *slog.Logger

	rateLimitPrefix string
}

// DefaultRateLimitPrefix namespaces the chat rate limit buckets in Redis.
const DefaultRateLimitPrefix = "anlac:ratelimit:chat:"

// NewServer creates the server and registers all routes.
func NewServer(cfg *config.Config, sessions *session.Manager, catalog *site.Catalog) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:      cfg,
		engine:   gin.New(),
		sessions: sessions,
		catalog:  catalog,
		apiCfg: apiclient.Config{
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
		},
		transport:       http.DefaultTransport,
		logger:          slog.With("component", "api"),
		rateLimitPrefix: DefaultRateLimitPrefix,
	}
	if len(cfg.Server.TrustedProxies) > 0 {
		if err := s.engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			s.logger.Warn("Ignoring invalid trusted proxies", "error", err)
		}
	}
	s.setupRoutes()
	return s
}

// SetRedis enables the Redis-backed pieces (health check, chat rate limit).
func (s *Server) SetRedis(client *redis.Client) {
	s.redis = client
}

// SetBaseTransport replaces the RoundTripper shared by all per-visitor
// backend clients.
func (s *Server) SetBaseTransport(rt http.RoundTripper) {
	s.transport = rt
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	e := s.engine
	e.Use(gin.Recovery(), requestLogger(s.logger), securityHeaders())

	e.GET("/health", s.healthHandler)

	pages := e.Group("/", s.visitorSession())
	pages.GET("/", s.homeHandler)
	pages.GET("/services", s.servicesHandler)
	pages.GET("/portfolio", s.portfolioHandler)
	pages.GET("/project/:id", s.projectHandler)
	pages.GET("/blog", s.blogHandler)
	pages.GET("/about", s.aboutHandler)
	pages.GET("/contact", s.contactPageHandler)
	pages.POST("/contact", s.submitContactHandler)
	pages.GET("/login", s.loginPageHandler)
	pages.POST("/login", s.loginHandler)
	pages.POST("/logout", s.logoutHandler)

	widget := e.Group("/api/chat", s.visitorSession(), s.rateLimit())
	widget.GET("", s.getChatHandler)
	widget.POST("/toggle", s.toggleChatHandler)
	widget.PUT("/input", s.setChatInputHandler)
	widget.POST("/messages", s.sendChatMessageHandler)
}

// Start serves on addr until Shutdown. It returns http.ErrServerClosed after
// a graceful shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// backend builds a client acting for the visitor behind h. Clients are cheap;
// they share s.transport and therefore its connection pool.
func (s *Server) backend(h *session.Handle) (*apiclient.Client, error) {
	return apiclient.New(s.apiCfg, h, apiclient.WithBaseTransport(s.transport))
}
