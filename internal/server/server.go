package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/penzflow/penzflow-sales-service/internal/config"
	"github.com/penzflow/penzflow-sales-service/internal/handlers"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
)

const HeaderRequestID = "X-Request-ID"

// Metrics observes served requests and exposes the scrape endpoint.
type Metrics interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
	Handler() http.Handler
}

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	metrics    Metrics
	httpServer *http.Server
	logger     *logging.Logger
}

// New builds the router. metrics may be nil, in which case /metrics is not
// routed.
func New(h *handlers.Handlers, cfg *config.Config, metrics Metrics) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		metrics:  metrics,
		logger:   logging.NewLogger("http"),
	}

	router.Use(gin.Recovery(), s.requestID(), s.accessLog())
	if metrics != nil {
		router.Use(s.observe())
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	if s.config.Features.EnableDebugEndpoint {
		s.router.GET("/debug", s.handlers.Debug)
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/auth/login", s.handlers.Login)

		v1.POST("/quotes", s.handlers.Quote)
		v1.GET("/pricing/tiers", s.handlers.PricingTiers)

		v1.GET("/products", s.handlers.ListProducts)
		v1.GET("/products/:id", s.handlers.GetProduct)

		v1.GET("/customers/:id", s.handlers.GetCustomer)

		v1.POST("/orders", s.handlers.CreateOrder)
		v1.GET("/orders", s.handlers.ListOrders)
		v1.GET("/orders/:id", s.handlers.GetOrder)
		v1.GET("/orders/number/:number", s.handlers.GetOrderByNumber)
		v1.PATCH("/orders/:id/status", s.handlers.UpdateOrderStatus)
		v1.POST("/orders/:id/submit", s.handlers.SubmitOrder)
		v1.POST("/orders/:id/approve", s.handlers.ApproveOrder)
		v1.POST("/orders/:id/reject", s.handlers.RejectOrder)
	}
}

// requestID propagates X-Request-ID, minting one when absent.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request served", logging.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": logging.RequestID(c.Request.Context()),
		})
	}
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
