package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ufwatch/ufwatch/internal/dockernet"
	"github.com/ufwatch/ufwatch/internal/recent"
)

// Server provides a read-only HTTP API over the running pipeline:
// health, the active network registry snapshot, recent enriched events,
// and Prometheus metrics.
type Server struct {
	addr       string
	registry   *dockernet.Handle
	events     *recent.Buffer
	instanceID string

	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, registry *dockernet.Handle, events *recent.Buffer) *Server {
	if addr == "" {
		addr = "127.0.0.1:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:       addr,
		registry:   registry,
		events:     events,
		instanceID: uuid.NewString(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s.registerRoutes(r)

	s.server = &http.Server{
		Handler:           r,
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/networks", s.handleNetworks)
	r.GET("/api/events/recent", s.handleRecentEvents)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"instance_id": s.instanceID,
		"uptime":      time.Since(s.startTime).String(),
		"networks":    s.registry.Current().Len(),
		"event_count": s.events.Total(),
	})
}

func (s *Server) handleNetworks(c *gin.Context) {
	reg := s.registry.Current()
	c.JSON(http.StatusOK, gin.H{
		"count":    reg.Len(),
		"networks": reg.Networks(),
	})
}

func (s *Server) handleRecentEvents(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	events := s.events.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
