package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/config"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/sse"
)

// Responder produces the event stream for one chat message.
type Responder interface {
	Respond(ctx context.Context, conversationID, message string) <-chan sse.Event
}

// Server is the HTTP surface: health and readiness, plus the chat
// endpoint in streaming (SSE) and non-streaming variants.
type Server struct {
	engine    *gin.Engine
	responder Responder
	ready     func() bool
	cfg       config.ServerConfig
}

type chatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id"`
	Stream         *bool  `json:"stream"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	IndexReady bool   `json:"index_ready"`
}

func New(responder Responder, ready func() bool, cfg config.ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(), corsMiddleware(cfg.AllowedOrigins))

	s := &Server{
		engine:    engine,
		responder: responder,
		ready:     ready,
		cfg:       cfg,
	}

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.POST("/chat", s.handleChat)
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:     s.engine,
		ReadTimeout: 15 * time.Second,
		// No write timeout: chat responses stream for as long as
		// generation takes.
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "PDF Chatbot API is online."})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().Format(time.RFC3339),
		IndexReady: s.ready(),
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "message is required"})
		return
	}
	if !s.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Document index is not ready yet. Try again shortly."})
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = models.DefaultConversationID
	}

	events := s.responder.Respond(c.Request.Context(), conversationID, req.Message)

	if req.Stream != nil && !*req.Stream {
		s.respondBuffered(c, events)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	enc := sse.NewEncoder(c.Writer)
	for ev := range events {
		if err := enc.Write(ev); err != nil {
			log.Debug().Err(err).Msg("Client stopped consuming stream")
			return
		}
	}
}

// respondBuffered drains the stream and answers with a single JSON body,
// the non-streaming variant of the chat endpoint.
func (s *Server) respondBuffered(c *gin.Context, events <-chan sse.Event) {
	var full strings.Builder
	for ev := range events {
		switch ev.Type {
		case sse.TypeContent:
			full.WriteString(ev.Content)
		case sse.TypeError:
			c.JSON(http.StatusBadGateway, gin.H{"detail": ev.Content})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"response": full.String()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)
		c.Next()
		log.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] || allowed["*"] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
