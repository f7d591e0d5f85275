// Package stubserver is a local stand-in for the answering service. It
// speaks the same wire contract: POST /chat {query} -> {response}, and
// POST /voice with a multipart "audio" file -> {text}.
package stubserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"xenora/log"
	"xenora/transcriber"
)

// Responder produces the answer for one query.
type Responder func(ctx context.Context, query string) (string, error)

// Echo answers every query by quoting it back.
func Echo(_ context.Context, query string) (string, error) {
	return fmt.Sprintf("You asked: %s", query), nil
}

type ChatRequest struct {
	Query string `json:"query"`
}

type Server struct {
	e         *echo.Echo
	respond   Responder
	voice     transcriber.Transcriber
	maxUpload int64
}

// New builds the server. voice may be nil, in which case /voice answers
// 503.
func New(respond Responder, voice transcriber.Transcriber) *Server {
	if respond == nil {
		respond = Echo
	}
	s := &Server{
		e:         echo.New(),
		respond:   respond,
		voice:     voice,
		maxUpload: 25 << 20,
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Info(fmt.Sprintf("stub %s %s %d %s", v.Method, v.URI, v.Status, v.Latency))
			return nil
		},
	}))
	s.RegisterRoutes(s.e)
	return s
}

func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/chat", s.Chat)
	e.POST("/voice", s.Voice)
	e.GET("/healthz", s.Health)
}

func (s *Server) Handler() http.Handler { return s.e }

// Start blocks serving addr until Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Chat answers a query.
// POST /chat
func (s *Server) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil || req.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No query provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	answer, err := s.respond(ctx, req.Query)
	if err != nil {
		log.Errorf("stub responder: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"response": answer})
}

// Voice transcribes an uploaded recording.
// POST /voice
func (s *Server) Voice(c echo.Context) error {
	if s.voice == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "speech transcription not configured"})
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No audio provided"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUpload))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	if format == "" {
		format = "wav"
	}
	res, err := s.voice.Transcribe(c.Request().Context(), data, format)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"text": strings.TrimSpace(res.Text)})
}

// Health reports liveness.
// GET /healthz
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
