// Package server exposes transcription and sign lookup over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/audio"
	"github.com/chaz8081/signspeak/internal/sarvam"
	"github.com/chaz8081/signspeak/internal/signs"
)

const (
	maxUpload       = "25M"
	shutdownTimeout = 10 * time.Second
)

// Transcriber sends an encoded WAV clip to the speech API. Empty mode and
// languageCode select the configured defaults.
type Transcriber interface {
	ProcessWAVWith(ctx context.Context, wav []byte, mode, languageCode string) (*sarvam.Result, error)
}

// Server is the HTTP surface.
type Server struct {
	echo        *echo.Echo
	transcriber Transcriber
	dict        *signs.Dictionary
	planOpts    signs.Options
	logger      *zap.Logger
}

// New wires the routes. transcriber may be nil, in which case the
// transcription endpoint answers 503.
func New(transcriber Transcriber, dict *signs.Dictionary, planOpts signs.Options, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:        e,
		transcriber: transcriber,
		dict:        dict,
		planOpts:    planOpts,
		logger:      logger,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxUpload))
	e.Use(s.requestLogger())

	e.GET("/healthz", s.health)

	v1 := e.Group("/v1")
	v1.POST("/transcribe", s.transcribe)
	v1.GET("/signs/:word", s.lookupSign)
	v1.POST("/signs/plan", s.planSigns)

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()
	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			s.logger.Debug("HTTP request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)))
			return nil
		}
	}
}

func errorJSON(c echo.Context, status int, err error) error {
	return c.JSON(status, sarvam.ErrorMessage(err))
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"words":  s.dict.Len(),
	})
}

// TranscribeRequest is the JSON form of POST /v1/transcribe.
type TranscribeRequest struct {
	AudioBase64  string `json:"audio_base64"`
	Mode         string `json:"mode"`
	LanguageCode string `json:"language_code"`
}

// TranscribeResponse is returned on success.
type TranscribeResponse struct {
	Transcript   string  `json:"transcript"`
	LanguageCode string  `json:"language_code,omitempty"`
	RequestID    string  `json:"request_id"`
	Duration     float64 `json:"duration_seconds"`
}

func (s *Server) transcribe(c echo.Context) error {
	if s.transcriber == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("transcription is not configured"))
	}

	req, wav, err := readAudio(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	switch req.Mode {
	case "", "translate", "transcribe":
	default:
		return errorJSON(c, http.StatusBadRequest, fmt.Errorf("unknown mode %q", req.Mode))
	}

	clip, err := audio.DecodeWAV(wav)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}

	res, err := s.transcriber.ProcessWAVWith(c.Request().Context(), wav, req.Mode, req.LanguageCode)
	if err != nil {
		s.logger.Warn("Transcription failed", zap.Error(err))
		return errorJSON(c, statusFor(err), err)
	}

	return c.JSON(http.StatusOK, TranscribeResponse{
		Transcript:   res.Transcript,
		LanguageCode: res.LanguageCode,
		RequestID:    res.RequestID,
		Duration:     clip.Duration(),
	})
}

// readAudio accepts either a multipart upload in the "file" field or a JSON
// body carrying base64 audio.
func readAudio(c echo.Context) (TranscribeRequest, []byte, error) {
	var req TranscribeRequest

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return req, nil, fmt.Errorf("missing file field: %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return req, nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		wav, err := io.ReadAll(f)
		if err != nil {
			return req, nil, fmt.Errorf("read upload: %w", err)
		}
		req.Mode = c.FormValue("mode")
		req.LanguageCode = c.FormValue("language_code")
		return req, wav, nil
	}

	if err := c.Bind(&req); err != nil {
		return req, nil, errors.New("invalid request body")
	}
	if req.AudioBase64 == "" {
		return req, nil, errors.New("audio_base64 is required")
	}
	wav, err := audio.DecodeBase64(req.AudioBase64)
	if err != nil {
		return req, nil, err
	}
	return req, wav, nil
}

func statusFor(err error) int {
	var apiErr *sarvam.APIError
	switch {
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, sarvam.ErrMissingTranscript):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) lookupSign(c echo.Context) error {
	word := c.Param("word")
	loc, ok := s.dict.Lookup(word)
	if !ok {
		return errorJSON(c, http.StatusNotFound, fmt.Errorf("no video mapped for word %q", word))
	}
	return c.JSON(http.StatusOK, signs.Step{Word: word, Locator: loc, Mapped: true})
}

// PlanRequest is the body of POST /v1/signs/plan.
type PlanRequest struct {
	Sentence string `json:"sentence"`
}

// PlanResponse lists the steps for a sentence in playback order.
type PlanResponse struct {
	Steps []signs.Step `json:"steps"`
}

func (s *Server) planSigns(c echo.Context) error {
	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request body"))
	}
	steps := s.dict.Plan(req.Sentence, s.planOpts)
	if steps == nil {
		steps = []signs.Step{}
	}
	return c.JSON(http.StatusOK, PlanResponse{Steps: steps})
}
