// Package sarvam is a client for the Sarvam AI speech-to-text HTTP API.
//
// Two endpoints are supported:
//   - speech-to-text-translate: transcribes Indic speech into English text
//   - speech-to-text: transcribes speech in the spoken language
package sarvam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.sarvam.ai"
	defaultTimeout = 60 * time.Second

	translatePath  = "/speech-to-text-translate"
	transcribePath = "/speech-to-text"

	// APIKeyHeader carries the subscription key on every request.
	APIKeyHeader = "api-subscription-key"

	fileField    = "file"
	fileName     = "input.wav"
	fileMimeType = "audio/wav"

	maxErrorBody = 4096
)

// Config holds the client settings. APIKey is required.
type Config struct {
	APIKey          string
	BaseURL         string
	TranslateModel  string
	TranscribeModel string
	WithTimestamps  bool
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// Result is a successful transcription.
type Result struct {
	Transcript   string
	LanguageCode string
	// RequestID is generated locally and attached to log lines for the call.
	RequestID string
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sarvam: API returned status %d: %s", e.StatusCode, e.Body)
}

// ErrMissingTranscript is returned when a 2xx response has no transcript field.
var ErrMissingTranscript = errors.New("sarvam: response has no transcript field")

// Client talks to the Sarvam speech API.
type Client struct {
	apiKey          string
	baseURL         string
	translateModel  string
	transcribeModel string
	withTimestamps  bool
	http            *http.Client
	logger          *zap.Logger
}

type apiResponse struct {
	Transcript   *string `json:"transcript"`
	LanguageCode string  `json:"language_code"`
}

// NewClient creates a client. It fails when no API key is configured.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sarvam: API key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	translateModel := cfg.TranslateModel
	if translateModel == "" {
		translateModel = "saaras:v1"
	}
	transcribeModel := cfg.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = "saarika:v1"
	}

	return &Client{
		apiKey:          cfg.APIKey,
		baseURL:         baseURL,
		translateModel:  translateModel,
		transcribeModel: transcribeModel,
		withTimestamps:  cfg.WithTimestamps,
		http:            httpClient,
		logger:          logger,
	}, nil
}

// Translate sends a WAV clip to speech-to-text-translate and returns the
// English transcript.
func (c *Client) Translate(ctx context.Context, wav []byte) (*Result, error) {
	fields := map[string]string{
		"model": c.translateModel,
	}
	return c.post(ctx, translatePath, fields, wav)
}

// Transcribe sends a WAV clip to speech-to-text and returns the transcript
// in the spoken language. An empty languageCode lets the API detect it.
func (c *Client) Transcribe(ctx context.Context, wav []byte, languageCode string) (*Result, error) {
	fields := map[string]string{
		"model": c.transcribeModel,
	}
	if languageCode != "" {
		fields["language_code"] = languageCode
	}
	if c.withTimestamps {
		fields["with_timestamps"] = "true"
	}
	return c.post(ctx, transcribePath, fields, wav)
}

func (c *Client) post(ctx context.Context, path string, fields map[string]string, wav []byte) (*Result, error) {
	if len(wav) == 0 {
		return nil, fmt.Errorf("sarvam: audio is empty")
	}

	body, contentType, err := buildMultipart(fields, wav)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	url := c.baseURL + path
	log := c.logger.With(zap.String("requestID", requestID), zap.String("endpoint", path))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("sarvam: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	log.Debug("Sending audio to speech API",
		zap.Int("audioBytes", len(wav)),
		zap.String("model", fields["model"]))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("Speech API request failed", zap.Error(err))
		return nil, fmt.Errorf("sarvam: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sarvam: read response: %w", err)
	}

	latency := time.Since(start)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody := string(raw)
		if len(errBody) > maxErrorBody {
			errBody = errBody[:maxErrorBody]
		}
		log.Error("Speech API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.Duration("latency", latency),
			zap.String("response", errBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: errBody}
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("sarvam: decode response: %w", err)
	}
	if parsed.Transcript == nil {
		return nil, ErrMissingTranscript
	}

	log.Info("Speech API call completed",
		zap.Duration("latency", latency),
		zap.String("languageCode", parsed.LanguageCode))

	return &Result{
		Transcript:   *parsed.Transcript,
		LanguageCode: parsed.LanguageCode,
		RequestID:    requestID,
	}, nil
}

// buildMultipart encodes form fields and the WAV file part.
func buildMultipart(fields map[string]string, wav []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if err := w.WriteField(name, fields[name]); err != nil {
			return nil, "", fmt.Errorf("sarvam: write field %s: %w", name, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, fileName))
	h.Set("Content-Type", fileMimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("sarvam: create file part: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, "", fmt.Errorf("sarvam: write file part: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("sarvam: close multipart: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

// ErrorMessage renders err as the single-key {"error": ...} object returned
// to callers that expect a JSON error value.
func ErrorMessage(err error) map[string]string {
	if err == nil {
		return nil
	}
	return map[string]string{"error": err.Error()}
}
