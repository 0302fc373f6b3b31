// Package transcribe turns captured audio into text.
//
// Supported modes (both backed by the Sarvam speech API):
//   - translate: speech in any supported Indic language to English text (default)
//   - transcribe: speech to text in the spoken language
package transcribe

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/config"
	"github.com/chaz8081/signspeak/internal/sarvam"
)

// Transcriber converts audio samples to text.
type Transcriber interface {
	// Process transcribes float32 audio samples to text.
	Process(ctx context.Context, samples []float32) (string, error)
	// Close releases backend resources.
	Close() error
}

// SpeechAPI is the subset of the speech client used for recognition.
type SpeechAPI interface {
	Translate(ctx context.Context, wav []byte) (*sarvam.Result, error)
	Transcribe(ctx context.Context, wav []byte, languageCode string) (*sarvam.Result, error)
}

// New creates a RemoteTranscriber for the configured API mode.
func New(cfg *config.Config, api SpeechAPI, logger *zap.Logger) (*RemoteTranscriber, error) {
	switch cfg.API.Mode {
	case "translate", "transcribe", "":
	default:
		return nil, fmt.Errorf("transcribe: unknown mode %q (supported: translate, transcribe)", cfg.API.Mode)
	}
	mode := cfg.API.Mode
	if mode == "" {
		mode = "translate"
	}
	return &RemoteTranscriber{
		api:          api,
		mode:         mode,
		languageCode: cfg.API.LanguageCode,
		sampleRate:   cfg.Audio.SampleRate,
		channels:     cfg.Audio.Channels,
		saveDir:      cfg.Audio.SaveDir,
		logger:       logger,
	}, nil
}
