package transcribe

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/audio"
	"github.com/chaz8081/signspeak/internal/sarvam"
)

// RemoteTranscriber encodes audio as WAV and sends it to the speech API.
type RemoteTranscriber struct {
	api          SpeechAPI
	mode         string
	languageCode string
	sampleRate   uint32
	channels     uint32
	saveDir      string
	logger       *zap.Logger
}

var _ Transcriber = (*RemoteTranscriber)(nil)

// Mode returns "translate" or "transcribe".
func (t *RemoteTranscriber) Mode() string { return t.mode }

// Process encodes samples captured at the configured format and returns the transcript.
func (t *RemoteTranscriber) Process(ctx context.Context, samples []float32) (string, error) {
	res, err := t.ProcessSamples(ctx, samples)
	if err != nil {
		return "", err
	}
	return res.Transcript, nil
}

// ProcessSamples is Process returning the full API result.
func (t *RemoteTranscriber) ProcessSamples(ctx context.Context, samples []float32) (*sarvam.Result, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("transcribe: no audio captured")
	}

	wav, err := audio.EncodeWAV(samples, t.sampleRate, t.channels)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	if t.saveDir != "" {
		path, err := audio.SaveWAV(t.saveDir, wav)
		if err != nil {
			// Archiving is optional; the clip is still sent.
			t.logger.Warn("Could not save recording", zap.Error(err))
		} else {
			t.logger.Debug("Recording saved", zap.String("path", path))
		}
	}

	return t.ProcessWAV(ctx, wav)
}

// ProcessWAV sends an already encoded WAV clip.
func (t *RemoteTranscriber) ProcessWAV(ctx context.Context, wav []byte) (*sarvam.Result, error) {
	return t.ProcessWAVWith(ctx, wav, t.mode, t.languageCode)
}

// ProcessWAVWith sends a WAV clip using an explicit mode and language code.
// Empty values fall back to the configured ones.
func (t *RemoteTranscriber) ProcessWAVWith(ctx context.Context, wav []byte, mode, languageCode string) (*sarvam.Result, error) {
	if mode == "" {
		mode = t.mode
	}
	if languageCode == "" {
		languageCode = t.languageCode
	}

	var (
		res *sarvam.Result
		err error
	)
	switch mode {
	case "translate":
		res, err = t.api.Translate(ctx, wav)
	case "transcribe":
		res, err = t.api.Transcribe(ctx, wav, languageCode)
	default:
		return nil, fmt.Errorf("transcribe: unknown mode %q", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	res.Transcript = strings.TrimSpace(res.Transcript)
	return res, nil
}

// Close is a no-op; the remote backend holds no local resources.
func (t *RemoteTranscriber) Close() error {
	return nil
}
