package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/chaz8081/signspeak/internal/audio"
	"github.com/chaz8081/signspeak/internal/config"
	"github.com/chaz8081/signspeak/internal/sarvam"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	calls    []string
	lastWAV  []byte
	lastLang string
	result   *sarvam.Result
	err      error
}

func (f *fakeAPI) Translate(_ context.Context, wav []byte) (*sarvam.Result, error) {
	f.calls = append(f.calls, "translate")
	f.lastWAV = wav
	return f.reply()
}

func (f *fakeAPI) Transcribe(_ context.Context, wav []byte, lang string) (*sarvam.Result, error) {
	f.calls = append(f.calls, "transcribe")
	f.lastWAV = wav
	f.lastLang = lang
	return f.reply()
}

func (f *fakeAPI) reply() (*sarvam.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	return &res, nil
}

func newTestTranscriber(t *testing.T, mode string, api SpeechAPI) *RemoteTranscriber {
	t.Helper()
	cfg := config.Default()
	cfg.API.Mode = mode
	cfg.API.LanguageCode = "ta-IN"
	tr, err := New(cfg, api, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr
}

func TestNewUnknownMode(t *testing.T) {
	cfg := config.Default()
	cfg.API.Mode = "whisper"
	if _, err := New(cfg, &fakeAPI{}, zaptest.NewLogger(t)); err == nil {
		t.Error("New() should reject unknown mode")
	}
}

func TestNewEmptyModeDefaultsToTranslate(t *testing.T) {
	tr := newTestTranscriber(t, "", &fakeAPI{})
	if tr.Mode() != "translate" {
		t.Errorf("Mode() = %q, want translate", tr.Mode())
	}
}

func TestProcessTranslate(t *testing.T) {
	api := &fakeAPI{result: &sarvam.Result{Transcript: "  he want apple \n"}}
	tr := newTestTranscriber(t, "translate", api)

	text, err := tr.Process(context.Background(), make([]float32, 1600))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if text != "he want apple" {
		t.Errorf("Process() = %q, want trimmed transcript", text)
	}
	if len(api.calls) != 1 || api.calls[0] != "translate" {
		t.Errorf("calls = %v, want [translate]", api.calls)
	}

	clip, err := audio.DecodeWAV(api.lastWAV)
	if err != nil {
		t.Fatalf("sent audio is not a valid WAV: %v", err)
	}
	if clip.SampleRate != 16000 || len(clip.Samples) != 1600 {
		t.Errorf("sent clip = %dHz/%d samples, want 16000Hz/1600", clip.SampleRate, len(clip.Samples))
	}
}

func TestProcessTranscribeUsesLanguage(t *testing.T) {
	api := &fakeAPI{result: &sarvam.Result{Transcript: "வணக்கம்"}}
	tr := newTestTranscriber(t, "transcribe", api)

	if _, err := tr.Process(context.Background(), make([]float32, 160)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if api.calls[0] != "transcribe" {
		t.Errorf("calls = %v, want transcribe", api.calls)
	}
	if api.lastLang != "ta-IN" {
		t.Errorf("language = %q, want ta-IN", api.lastLang)
	}
}

func TestProcessWAVWithOverrides(t *testing.T) {
	api := &fakeAPI{result: &sarvam.Result{Transcript: "ok"}}
	tr := newTestTranscriber(t, "translate", api)

	if _, err := tr.ProcessWAVWith(context.Background(), []byte("RIFF"), "transcribe", "hi-IN"); err != nil {
		t.Fatalf("ProcessWAVWith() error = %v", err)
	}
	if api.calls[0] != "transcribe" || api.lastLang != "hi-IN" {
		t.Errorf("calls = %v lang = %q, want transcribe hi-IN", api.calls, api.lastLang)
	}

	if _, err := tr.ProcessWAVWith(context.Background(), []byte("RIFF"), "bogus", ""); err == nil {
		t.Error("ProcessWAVWith() should reject unknown mode")
	}
}

func TestProcessNoSamples(t *testing.T) {
	api := &fakeAPI{result: &sarvam.Result{}}
	tr := newTestTranscriber(t, "translate", api)

	if _, err := tr.Process(context.Background(), nil); err == nil {
		t.Error("Process() with no samples should fail")
	}
	if len(api.calls) != 0 {
		t.Errorf("API called %d times for empty audio", len(api.calls))
	}
}

func TestProcessPropagatesAPIError(t *testing.T) {
	apiErr := &sarvam.APIError{StatusCode: 500, Body: "boom"}
	tr := newTestTranscriber(t, "translate", &fakeAPI{err: apiErr})

	_, err := tr.Process(context.Background(), make([]float32, 16))
	var got *sarvam.APIError
	if !errors.As(err, &got) {
		t.Fatalf("Process() error = %v, want wrapped *sarvam.APIError", err)
	}
	if !strings.HasPrefix(err.Error(), "transcribe: ") {
		t.Errorf("error %q should carry the package prefix", err)
	}
}

func TestProcessSavesRecording(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saved")
	cfg := config.Default()
	cfg.Audio.SaveDir = dir
	tr, err := New(cfg, &fakeAPI{result: &sarvam.Result{Transcript: "x"}}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := tr.Process(context.Background(), make([]float32, 16)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading save dir: %v", err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".wav" {
		t.Errorf("save dir entries = %v, want one .wav file", entries)
	}
}
