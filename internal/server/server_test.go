package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/chaz8081/signspeak/internal/audio"
	"github.com/chaz8081/signspeak/internal/sarvam"
	"github.com/chaz8081/signspeak/internal/signs"
)

type fakeTranscriber struct {
	gotWAV  []byte
	gotMode string
	gotLang string
	err     error
}

func (f *fakeTranscriber) ProcessWAVWith(_ context.Context, wav []byte, mode, lang string) (*sarvam.Result, error) {
	f.gotWAV, f.gotMode, f.gotLang = wav, mode, lang
	if f.err != nil {
		return nil, f.err
	}
	return &sarvam.Result{Transcript: "he wants an apple", LanguageCode: "ta-IN", RequestID: "req-1"}, nil
}

func testWAV(t *testing.T) []byte {
	t.Helper()
	wav, err := audio.EncodeWAV(make([]float32, 1600), 16000, 1)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	return wav
}

func newTestServer(t *testing.T, tr Transcriber) *Server {
	t.Helper()
	return New(tr, signs.Default(), signs.Options{StripPunctuation: true}, zaptest.NewLogger(t))
}

func do(t *testing.T, s *Server, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return rec, body
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec, body := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["status"] != "ok" || body["words"] != float64(4) {
		t.Errorf("body = %v", body)
	}
}

func TestTranscribeJSON(t *testing.T) {
	fake := &fakeTranscriber{}
	s := newTestServer(t, fake)
	wav := testWAV(t)

	payload := fmt.Sprintf(`{"audio_base64":%q,"mode":"transcribe","language_code":"hi-IN"}`, audio.EncodeBase64(wav))
	rec, body := do(t, s, jsonRequest(http.MethodPost, "/v1/transcribe", payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if body["transcript"] != "he wants an apple" || body["request_id"] != "req-1" {
		t.Errorf("body = %v", body)
	}
	if d, _ := body["duration_seconds"].(float64); d < 0.099 || d > 0.101 {
		t.Errorf("duration_seconds = %v, want 0.1", body["duration_seconds"])
	}
	if !bytes.Equal(fake.gotWAV, wav) {
		t.Error("transcriber did not receive the uploaded WAV")
	}
	if fake.gotMode != "transcribe" || fake.gotLang != "hi-IN" {
		t.Errorf("mode, lang = %q, %q", fake.gotMode, fake.gotLang)
	}
}

func TestTranscribeMultipart(t *testing.T) {
	fake := &fakeTranscriber{}
	s := newTestServer(t, fake)
	wav := testWAV(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "clip.wav")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(wav)
	mw.WriteField("mode", "translate")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec, body := do(t, s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if !bytes.Equal(fake.gotWAV, wav) {
		t.Error("transcriber did not receive the uploaded WAV")
	}
	if fake.gotMode != "translate" || fake.gotLang != "" {
		t.Errorf("mode, lang = %q, %q", fake.gotMode, fake.gotLang)
	}
}

func TestTranscribeErrors(t *testing.T) {
	wavB64 := audio.EncodeBase64(testWAV(t))

	tests := []struct {
		name       string
		tr         Transcriber
		body       string
		wantStatus int
	}{
		{"not configured", nil, `{}`, http.StatusServiceUnavailable},
		{"missing audio", &fakeTranscriber{}, `{"mode":"translate"}`, http.StatusBadRequest},
		{"bad base64", &fakeTranscriber{}, `{"audio_base64":"%%%"}`, http.StatusBadRequest},
		{"not a wav", &fakeTranscriber{}, `{"audio_base64":"aGVsbG8="}`, http.StatusBadRequest},
		{"bad mode", &fakeTranscriber{}, fmt.Sprintf(`{"audio_base64":%q,"mode":"sing"}`, wavB64), http.StatusBadRequest},
		{"malformed json", &fakeTranscriber{}, `{`, http.StatusBadRequest},
		{
			"api error",
			&fakeTranscriber{err: fmt.Errorf("transcribe: %w", &sarvam.APIError{StatusCode: 403, Body: "forbidden"})},
			fmt.Sprintf(`{"audio_base64":%q}`, wavB64),
			http.StatusBadGateway,
		},
		{
			"network failure",
			&fakeTranscriber{err: fmt.Errorf("sarvam: request failed: connection refused")},
			fmt.Sprintf(`{"audio_base64":%q}`, wavB64),
			http.StatusInternalServerError,
		},
		{
			"timeout",
			&fakeTranscriber{err: fmt.Errorf("sarvam: request failed: %w", context.DeadlineExceeded)},
			fmt.Sprintf(`{"audio_base64":%q}`, wavB64),
			http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.tr)
			rec, body := do(t, s, jsonRequest(http.MethodPost, "/v1/transcribe", tt.body))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %v)", rec.Code, tt.wantStatus, body)
			}
			msg, ok := body["error"].(string)
			if !ok || msg == "" {
				t.Errorf("body = %v, want an error message", body)
			}
			if len(body) != 1 {
				t.Errorf("body = %v, want only the error key", body)
			}
		})
	}
}

func TestLookupSign(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/signs/Apple", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["word"] != "Apple" || body["mapped"] != true {
		t.Errorf("body = %v", body)
	}
	if loc, _ := body["locator"].(string); !strings.Contains(loc, "17kTTMK5vkL1avoCssvTHsDxvkQov6zv_") {
		t.Errorf("locator = %q", loc)
	}

	rec, body = do(t, s, httptest.NewRequest(http.MethodGet, "/v1/signs/banana", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if _, ok := body["error"]; !ok {
		t.Errorf("body = %v, want error", body)
	}
}

func TestPlanSigns(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, jsonRequest(http.MethodPost, "/v1/signs/plan", `{"sentence":"He eats an apple."}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp PlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []struct {
		word   string
		mapped bool
	}{{"He", true}, {"eats", false}, {"an", false}, {"apple", true}}
	if len(resp.Steps) != len(want) {
		t.Fatalf("steps = %+v, want %d", resp.Steps, len(want))
	}
	for i, w := range want {
		if resp.Steps[i].Word != w.word || resp.Steps[i].Mapped != w.mapped {
			t.Errorf("steps[%d] = %+v, want %s mapped=%v", i, resp.Steps[i], w.word, w.mapped)
		}
	}
}

func TestPlanSignsEmptySentence(t *testing.T) {
	s := newTestServer(t, nil)
	rec, body := do(t, s, jsonRequest(http.MethodPost, "/v1/signs/plan", `{"sentence":"   "}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	steps, ok := body["steps"].([]any)
	if !ok || len(steps) != 0 {
		t.Errorf("steps = %v, want empty list", body["steps"])
	}
}
