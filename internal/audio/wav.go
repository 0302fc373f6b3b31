package audio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

const (
	bitDepth      = 16
	pcmFormat     = 1
	maxInt16Float = 32767.0
)

// EncodeWAV converts float32 samples in [-1, 1] to a 16-bit PCM WAV file.
// Out-of-range samples are clamped.
func EncodeWAV(samples []float32, sampleRate, channels uint32) ([]byte, error) {
	if sampleRate == 0 || channels == 0 {
		return nil, fmt.Errorf("audio: encode wav: invalid format %dHz %dch", sampleRate, channels)
	}

	// wav.Encoder needs an io.WriteSeeker to patch the header sizes on Close.
	f, err := os.CreateTemp("", "signspeak-*.wav")
	if err != nil {
		return nil, fmt.Errorf("audio: encode wav: create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, int(sampleRate), bitDepth, int(channels), pcmFormat)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(channels),
			SampleRate:  int(sampleRate),
		},
		Data:           floatToPCM16(samples),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("audio: encode wav: write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("audio: encode wav: finalize: %w", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		return nil, fmt.Errorf("audio: encode wav: read back: %w", err)
	}
	return data, nil
}

// Clip is a decoded WAV file.
type Clip struct {
	Samples    []float32
	SampleRate uint32
	Channels   uint32
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}

// DecodeWAV parses a PCM WAV file into normalized float32 samples.
func DecodeWAV(data []byte) (*Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("audio: decode wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}

	scale := float32(int(1) << (dec.BitDepth - 1))
	samples := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float32(s) / scale
	}

	return &Clip{
		Samples:    samples,
		SampleRate: dec.SampleRate,
		Channels:   uint32(dec.NumChans),
	}, nil
}

// EncodeBase64 returns the standard base64 form of a WAV clip.
func EncodeBase64(wavData []byte) string {
	return base64.StdEncoding.EncodeToString(wavData)
}

// DecodeBase64 reverses EncodeBase64.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("audio: decode base64: %w", err)
	}
	return data, nil
}

// SaveWAV writes a WAV clip into dir under a unique name and returns its path.
func SaveWAV(dir string, wavData []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("audio: save wav: creating dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+".wav")
	if err := os.WriteFile(path, wavData, 0644); err != nil {
		return "", fmt.Errorf("audio: save wav: %w", err)
	}
	return path, nil
}

// floatToPCM16 converts normalized float32 samples to 16-bit integer values.
func floatToPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int(s * maxInt16Float)
	}
	return out
}
