// Command test-mic is a manual check of the microphone path. It records a
// short clip at the transcription format, reports its level and saves it
// as a WAV file that can be replayed or sent with "signspeak transcribe --file".
//
// Usage:
//
//	go run ./cmd/test-mic [--duration 3s] [--out ./recordings]
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaz8081/signspeak/internal/audio"
	"github.com/chaz8081/signspeak/internal/config"
)

func main() {
	duration := flag.Duration("duration", 3*time.Second, "recording length")
	out := flag.String("out", ".", "directory for the saved WAV")
	flag.Parse()

	cfg := config.Default().Audio
	rec, err := audio.NewRecorder(cfg.SampleRate, cfg.Channels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Recording %s at %dHz, %dch. Say something...\n", *duration, cfg.SampleRate, cfg.Channels)
	samples, err := rec.Record(ctx, *duration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	peak, rms := levels(samples)
	fmt.Printf("Captured %d samples, peak %.3f, rms %.3f\n", len(samples), peak, rms)
	if peak < 0.01 {
		fmt.Println("Warning: the recording is nearly silent. Check the input device and permissions.")
	}

	wav, err := audio.EncodeWAV(samples, cfg.SampleRate, cfg.Channels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	path, err := audio.SaveWAV(*out, wav)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %s\n", path)
}

func levels(samples []float32) (peak, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		v := math.Abs(float64(s))
		peak = max(peak, v)
		sum += v * v
	}
	return peak, math.Sqrt(sum / float64(len(samples)))
}
