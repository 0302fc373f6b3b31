package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/audio"
	"github.com/chaz8081/signspeak/internal/inject"
	"github.com/chaz8081/signspeak/internal/sarvam"
	"github.com/chaz8081/signspeak/internal/transcribe"
)

func runTranscribe(args []string) error {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	common := addCommonFlags(fs)
	duration := fs.Duration("duration", 0, "recording length (default: audio.duration)")
	file := fs.String("file", "", "transcribe this WAV file instead of recording")
	asJSON := fs.Bool("json", false, "print the result, or the error, as JSON")
	mode := fs.String("mode", "", "override api.mode (translate or transcribe)")
	language := fs.String("language", "", "override api.language_code")
	reference := fs.String("reference", "", "expected sentence; prints the word error rate")
	sign := fs.Bool("sign", false, "play the sign videos for the transcript")
	fs.Parse(args)

	a, err := common.load()
	if err != nil {
		return err
	}
	defer a.close()

	if *mode != "" {
		a.cfg.API.Mode = *mode
	}
	if *language != "" {
		a.cfg.API.LanguageCode = *language
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := transcribeOnce(ctx, a, *file, *duration, *asJSON)
	if *asJSON {
		return printJSON(res, err)
	}
	if err != nil {
		return err
	}

	out, err := inject.New(a.cfg.Output.Method, os.Stdout)
	if err != nil {
		return err
	}
	if err := out.Inject(res.Transcript); err != nil {
		return err
	}

	if *reference != "" {
		fmt.Println(transcribe.Compare(*reference, res.Transcript))
	}

	if *sign || a.cfg.Output.SignTranscript {
		return signSentence(ctx, a, res.Transcript)
	}
	return nil
}

// transcribeOnce records from the microphone, or reads file, and sends the
// clip to the speech API.
func transcribeOnce(ctx context.Context, a *app, file string, d time.Duration, quiet bool) (*sarvam.Result, error) {
	tr, err := a.newTranscriber()
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		clip, err := audio.DecodeWAV(data)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("Loaded WAV file",
			zap.String("path", file),
			zap.Float64("seconds", clip.Duration()),
			zap.Uint32("sampleRate", clip.SampleRate))
		return tr.ProcessWAV(ctx, data)
	}

	if d <= 0 {
		d = a.cfg.Audio.Duration
	}
	rec, err := audio.NewRecorder(a.cfg.Audio.SampleRate, a.cfg.Audio.Channels)
	if err != nil {
		return nil, fmt.Errorf("initializing audio recorder: %w (check microphone permissions)", err)
	}
	defer rec.Close()

	if !quiet {
		fmt.Printf("Recording for %s...\n", d)
	}
	samples, err := rec.Record(ctx, d)
	if err != nil {
		return nil, err
	}
	if !quiet {
		fmt.Println("Recording finished.")
	}
	return tr.ProcessSamples(ctx, samples)
}

// printJSON writes res, or the {"error": ...} object for err, to stdout.
func printJSON(res *sarvam.Result, err error) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err != nil {
		if encErr := enc.Encode(sarvam.ErrorMessage(err)); encErr != nil {
			return encErr
		}
		return errReported
	}
	return enc.Encode(map[string]string{
		"transcript":    res.Transcript,
		"language_code": res.LanguageCode,
		"request_id":    res.RequestID,
	})
}
