package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/audio"
	"github.com/chaz8081/signspeak/internal/hotkey"
	"github.com/chaz8081/signspeak/internal/inject"
	"github.com/chaz8081/signspeak/internal/player"
	"github.com/chaz8081/signspeak/internal/signs"
)

func runListen(args []string) error {
	fs := flag.NewFlagSet("listen", flag.ExitOnError)
	common := addCommonFlags(fs)
	sign := fs.Bool("sign", false, "play the sign videos for each transcript")
	fs.Parse(args)

	a, err := common.load()
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg
	logger := a.logger

	signing := *sign || cfg.Output.SignTranscript
	listener := hotkey.New(cfg.Hotkey, logger)
	printBanner(cfg, fmt.Sprintf("Hotkey:   %s (%s mode)", listener.Combo(), cfg.Hotkey.Mode),
		fmt.Sprintf("Signs:    %v", signing))

	transcriber, err := a.newTranscriber()
	if err != nil {
		return err
	}
	defer transcriber.Close()

	recorder, err := audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		return fmt.Errorf("initializing audio recorder: %w (check microphone permissions)", err)
	}
	defer recorder.Close()
	logger.Info("Audio recorder ready")

	out, err := inject.New(cfg.Output.Method, os.Stdout)
	if err != nil {
		return err
	}

	var (
		p     *player.Player
		dict  *signs.Dictionary
		texts chan string
	)
	if signing {
		if dict, err = a.dictionary(); err != nil {
			return err
		}
		pl, closePlayer, err := newPlayer(a, dict)
		if err != nil {
			return err
		}
		defer closePlayer()
		p = pl
		texts = make(chan string, 4)
		out = inject.Multi{out, inject.Func(func(text string) error {
			select {
			case texts <- text:
			default:
				logger.Warn("Sign queue full, dropping transcript", zap.String("text", text))
			}
			return nil
		})}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go listener.Run(ctx)
	fmt.Printf("Ready! Press %s to speak. Ctrl+C to quit.\n", listener.Combo())

	events := listener.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				logger.Info("Hotkey listener stopped")
				return nil
			}

			switch ev.Type {
			case hotkey.EventStart:
				if err := recorder.Start(); err != nil {
					logger.Error("Failed to start recording", zap.Error(err))
					continue
				}
				logger.Info("Recording...")

			case hotkey.EventStop:
				samples := recorder.Stop()
				if samples == nil {
					continue
				}

				rate := cfg.Audio.SampleRate * cfg.Audio.Channels
				captured := time.Duration(len(samples)) * time.Second / time.Duration(rate)
				if captured < cfg.Audio.MinDuration {
					logger.Info("Recording too short, skipping", zap.Duration("captured", captured))
					continue
				}
				logger.Info("Captured audio, transcribing...", zap.Duration("captured", captured))

				go deliver(ctx, a, transcriber, out, samples)
			}

		case text := <-texts:
			steps := dict.Plan(text, a.planOptions())
			if _, err := p.PlaySentence(ctx, steps); err != nil && ctx.Err() == nil {
				logger.Error("Signing failed", zap.Error(err))
			}

		case <-ctx.Done():
			logger.Info("Shutting down...")
			if recorder.IsRecording() {
				recorder.Stop()
			}
			recorder.Close()
			transcriber.Close()
			fmt.Println("Goodbye!")
			// Exit directly to avoid gohook's C cleanup crash.
			// The OS reclaims the event hook on process exit.
			os.Exit(0)
		}
	}
}

type processor interface {
	Process(ctx context.Context, samples []float32) (string, error)
}

// deliver transcribes one recording and hands the text to out.
func deliver(ctx context.Context, a *app, tr processor, out inject.TextInjector, samples []float32) {
	start := time.Now()
	text, err := tr.Process(ctx, samples)
	if err != nil {
		a.logger.Error("Transcription failed", zap.Error(err))
		return
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	if text == "" {
		a.logger.Info("No speech detected", zap.Duration("elapsed", elapsed))
		return
	}
	a.logger.Info("Transcribed", zap.Duration("elapsed", elapsed), zap.String("text", text))

	if err := out.Inject(text); err != nil {
		a.logger.Error("Output failed", zap.Error(err))
	}
}
