package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/landmark"
	"github.com/chaz8081/signspeak/internal/player"
	"github.com/chaz8081/signspeak/internal/signs"
	"github.com/chaz8081/signspeak/internal/videocache"
)

func runSign(args []string) error {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	common := addCommonFlags(fs)
	output := fs.String("output", "", "also write the rendered signs to this video file")
	detector := fs.String("detector", "", "override render.detector (sidecar, openpose, none)")
	headless := fs.Bool("headless", false, "do not open a window (requires --output)")
	fs.Parse(args)

	a, err := common.load()
	if err != nil {
		return err
	}
	defer a.close()

	if *output != "" {
		a.cfg.Render.Output = *output
	}
	if *detector != "" {
		a.cfg.Render.Detector = *detector
	}
	if *headless {
		a.cfg.Render.Window = ""
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	sentence := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(sentence) == "" {
		fmt.Print("Enter a sentence: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading sentence: %w", err)
		}
		sentence = line
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return signSentence(ctx, a, sentence)
}

// newPlayer wires the clip cache, landmark detector and screen. The
// returned close function releases the screen and detector.
func newPlayer(a *app, dict *signs.Dictionary) (*player.Player, func() error, error) {
	det, err := landmark.New(a.cfg.Render, a.logger)
	if err != nil {
		return nil, nil, err
	}
	screen, err := player.NewScreen(a.cfg.Render, det, a.logger)
	if err != nil {
		det.Close()
		return nil, nil, err
	}
	cache := videocache.New(a.cfg.Signs.CacheDir, nil, a.logger)
	if d := a.cfg.Render.Detector; d == "sidecar" || d == "" {
		cache.UseSidecars(landmark.SidecarSuffix, dict.Landmarks())
	}
	if store := a.cfg.Signs.ObjectStore; store.Endpoint != "" {
		objects, err := videocache.NewMinioStore(store, a.logger)
		if err != nil {
			screen.Close()
			return nil, nil, err
		}
		cache.UseObjectStore(objects)
	}
	return player.New(cache, screen, a.cfg.Signs, a.logger), screen.Close, nil
}

func signSentence(ctx context.Context, a *app, sentence string) error {
	dict, err := a.dictionary()
	if err != nil {
		return err
	}
	steps := dict.Plan(sentence, a.planOptions())
	if len(steps) == 0 {
		a.logger.Info("Nothing to sign")
		return nil
	}

	p, closePlayer, err := newPlayer(a, dict)
	if err != nil {
		return err
	}
	defer closePlayer()

	sum, err := p.PlaySentence(ctx, steps)
	a.logger.Info("Signing finished",
		zap.Int("played", sum.Played),
		zap.Int("unmapped", sum.Unmapped),
		zap.Int("skipped", sum.Skipped))
	return err
}
