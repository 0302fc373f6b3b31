// Package player turns a sign plan into on-screen video, fetching clips
// ahead of playback while keeping them in sentence order.
package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/config"
	"github.com/chaz8081/signspeak/internal/signs"
)

// DefaultBuffer is how many fetched clips may wait for playback.
const DefaultBuffer = 3

// Fetcher resolves a clip locator to a playable local file.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// ClipPlayer shows one clip and returns when it ends or is dismissed.
type ClipPlayer interface {
	Play(ctx context.Context, word, path string) error
}

// Summary counts what happened to each step of a sentence.
type Summary struct {
	Played   int
	Unmapped int
	Skipped  int
}

// Player plays sign plans.
type Player struct {
	Fetcher Fetcher
	Clips   ClipPlayer
	Pause   time.Duration
	Buffer  int
	Logger  *zap.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Player from the signs configuration.
func New(fetcher Fetcher, clips ClipPlayer, cfg config.SignsConfig, logger *zap.Logger) *Player {
	return &Player{
		Fetcher: fetcher,
		Clips:   clips,
		Pause:   cfg.UnmappedPause,
		Buffer:  cfg.Buffer,
		Logger:  logger,
	}
}

type queued struct {
	step signs.Step
	path string
	err  error
}

// PlaySentence plays steps in order. Clips are fetched by a background
// goroutine that runs at most Buffer clips ahead of playback. Unmapped
// words pause for Pause, and clips that fail to fetch or play are skipped.
func (p *Player) PlaySentence(ctx context.Context, steps []signs.Step) (Summary, error) {
	var sum Summary
	if len(steps) == 0 {
		return sum, nil
	}

	buffer := p.Buffer
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	ctx, cancel := context.WithCancel(ctx)
	queue := make(chan queued, buffer)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(queue)
		p.prefetch(ctx, steps, queue)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	for item := range queue {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		word := item.step.Word

		if !item.step.Mapped {
			sum.Unmapped++
			p.Logger.Info("No video mapped for word", zap.String("word", word))
			if err := sleep(ctx, p.Pause); err != nil {
				return sum, err
			}
			continue
		}

		if item.err != nil {
			sum.Skipped++
			p.Logger.Warn("Skipping clip", zap.String("word", word), zap.Error(item.err))
			continue
		}

		p.Logger.Info("Playing video for word", zap.String("word", word))
		if err := p.Clips.Play(ctx, word, item.path); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return sum, err
			}
			sum.Skipped++
			p.Logger.Warn("Clip playback failed", zap.String("word", word), zap.Error(err))
			continue
		}
		sum.Played++
	}

	p.Logger.Debug("Sentence finished",
		zap.Int("played", sum.Played),
		zap.Int("unmapped", sum.Unmapped),
		zap.Int("skipped", sum.Skipped))
	return sum, ctx.Err()
}

func (p *Player) prefetch(ctx context.Context, steps []signs.Step, queue chan<- queued) {
	for _, step := range steps {
		item := queued{step: step}
		if step.Mapped {
			item.path, item.err = p.Fetcher.Fetch(ctx, step.Locator)
		}
		select {
		case queue <- item:
		case <-ctx.Done():
			return
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
