package player

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/chaz8081/signspeak/internal/config"
	"github.com/chaz8081/signspeak/internal/landmark"
	"github.com/chaz8081/signspeak/internal/render"
)

const (
	quitKey     = 'q'
	writerCodec = "mp4v"
)

// Screen plays clips through OpenCV. Each frame is resized, run through the
// landmark detector and drawn onto a white canvas, then shown in a window
// and/or appended to an output video.
type Screen struct {
	width, height int
	showWord      bool
	showFPS       bool
	rawFrames     bool

	detector landmark.Detector
	style    render.Style
	window   *gocv.Window
	writer   *gocv.VideoWriter
	logger   *zap.Logger
}

// NewScreen opens the configured window and output file. At least one of
// them must be set.
func NewScreen(cfg config.RenderConfig, detector landmark.Detector, logger *zap.Logger) (*Screen, error) {
	if cfg.Window == "" && cfg.Output == "" {
		return nil, errors.New("player: render.window or render.output must be set")
	}

	style := render.DefaultStyle()
	if cfg.SkipPose != nil {
		style.SkipPose = render.SkipSet(cfg.SkipPose)
	}

	s := &Screen{
		width:     cfg.Width,
		height:    cfg.Height,
		showWord:  cfg.ShowWord,
		showFPS:   cfg.ShowFPS,
		rawFrames: cfg.Detector == "none",
		detector:  detector,
		style:     style,
		logger:    logger,
	}

	if cfg.Output != "" {
		w, err := gocv.VideoWriterFile(cfg.Output, writerCodec, cfg.FPS, cfg.Width, cfg.Height, true)
		if err != nil {
			return nil, fmt.Errorf("player: open output %s: %w", cfg.Output, err)
		}
		s.writer = w
		logger.Info("Writing sign video", zap.String("path", cfg.Output))
	}
	if cfg.Window != "" {
		s.window = gocv.NewWindow(cfg.Window)
	}
	return s, nil
}

// Play shows the clip at path until it ends, ctx is cancelled, or the user
// presses q.
func (s *Screen) Play(ctx context.Context, word, path string) error {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return fmt.Errorf("player: open video %s: %w", path, err)
	}
	defer capture.Close()
	if !capture.IsOpened() {
		return fmt.Errorf("player: cannot open video file %s", path)
	}

	if err := s.detector.Begin(path); err != nil {
		return fmt.Errorf("player: %w", err)
	}

	frame := gocv.NewMat()
	defer frame.Close()
	resized := gocv.NewMat()
	defer resized.Close()

	var meter fpsMeter
	size := image.Pt(s.width, s.height)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ok := capture.Read(&frame); !ok || frame.Empty() {
			return nil
		}
		gocv.Resize(frame, &resized, size, 0, 0, gocv.InterpolationLinear)

		lm, err := s.detector.Detect(resized)
		if err != nil {
			return fmt.Errorf("player: detect %s: %w", word, err)
		}

		fps := meter.Tick(time.Now())
		if quit := s.show(resized, lm, word, fps); quit {
			s.logger.Debug("Clip dismissed", zap.String("word", word))
			return nil
		}
	}
}

// show renders one frame and reports whether the user asked to stop.
func (s *Screen) show(frame gocv.Mat, lm landmark.Frame, word string, fps float64) bool {
	var canvas gocv.Mat
	if s.rawFrames {
		canvas = frame.Clone()
	} else {
		canvas = render.Canvas(s.width, s.height)
	}
	defer canvas.Close()

	render.Draw(&canvas, lm, s.style)
	if !s.showWord {
		word = ""
	}
	if !s.showFPS {
		fps = 0
	}
	render.Overlay(&canvas, word, fps)

	if s.writer != nil {
		if err := s.writer.Write(canvas); err != nil {
			s.logger.Warn("Failed to write frame", zap.Error(err))
		}
	}
	if s.window != nil {
		s.window.IMShow(canvas)
		return s.window.WaitKey(1)&0xFF == quitKey
	}
	return false
}

// Close releases the window, the output file and the detector.
func (s *Screen) Close() error {
	var errs []error
	if s.window != nil {
		errs = append(errs, s.window.Close())
	}
	if s.writer != nil {
		errs = append(errs, s.writer.Close())
	}
	errs = append(errs, s.detector.Close())
	return errors.Join(errs...)
}

// fpsMeter reports the instantaneous frame rate from consecutive ticks.
type fpsMeter struct {
	last time.Time
}

// Tick records a frame at now and returns the rate since the previous one,
// or 0 for the first frame.
func (m *fpsMeter) Tick(now time.Time) float64 {
	prev := m.last
	m.last = now
	if prev.IsZero() {
		return 0
	}
	elapsed := now.Sub(prev).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return 1 / elapsed
}
