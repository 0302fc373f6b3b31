package landmark

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/chaz8081/signspeak/internal/config"
)

// Detector finds landmarks in video frames.
type Detector interface {
	// Begin is called before the first frame of each clip. source is the
	// local path of the clip being played.
	Begin(source string) error
	// Detect returns the landmarks in one frame.
	Detect(img gocv.Mat) (Frame, error)
	// Close releases any resources held by the detector.
	Close() error
}

// New creates the detector named by cfg.Detector.
func New(cfg config.RenderConfig, logger *zap.Logger) (Detector, error) {
	switch cfg.Detector {
	case "sidecar", "":
		return NewSidecarDetector(logger), nil
	case "openpose":
		return NewOpenPoseDetector(OpenPoseConfig{
			PoseProto: cfg.PoseProto,
			PoseModel: cfg.PoseModel,
			HandProto: cfg.HandProto,
			HandModel: cfg.HandModel,
			Threshold: cfg.Threshold,
		}, logger)
	case "none":
		return NopDetector{}, nil
	default:
		return nil, fmt.Errorf("landmark: unknown detector %q (supported: sidecar, openpose, none)", cfg.Detector)
	}
}

// Missing returns a placeholder for a keypoint that was not found.
func Missing() Landmark {
	return Landmark{X: math.NaN(), Y: math.NaN()}
}

// Valid reports whether l holds a detected position.
func (l Landmark) Valid() bool {
	return !math.IsNaN(l.X) && !math.IsNaN(l.Y)
}

// NopDetector detects nothing.
type NopDetector struct{}

func (NopDetector) Begin(string) error { return nil }

func (NopDetector) Detect(gocv.Mat) (Frame, error) { return Frame{}, nil }

func (NopDetector) Close() error { return nil }
