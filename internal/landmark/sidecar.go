package landmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// SidecarSuffix is appended to a clip's base name to find its landmarks.
const SidecarSuffix = ".landmarks.json"

// sidecarFile is the on-disk layout: one entry per video frame.
type sidecarFile struct {
	Frames []Frame `json:"frames"`
}

// SidecarDetector replays landmarks precomputed offline and stored next to
// each clip as <name>.landmarks.json.
type SidecarDetector struct {
	frames []Frame
	next   int
	logger *zap.Logger
}

// NewSidecarDetector creates a SidecarDetector.
func NewSidecarDetector(logger *zap.Logger) *SidecarDetector {
	return &SidecarDetector{logger: logger}
}

// SidecarPath returns the landmark file path for a clip.
func SidecarPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + SidecarSuffix
}

// Begin loads the sidecar for source. A clip without a sidecar plays with
// no landmarks.
func (d *SidecarDetector) Begin(source string) error {
	d.frames = nil
	d.next = 0

	path := SidecarPath(source)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		d.logger.Warn("No landmark sidecar for clip", zap.String("clip", source))
		return nil
	}
	if err != nil {
		return fmt.Errorf("landmark: reading sidecar: %w", err)
	}

	var f sidecarFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("landmark: parsing sidecar %s: %w", path, err)
	}
	d.frames = f.Frames
	d.logger.Debug("Loaded landmark sidecar", zap.String("path", path), zap.Int("frames", len(f.Frames)))
	return nil
}

// Detect returns the landmarks stored for the next frame of the clip.
func (d *SidecarDetector) Detect(gocv.Mat) (Frame, error) {
	if d.next >= len(d.frames) {
		d.next++
		return Frame{}, nil
	}
	f := d.frames[d.next]
	d.next++
	return f, nil
}

// Close is a no-op.
func (d *SidecarDetector) Close() error { return nil }
