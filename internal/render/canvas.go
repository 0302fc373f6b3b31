package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/chaz8081/signspeak/internal/landmark"
)

// Colors and stroke widths used on the canvas.
var (
	PoseColor = color.RGBA{G: 255}
	HandColor = color.RGBA{B: 255}
	FaceColor = color.RGBA{R: 255}
	FPSColor  = color.RGBA{G: 255}
	WordColor = color.RGBA{B: 255}
)

// Style controls what Draw renders.
type Style struct {
	// SkipPose holds pose indices whose connections are not drawn.
	SkipPose map[int]bool
	// MinVisibility hides pose connections with a less visible endpoint.
	MinVisibility float64
}

// DefaultStyle skips the pose points covered by the hand and face models.
func DefaultStyle() Style {
	return Style{SkipPose: SkipSet(landmark.DefaultSkipPose)}
}

// Canvas returns a white BGR image of the given size. The caller must Close it.
func Canvas(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), height, width, gocv.MatTypeCV8UC3)
}

// Draw renders the pose skeleton, hands and face contours of f onto canvas.
func Draw(canvas *gocv.Mat, f landmark.Frame, style Style) {
	w, h := canvas.Cols(), canvas.Rows()

	for _, s := range Segments(f.Pose, landmark.PoseConnections, style.SkipPose, style.MinVisibility, w, h) {
		gocv.Line(canvas, s.From, s.To, PoseColor, 2)
	}

	for _, hand := range f.Hands {
		for _, p := range Points(hand, w, h) {
			gocv.Circle(canvas, p, 2, HandColor, -1)
		}
		for _, s := range Segments(hand, landmark.HandConnections, nil, 0, w, h) {
			gocv.Line(canvas, s.From, s.To, HandColor, 1)
		}
	}

	for _, face := range f.Faces {
		for _, p := range Points(face, w, h) {
			gocv.Circle(canvas, p, 1, FaceColor, -1)
		}
		for _, s := range Segments(face, landmark.FaceContours, nil, 0, w, h) {
			gocv.Line(canvas, s.From, s.To, FaceColor, 1)
		}
	}
}

// Overlay writes the current word near the top and, when fps > 0, the
// frame rate near the bottom.
func Overlay(canvas *gocv.Mat, word string, fps float64) {
	if word != "" {
		gocv.PutTextWithParams(canvas, "Word: "+word, image.Pt(10, 60),
			gocv.FontHersheySimplex, 1, WordColor, 1, gocv.LineAA, false)
	}
	if fps > 0 {
		gocv.PutTextWithParams(canvas, fmt.Sprintf("FPS: %d", int(fps)), image.Pt(10, canvas.Rows()-30),
			gocv.FontHersheySimplex, 1, FPSColor, 1, gocv.LineAA, false)
	}
}
