// Package landmark holds pose, hand and face keypoints for a video frame
// and the detectors that produce them.
//
// Coordinates are normalized to [0, 1] relative to the frame width and
// height, with the MediaPipe index layout: 33 pose points, 21 points per
// hand and 468 face mesh points.
package landmark

import (
	"encoding/json"
	"math"
)

// Landmark is a single keypoint. In JSON a null or absent x or y marks the
// keypoint as missing.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"v,omitempty"`
}

// UnmarshalJSON decodes a keypoint, mapping null coordinates to Missing.
func (l *Landmark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = Missing()
		return nil
	}
	var raw struct {
		X          *float64 `json:"x"`
		Y          *float64 `json:"y"`
		Z          float64  `json:"z"`
		Visibility float64  `json:"v"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Landmark{X: math.NaN(), Y: math.NaN(), Z: raw.Z, Visibility: raw.Visibility}
	if raw.X != nil && raw.Y != nil {
		l.X, l.Y = *raw.X, *raw.Y
	}
	return nil
}

// Frame is everything detected in one video frame.
type Frame struct {
	Pose  []Landmark   `json:"pose,omitempty"`
	Hands [][]Landmark `json:"hands,omitempty"`
	Faces [][]Landmark `json:"faces,omitempty"`
}

// Empty reports whether nothing was detected.
func (f Frame) Empty() bool {
	return len(f.Pose) == 0 && len(f.Hands) == 0 && len(f.Faces) == 0
}

// Layout sizes.
const (
	PosePoints = 33
	HandPoints = 21
	FacePoints = 468
)

// Pose landmark indices used outside the topology tables.
const (
	PoseNose          = 0
	PoseLeftEyeInner  = 1
	PoseLeftEye       = 2
	PoseLeftEyeOuter  = 3
	PoseRightEyeInner = 4
	PoseRightEye      = 5
	PoseRightEyeOuter = 6
	PoseLeftEar       = 7
	PoseRightEar      = 8
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
	PoseLeftHip       = 23
	PoseRightHip      = 24
	PoseLeftKnee      = 25
	PoseRightKnee     = 26
	PoseLeftAnkle     = 27
	PoseRightAnkle    = 28
)
