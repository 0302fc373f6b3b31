package landmark

import (
	"fmt"
	"image"
	"math"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

const (
	openPoseInput     = 368
	minHandCrop       = 24
	handCropScale     = 2.2
	defaultThreshold  = 0.1
	cocoBodyParts     = 18
	openPoseHandParts = 21
)

// cocoToPose maps the OpenPose COCO body parts onto the 33-point pose layout.
// The neck (COCO part 1) has no counterpart and is dropped.
var cocoToPose = map[int]int{
	0:  PoseNose,
	2:  PoseRightShoulder,
	3:  PoseRightElbow,
	4:  PoseRightWrist,
	5:  PoseLeftShoulder,
	6:  PoseLeftElbow,
	7:  PoseLeftWrist,
	8:  PoseRightHip,
	9:  PoseRightKnee,
	10: PoseRightAnkle,
	11: PoseLeftHip,
	12: PoseLeftKnee,
	13: PoseLeftAnkle,
	14: PoseRightEye,
	15: PoseLeftEye,
	16: PoseRightEar,
	17: PoseLeftEar,
}

// OpenPoseConfig locates the Caffe models. The hand model is optional.
type OpenPoseConfig struct {
	PoseProto string
	PoseModel string
	HandProto string
	HandModel string
	Threshold float64
}

// OpenPoseDetector runs the OpenPose COCO body model, and optionally the
// hand model, through OpenCV DNN. Face landmarks are not produced.
type OpenPoseDetector struct {
	body      gocv.Net
	hand      *gocv.Net
	threshold float64
	logger    *zap.Logger
}

// NewOpenPoseDetector loads the networks described by cfg.
func NewOpenPoseDetector(cfg OpenPoseConfig, logger *zap.Logger) (*OpenPoseDetector, error) {
	body := gocv.ReadNet(cfg.PoseModel, cfg.PoseProto)
	if body.Empty() {
		return nil, fmt.Errorf("landmark: load pose model %q: empty network", cfg.PoseModel)
	}

	d := &OpenPoseDetector{
		body:      body,
		threshold: cfg.Threshold,
		logger:    logger,
	}
	if d.threshold <= 0 {
		d.threshold = defaultThreshold
	}

	if cfg.HandModel != "" {
		hand := gocv.ReadNet(cfg.HandModel, cfg.HandProto)
		if hand.Empty() {
			body.Close()
			return nil, fmt.Errorf("landmark: load hand model %q: empty network", cfg.HandModel)
		}
		d.hand = &hand
	}

	logger.Info("OpenPose detector ready",
		zap.String("poseModel", cfg.PoseModel),
		zap.Bool("hands", d.hand != nil))
	return d, nil
}

// Begin is a no-op; OpenPose keeps no per-clip state.
func (d *OpenPoseDetector) Begin(string) error { return nil }

// Detect runs the body network and, when loaded, the hand network on a crop
// around each detected wrist.
func (d *OpenPoseDetector) Detect(img gocv.Mat) (Frame, error) {
	if img.Empty() {
		return Frame{}, nil
	}

	parts, err := d.peaks(d.body, img, cocoBodyParts)
	if err != nil {
		return Frame{}, fmt.Errorf("landmark: pose: %w", err)
	}

	pose := make([]Landmark, PosePoints)
	for i := range pose {
		pose[i] = Missing()
	}
	found := false
	for coco, idx := range cocoToPose {
		if parts[coco].Valid() {
			pose[idx] = parts[coco]
			found = true
		}
	}

	var f Frame
	if found {
		f.Pose = pose
	}

	if d.hand != nil && found {
		for _, arm := range [][2]int{{PoseLeftElbow, PoseLeftWrist}, {PoseRightElbow, PoseRightWrist}} {
			hand, err := d.detectHand(img, pose[arm[0]], pose[arm[1]])
			if err != nil {
				return Frame{}, err
			}
			if hand != nil {
				f.Hands = append(f.Hands, hand)
			}
		}
	}

	return f, nil
}

// detectHand crops a square around the hand, extended from the forearm,
// and maps the hand keypoints back to full-frame coordinates.
func (d *OpenPoseDetector) detectHand(img gocv.Mat, elbow, wrist Landmark) ([]Landmark, error) {
	rect, ok := HandCrop(elbow, wrist, img.Cols(), img.Rows())
	if !ok {
		return nil, nil
	}

	crop := img.Region(rect)
	defer crop.Close()

	pts, err := d.peaks(*d.hand, crop, openPoseHandParts)
	if err != nil {
		return nil, fmt.Errorf("landmark: hand: %w", err)
	}

	w, h := float64(img.Cols()), float64(img.Rows())
	hand := make([]Landmark, openPoseHandParts)
	found := 0
	for i, p := range pts {
		if !p.Valid() {
			hand[i] = Missing()
			continue
		}
		found++
		hand[i] = Landmark{
			X:          (float64(rect.Min.X) + p.X*float64(rect.Dx())) / w,
			Y:          (float64(rect.Min.Y) + p.Y*float64(rect.Dy())) / h,
			Visibility: p.Visibility,
		}
	}
	if found == 0 {
		return nil, nil
	}
	return hand, nil
}

// peaks runs net on img and returns the strongest location of each of the
// first n heatmaps, normalized to the image. Weak peaks are Missing.
func (d *OpenPoseDetector) peaks(net gocv.Net, img gocv.Mat, n int) ([]Landmark, error) {
	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(openPoseInput, openPoseInput),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	net.SetInput(blob, "")
	prob := net.Forward("")
	defer prob.Close()

	size := gocv.GetBlobSize(prob)
	channels, hmH, hmW := int(size.Val2), int(size.Val3), int(size.Val4)
	if channels < n || hmH == 0 || hmW == 0 {
		return nil, fmt.Errorf("unexpected network output shape %v", size)
	}

	out := make([]Landmark, n)
	for i := 0; i < n; i++ {
		heatmap := gocv.GetBlobChannel(prob, 0, i)
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(heatmap)
		heatmap.Close()

		if float64(maxVal) < d.threshold {
			out[i] = Missing()
			continue
		}
		out[i] = Landmark{
			X:          float64(maxLoc.X) / float64(hmW),
			Y:          float64(maxLoc.Y) / float64(hmH),
			Visibility: float64(maxVal),
		}
	}
	return out, nil
}

// Close releases the networks.
func (d *OpenPoseDetector) Close() error {
	var err error
	if d.hand != nil {
		err = d.hand.Close()
	}
	if cerr := d.body.Close(); err == nil {
		err = cerr
	}
	return err
}

// HandCrop returns the pixel square searched for a hand: centred past the
// wrist along the forearm, sized relative to the forearm length and
// clipped to the image. It reports false when either joint is missing or
// the crop is too small to be useful.
func HandCrop(elbow, wrist Landmark, width, height int) (image.Rectangle, bool) {
	if !elbow.Valid() || !wrist.Valid() {
		return image.Rectangle{}, false
	}

	ex, ey := elbow.X*float64(width), elbow.Y*float64(height)
	wx, wy := wrist.X*float64(width), wrist.Y*float64(height)
	forearm := math.Hypot(wx-ex, wy-ey)
	if forearm == 0 {
		return image.Rectangle{}, false
	}

	cx := wx + 0.5*(wx-ex)
	cy := wy + 0.5*(wy-ey)
	half := handCropScale * forearm / 2

	rect := image.Rect(round(cx-half), round(cy-half), round(cx+half), round(cy+half)).
		Intersect(image.Rect(0, 0, width, height))
	if rect.Dx() < minHandCrop || rect.Dy() < minHandCrop {
		return image.Rectangle{}, false
	}
	return rect, true
}

func round(v float64) int {
	return int(math.Round(v))
}
