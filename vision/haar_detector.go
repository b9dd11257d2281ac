package vision

import (
	"fmt"
	"image"
	"log"
	"os"

	"gocv.io/x/gocv"

	"github.com/camden-git/attendancebackend/recognition"
)

const (
	haarScaleFactor  = 1.3
	haarMinNeighbors = 5
	haarMinFaceSize  = 30
)

// HaarDetector finds face regions using a Haar cascade. It implements
// recognition.Detector and only accepts frames produced by this package.
type HaarDetector struct {
	classifier gocv.CascadeClassifier
}

// NewHaarDetector loads the cascade file. A missing or unreadable cascade
// is a ConfigurationError: detection cannot run without it.
func NewHaarDetector(cascadePath string) (*HaarDetector, error) {
	if _, err := os.Stat(cascadePath); err != nil {
		return nil, &recognition.ConfigurationError{Op: "load cascade " + cascadePath, Err: err}
	}

	classifier := gocv.NewCascadeClassifier()
	if ok := classifier.Load(cascadePath); !ok {
		classifier.Close()
		return nil, &recognition.ConfigurationError{Op: "load cascade " + cascadePath,
			Err: fmt.Errorf("cascade failed to parse")}
	}

	log.Printf("vision: loaded Haar cascade from %s", cascadePath)
	return &HaarDetector{classifier: classifier}, nil
}

// Detect returns the face bounding boxes found in the frame. The order is
// whatever the cascade produces; no identity is carried between calls.
func (d *HaarDetector) Detect(frame recognition.Frame) ([]image.Rectangle, error) {
	cf, ok := frame.(*CameraFrame)
	if !ok {
		return nil, fmt.Errorf("haar detector requires a camera frame, got %T", frame)
	}

	minSize := image.Pt(haarMinFaceSize, haarMinFaceSize)
	regions := d.classifier.DetectMultiScaleWithParams(
		*cf.Gray(), haarScaleFactor, haarMinNeighbors, 0, minSize, image.Pt(0, 0),
	)
	return regions, nil
}

func (d *HaarDetector) Close() error {
	return d.classifier.Close()
}
