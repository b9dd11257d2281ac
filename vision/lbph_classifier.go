package vision

import (
	"fmt"
	"image"
	"log"
	"os"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"github.com/camden-git/attendancebackend/recognition"
)

// LBPHClassifier assigns labels to face regions using a trained LBPH model.
// It implements recognition.Classifier. The reported confidence is a
// distance: lower means a closer match to the label's training data.
type LBPHClassifier struct {
	recognizer *contrib.LBPHFaceRecognizer
	faceWidth  int
	faceHeight int
}

// NewLBPHClassifier loads the trained model from disk. A missing model is a
// ConfigurationError; the training job must run first.
func NewLBPHClassifier(modelPath string, faceWidth, faceHeight int) (*LBPHClassifier, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, &recognition.ConfigurationError{Op: "load recognizer model " + modelPath, Err: err}
	}

	recognizer := contrib.NewLBPHFaceRecognizer()
	recognizer.LoadFile(modelPath)

	log.Printf("vision: loaded LBPH model from %s (canonical face %dx%d)", modelPath, faceWidth, faceHeight)
	return &LBPHClassifier{
		recognizer: recognizer,
		faceWidth:  faceWidth,
		faceHeight: faceHeight,
	}, nil
}

// Classify extracts the region from the frame's grayscale plane, normalizes
// it to the canonical face size and predicts a label.
func (c *LBPHClassifier) Classify(frame recognition.Frame, region image.Rectangle) (recognition.ClassificationResult, error) {
	cf, ok := frame.(*CameraFrame)
	if !ok {
		return recognition.ClassificationResult{}, fmt.Errorf("lbph classifier requires a camera frame, got %T", frame)
	}

	region = region.Intersect(frame.Bounds())
	if region.Empty() {
		return recognition.ClassificationResult{}, fmt.Errorf("region %v is outside the frame", region)
	}

	face := cf.Gray().Region(region)
	defer face.Close()

	normalized := gocv.NewMat()
	defer normalized.Close()
	gocv.Resize(face, &normalized, image.Pt(c.faceWidth, c.faceHeight), 0, 0, gocv.InterpolationLinear)

	response := c.recognizer.PredictExtendedResponse(normalized)
	return recognition.ClassificationResult{
		Label:      int(response.Label),
		Confidence: float64(response.Confidence),
	}, nil
}
