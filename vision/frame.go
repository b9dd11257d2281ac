package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// CameraFrame wraps a BGR gocv.Mat pulled from a capture device and a
// lazily-computed grayscale copy for the detector and classifier. It
// implements recognition.Frame.
type CameraFrame struct {
	mat    gocv.Mat
	gray   gocv.Mat
	grayed bool
}

// NewCameraFrame takes ownership of the given Mat.
func NewCameraFrame(mat gocv.Mat) *CameraFrame {
	return &CameraFrame{mat: mat}
}

func (f *CameraFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.mat.Cols(), f.mat.Rows())
}

// Mat exposes the underlying color frame for annotation and display.
func (f *CameraFrame) Mat() *gocv.Mat {
	return &f.mat
}

// Gray returns the single-channel intensity version of the frame,
// converting on first use.
func (f *CameraFrame) Gray() *gocv.Mat {
	if !f.grayed {
		f.gray = gocv.NewMat()
		gocv.CvtColor(f.mat, &f.gray, gocv.ColorBGRToGray)
		f.grayed = true
	}
	return &f.gray
}

// EncodeRegionJPEG crops the region from the color frame and returns it
// JPEG-encoded, for alert snapshots.
func (f *CameraFrame) EncodeRegionJPEG(region image.Rectangle) ([]byte, error) {
	region = region.Intersect(f.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("region %v is outside the frame", region)
	}

	crop := f.mat.Region(region)
	defer crop.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, crop)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

func (f *CameraFrame) Close() {
	f.mat.Close()
	if f.grayed {
		f.gray.Close()
		f.grayed = false
	}
}
