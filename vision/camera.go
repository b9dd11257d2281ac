package vision

import (
	"fmt"
	"io"
	"log"

	"gocv.io/x/gocv"

	"github.com/camden-git/attendancebackend/recognition"
)

// Camera is a frame source backed by a local capture device. It implements
// recognition.FrameSource.
type Camera struct {
	capture *gocv.VideoCapture
	index   int
}

// OpenCamera opens the capture device at the given index. Failure to open
// is reported as a DeviceError; the session cannot start without frames.
func OpenCamera(index, width, height int) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, &recognition.DeviceError{Op: fmt.Sprintf("open camera %d", index), Err: err}
	}

	if width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}

	log.Printf("vision: opened camera %d (%dx%d)", index, width, height)
	return &Camera{capture: capture, index: index}, nil
}

// NextFrame reads the next frame from the device. A failed read is treated
// as stream exhaustion: webcams do not recover mid-session, the operator
// restarts instead.
func (c *Camera) NextFrame() (recognition.Frame, error) {
	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, io.EOF
	}
	return NewCameraFrame(mat), nil
}

func (c *Camera) Close() error {
	log.Printf("vision: closing camera %d", c.index)
	return c.capture.Close()
}
