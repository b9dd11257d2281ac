package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/camden-git/attendancebackend/recognition"
)

var (
	knownColor   = color.RGBA{G: 255, A: 255}
	unknownColor = color.RGBA{R: 255, A: 255}
)

// DrawAnnotations draws bounding boxes and labels onto the frame: green
// with the roll number for recognized faces, red "Unknown" otherwise.
func DrawAnnotations(mat *gocv.Mat, annotations []recognition.Annotation) {
	for _, a := range annotations {
		boxColor := unknownColor
		if a.Known {
			boxColor = knownColor
		}

		gocv.Rectangle(mat, a.Region, boxColor, 2)
		gocv.PutText(mat, a.Text, image.Pt(a.Region.Min.X, a.Region.Min.Y-10),
			gocv.FontHersheySimplex, 0.8, boxColor, 2)
	}
}

// PreviewWindow shows annotated frames in a desktop window. It implements
// recognition.Displayer and is only wired up when preview is enabled.
type PreviewWindow struct {
	window *gocv.Window
}

func NewPreviewWindow(title string) *PreviewWindow {
	return &PreviewWindow{window: gocv.NewWindow(title)}
}

func (p *PreviewWindow) Display(frame recognition.Frame, annotations []recognition.Annotation) {
	cf, ok := frame.(*CameraFrame)
	if !ok {
		return
	}
	DrawAnnotations(cf.Mat(), annotations)
	p.window.IMShow(*cf.Mat())
	p.window.WaitKey(1)
}

func (p *PreviewWindow) Close() error {
	if err := p.window.Close(); err != nil {
		return fmt.Errorf("failed to close preview window: %w", err)
	}
	return nil
}
