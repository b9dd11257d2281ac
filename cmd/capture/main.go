package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gocv.io/x/gocv"

	"github.com/camden-git/attendancebackend/config"
	"github.com/camden-git/attendancebackend/vision"
)

const defaultCaptureCount = 20

// collects labeled face crops from the webcam into the dataset directory.
// Press 'c' to capture the highlighted face, 'q' to quit early. The crops
// feed the training tool, which expects one subdirectory per roll number.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	rollNo := flag.String("roll", "", "roll number of the student being captured (required)")
	count := flag.Int("count", defaultCaptureCount, "number of face images to capture")
	flag.Parse()

	if *rollNo == "" {
		flag.Usage()
		log.Fatal("FATAL: -roll is required")
	}
	if *count <= 0 {
		log.Fatal("FATAL: -count must be positive")
	}

	outDir := filepath.Join(cfg.DatasetPath, *rollNo)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create output directory %s: %v", outDir, err)
	}

	detector, err := vision.NewHaarDetector(cfg.CascadePath)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer detector.Close()

	camera, err := vision.OpenCamera(cfg.CameraIndex, cfg.CameraWidth, cfg.CameraHeight)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer camera.Close()

	window := gocv.NewWindow("Capture - " + *rollNo)
	defer window.Close()

	green := color.RGBA{G: 255, A: 255}
	captured := 0

	log.Printf("Capturing up to %d face image(s) for roll number %s into %s", *count, *rollNo, outDir)
	log.Println("Press 'c' to capture the highlighted face, 'q' to quit")

	for captured < *count {
		frame, err := camera.NextFrame()
		if err != nil {
			if err == io.EOF {
				log.Fatal("FATAL: Camera stream ended")
			}
			log.Fatalf("FATAL: Failed to read frame: %v", err)
		}

		cf := frame.(*vision.CameraFrame)
		regions, err := detector.Detect(frame)
		if err != nil {
			log.Printf("Warning: Detection failed: %v", err)
			regions = nil
		}

		for _, region := range regions {
			gocv.Rectangle(cf.Mat(), region, green, 2)
		}
		gocv.PutText(cf.Mat(), fmt.Sprintf("%d/%d", captured, *count),
			image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, green, 2)

		window.IMShow(*cf.Mat())
		key := window.WaitKey(30)

		switch key {
		case 'q':
			frame.Close()
			log.Printf("Stopped early with %d image(s) captured", captured)
			return
		case 'c':
			if len(regions) != 1 {
				log.Printf("Need exactly one face in view to capture, found %d", len(regions))
				break
			}
			if saveFaceCrop(cf, regions[0], outDir, captured, cfg) {
				captured++
				log.Printf("Captured image %d/%d", captured, *count)
			}
		}

		frame.Close()
	}

	fmt.Printf("Capture complete: %d image(s) for roll number %s in %s\n", captured, *rollNo, outDir)
}

// saveFaceCrop writes the grayscale face region, normalized to the
// canonical training size, as the next numbered image in outDir.
func saveFaceCrop(cf *vision.CameraFrame, region image.Rectangle, outDir string, index int, cfg config.Config) bool {
	region = region.Intersect(cf.Bounds())
	if region.Empty() {
		return false
	}

	face := cf.Gray().Region(region)
	defer face.Close()

	normalized := gocv.NewMat()
	defer normalized.Close()
	gocv.Resize(face, &normalized, image.Pt(cfg.FaceSizeWidth, cfg.FaceSizeHeight), 0, 0, gocv.InterpolationLinear)

	outPath := filepath.Join(outDir, fmt.Sprintf("%d.jpg", index+1))
	if ok := gocv.IMWrite(outPath, normalized); !ok {
		log.Printf("Warning: Failed to write %s", outPath)
		return false
	}
	return true
}
