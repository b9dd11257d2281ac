package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/facette/natsort"
	"github.com/joho/godotenv"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"github.com/camden-git/attendancebackend/config"
)

// trains an LBPH model from the labeled dataset directory. Each
// subdirectory of the dataset root is one student's roll number and holds
// that student's face crops; the assigned numeric labels are written out as
// a label map so the recognizer can resolve predictions back to students.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	datasetDir := flag.String("dataset", cfg.DatasetPath, "directory of per-roll-number training images")
	modelPath := flag.String("model", cfg.ModelPath, "output path for the trained LBPH model")
	labelMapPath := flag.String("labels", cfg.LabelMapPath, "output path for the label map JSON")
	flag.Parse()

	entries, err := os.ReadDir(*datasetDir)
	if err != nil {
		log.Fatalf("FATAL: Failed to read dataset directory %s: %v", *datasetDir, err)
	}

	var rollNos []string
	for _, entry := range entries {
		if entry.IsDir() {
			rollNos = append(rollNos, entry.Name())
		}
	}
	if len(rollNos) == 0 {
		log.Fatalf("FATAL: No student directories found in %s; run the capture tool first", *datasetDir)
	}
	natsort.Sort(rollNos)

	var images []gocv.Mat
	var labels []int
	labelMap := make(map[string]string, len(rollNos))
	defer func() {
		for _, img := range images {
			img.Close()
		}
	}()

	for label, rollNo := range rollNos {
		studentDir := filepath.Join(*datasetDir, rollNo)
		files, err := os.ReadDir(studentDir)
		if err != nil {
			log.Fatalf("FATAL: Failed to read %s: %v", studentDir, err)
		}

		var names []string
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(f.Name())) {
			case ".jpg", ".jpeg", ".png", ".pgm":
				names = append(names, f.Name())
			}
		}
		natsort.Sort(names)

		loaded := 0
		for _, name := range names {
			imgPath := filepath.Join(studentDir, name)
			img := gocv.IMRead(imgPath, gocv.IMReadGrayScale)
			if img.Empty() {
				log.Printf("Warning: Skipping unreadable image %s", imgPath)
				img.Close()
				continue
			}

			if img.Cols() != cfg.FaceSizeWidth || img.Rows() != cfg.FaceSizeHeight {
				resized := gocv.NewMat()
				gocv.Resize(img, &resized, image.Pt(cfg.FaceSizeWidth, cfg.FaceSizeHeight), 0, 0, gocv.InterpolationLinear)
				img.Close()
				img = resized
			}

			images = append(images, img)
			labels = append(labels, label)
			loaded++
		}

		if loaded == 0 {
			log.Fatalf("FATAL: No usable images for roll number %s in %s", rollNo, studentDir)
		}
		labelMap[strconv.Itoa(label)] = rollNo
		log.Printf("Loaded %d image(s) for roll number %s (label %d)", loaded, rollNo, label)
	}

	log.Printf("Training LBPH model on %d image(s) across %d student(s)...", len(images), len(rollNos))
	recognizer := contrib.NewLBPHFaceRecognizer()
	recognizer.Train(images, labels)

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0755); err != nil {
		log.Fatalf("FATAL: Failed to create model directory: %v", err)
	}
	recognizer.SaveFile(*modelPath)
	log.Printf("Saved model to %s", *modelPath)

	mapData, err := json.MarshalIndent(labelMap, "", "  ")
	if err != nil {
		log.Fatalf("FATAL: Failed to encode label map: %v", err)
	}
	if err := os.WriteFile(*labelMapPath, mapData, 0644); err != nil {
		log.Fatalf("FATAL: Failed to write label map %s: %v", *labelMapPath, err)
	}
	log.Printf("Saved label map to %s", *labelMapPath)

	fmt.Printf("Training complete: %d students, %d images\n", len(rollNos), len(images))
}
