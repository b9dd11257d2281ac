package media

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	SnapshotMaxSize       = 480 // longest side of a stored alert snapshot
	SnapshotJpegQuality   = 85
	SnapshotFileExtension = ".jpg"

	ExportFileExtension = ".csv"
)

// Processor handles asset transformations before storage. It relies on a
// Store implementation for saving the results.
type Processor struct {
	store Store
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// SaveSnapshot decodes a JPEG face crop coming from the recognition engine,
// bounds it to SnapshotMaxSize and stores it under a generated name.
// Returns the relative path of the saved snapshot.
func (p *Processor) SaveSnapshot(jpegData []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return "", fmt.Errorf("failed to decode snapshot image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > SnapshotMaxSize || bounds.Dy() > SnapshotMaxSize {
		img = imaging.Fit(img, SnapshotMaxSize, SnapshotMaxSize, imaging.Lanczos)
	}

	reader, writer := io.Pipe()
	go func() {
		defer writer.Close()
		err := imaging.Encode(writer, img, imaging.JPEG, imaging.JPEGQuality(SnapshotJpegQuality))
		if err != nil {
			log.Printf("processor: Failed to encode snapshot: %v", err)
			writer.CloseWithError(fmt.Errorf("snapshot encoding failed: %w", err))
		}
	}()

	snapshotUUID, err := uuid.NewRandom()
	if err != nil {
		reader.Close()
		return "", fmt.Errorf("failed to generate UUID for snapshot: %w", err)
	}
	targetFilename := snapshotUUID.String() + SnapshotFileExtension

	savedRelPath, err := p.store.Save(AssetTypeSnapshot, "", targetFilename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot via store: %w", err)
	}

	log.Printf("processor: Saved alert snapshot at %s", savedRelPath)
	return savedRelPath, nil
}

// SaveExport stores generated CSV data under a generated name. Returns the
// relative path of the saved file.
func (p *Processor) SaveExport(data io.Reader) (string, error) {
	exportUUID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID for export: %w", err)
	}
	targetFilename := exportUUID.String() + ExportFileExtension

	savedRelPath, err := p.store.Save(AssetTypeExport, "", targetFilename, data)
	if err != nil {
		return "", fmt.Errorf("failed to save export via store: %w", err)
	}

	log.Printf("processor: Saved attendance export at %s", savedRelPath)
	return savedRelPath, nil
}
