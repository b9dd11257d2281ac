package recognition

import (
	"image"
	"time"
)

// Identity is a known person resolvable from a classifier label. Immutable
// for the duration of a session.
type Identity struct {
	Label     int    `json:"label"`
	StudentID uint   `json:"student_id"`
	RollNo    string `json:"roll_no"`
	Name      string `json:"name"`
}

// ClassificationResult is the raw classifier output for one face region.
// Confidence is a distance, not a probability: lower means a closer match.
type ClassificationResult struct {
	Label      int
	Confidence float64
}

// Frame is one image pulled from a frame source. Implementations own the
// pixel data; the engine only reads regions out of it.
type Frame interface {
	Bounds() image.Rectangle
	// EncodeRegionJPEG returns the given region cropped and JPEG-encoded,
	// used for alert snapshots.
	EncodeRegionJPEG(region image.Rectangle) ([]byte, error)
	Close()
}

// FrameSource produces an ordered sequence of frames from a live device.
// NextFrame returns io.EOF when the stream is exhausted; any other error is
// a read failure. Both end the session.
type FrameSource interface {
	NextFrame() (Frame, error)
	Close() error
}

// Detector finds face regions in a frame. Region order is detector-defined
// and carries no identity across frames.
type Detector interface {
	Detect(frame Frame) ([]image.Rectangle, error)
}

// Classifier assigns a label and distance to a face region of a frame. The
// implementation is responsible for extraction and normalization to its
// canonical input size.
type Classifier interface {
	Classify(frame Frame, region image.Rectangle) (ClassificationResult, error)
}

// Ledger is the append-only attendance sink consumed by the engine.
type Ledger interface {
	MarkPresent(identity Identity, sessionLabel string, at time.Time) error
}

// AlertSink persists low-confidence detections for human review.
type AlertSink interface {
	Enqueue(snapshot []byte, detectedAt time.Time) (uint, error)
}

// Event is a display-side notification emitted while a session runs. It is
// a side effect only; the engine never reads events back.
type Event struct {
	Type       string  `json:"type"` // "recognized", "duplicate", "unknown", "alert", "session"
	RollNo     string  `json:"roll_no,omitempty"`
	Name       string  `json:"name,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	State      string  `json:"state,omitempty"`
	AlertID    uint    `json:"alert_id,omitempty"`
	Timestamp  int64   `json:"timestamp"`
}

// EventSink receives engine events for live display. Implementations must
// not block.
type EventSink interface {
	Publish(event Event)
}

// Annotation describes one bounding box drawn on the display frame.
type Annotation struct {
	Region     image.Rectangle
	Text       string
	Known      bool
	Confidence float64
}

// Displayer renders an annotated frame. Side-effect-only output with no
// further consumption by the engine.
type Displayer interface {
	Display(frame Frame, annotations []Annotation)
}
