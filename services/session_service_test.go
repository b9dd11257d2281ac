package services

import (
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camden-git/attendancebackend/config"
	"github.com/camden-git/attendancebackend/recognition"
)

type emptySource struct{}

func (emptySource) NextFrame() (recognition.Frame, error) { return nil, io.EOF }
func (emptySource) Close() error                          { return nil }

type nopDetector struct{}

func (nopDetector) Detect(recognition.Frame) ([]image.Rectangle, error) { return nil, nil }

type nopClassifier struct{}

func (nopClassifier) Classify(recognition.Frame, image.Rectangle) (recognition.ClassificationResult, error) {
	return recognition.ClassificationResult{}, nil
}

type nopLedger struct{}

func (nopLedger) MarkPresent(recognition.Identity, string, time.Time) error { return nil }

type nopAlerts struct{}

func (nopAlerts) Enqueue([]byte, time.Time) (uint, error) { return 0, nil }

type rollDirectory map[string]uint

func (d rollDirectory) FindByRoll(rollNo string) (uint, string, bool, error) {
	id, ok := d[rollNo]
	return id, "Student " + rollNo, ok, nil
}

// newLaunchableSession builds a real session with inert collaborators. The
// caller decides whether to run it; until Run executes it stays idle.
func newLaunchableSession(t *testing.T) *recognition.Session {
	t.Helper()

	labelMapPath := filepath.Join(t.TempDir(), "labels.json")
	if err := os.WriteFile(labelMapPath, []byte(`{"0": "R1"}`), 0644); err != nil {
		t.Fatalf("failed to write label map: %v", err)
	}
	gallery, err := recognition.LoadGallery(labelMapPath, rollDirectory{"R1": 7})
	if err != nil {
		t.Fatalf("LoadGallery failed: %v", err)
	}

	session, err := recognition.NewSession(recognition.Config{
		ConfidenceThreshold: 60,
		SessionLabel:        "Morning",
	}, recognition.SessionContext{
		Source:     emptySource{},
		Detector:   nopDetector{},
		Classifier: nopClassifier{},
		Gallery:    gallery,
		Ledger:     nopLedger{},
		Alerts:     nopAlerts{},
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return session
}

func testServiceConfig() config.Config {
	return config.Config{
		SessionLabel:        "Morning",
		ConfidenceThreshold: 60,
	}
}

// A session handed to a goroutine may not have reached its loop when the
// next start request arrives; it must still count as live, otherwise two
// sessions end up holding the camera at once.
func TestStartRefusedWhileSessionStillLaunching(t *testing.T) {
	svc := NewSessionService(testServiceConfig(), nil, nil, nil, nil)
	svc.current = newLaunchableSession(t) // launched, loop not yet scheduled

	if err := svc.Start(""); !errors.Is(err, ErrSessionRunning) {
		t.Fatalf("expected ErrSessionRunning for a launching session, got %v", err)
	}
}

func TestStopReachesSessionStillLaunching(t *testing.T) {
	svc := NewSessionService(testServiceConfig(), nil, nil, nil, nil)
	session := newLaunchableSession(t)
	svc.current = session

	if err := svc.Stop(); err != nil {
		t.Fatalf("expected Stop to reach a launching session, got %v", err)
	}
	// the loop observes the signal on its first iteration
	if err := session.Run(); err != nil {
		t.Fatalf("expected an orderly stop, got %v", err)
	}
	if session.State() != recognition.StateStopped {
		t.Fatalf("expected stopped state, got %v", session.State())
	}
}

func TestStopAfterSessionEndedReportsNoSession(t *testing.T) {
	svc := NewSessionService(testServiceConfig(), nil, nil, nil, nil)
	session := newLaunchableSession(t)
	session.Stop()
	if err := session.Run(); err != nil {
		t.Fatalf("expected an orderly stop, got %v", err)
	}
	svc.current = session

	if err := svc.Stop(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for a stopped session, got %v", err)
	}
}

func TestStartAllowedAfterSessionEnded(t *testing.T) {
	cfg := testServiceConfig()
	cfg.LabelMapPath = filepath.Join(t.TempDir(), "missing.json")
	svc := NewSessionService(cfg, nil, nil, nil, nil)

	session := newLaunchableSession(t)
	session.Stop()
	if err := session.Run(); err != nil {
		t.Fatalf("expected an orderly stop, got %v", err)
	}
	svc.current = session

	// the guard must release; with no label map on disk the rebuild then
	// fails as a configuration error, proving Start got past the guard
	err := svc.Start("")
	if errors.Is(err, ErrSessionRunning) {
		t.Fatalf("stopped session still blocks new starts: %v", err)
	}
	var cfgErr *recognition.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected a configuration error from the rebuild, got %v", err)
	}
}
