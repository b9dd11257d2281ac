package recognition

import (
	"errors"
	"fmt"
	"image"
	"io"
	"testing"
	"time"
)

type fakeFrame struct {
	bounds  image.Rectangle
	cropErr error
}

func (f *fakeFrame) Bounds() image.Rectangle { return f.bounds }
func (f *fakeFrame) Close()                  {}
func (f *fakeFrame) EncodeRegionJPEG(region image.Rectangle) ([]byte, error) {
	if f.cropErr != nil {
		return nil, f.cropErr
	}
	return []byte("jpeg"), nil
}

// scriptedSource serves a fixed number of frames, then reports exhaustion.
// onFrame runs before each served frame, which tests use to advance the
// fake clock.
type scriptedSource struct {
	frames  int
	served  int
	closed  bool
	readErr error
	onFrame func(i int)
}

func (s *scriptedSource) NextFrame() (Frame, error) {
	if s.served >= s.frames {
		if s.readErr != nil {
			return nil, s.readErr
		}
		return nil, io.EOF
	}
	if s.onFrame != nil {
		s.onFrame(s.served)
	}
	s.served++
	return &fakeFrame{bounds: image.Rect(0, 0, 640, 480)}, nil
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

type detectorFunc func(Frame) ([]image.Rectangle, error)

func (d detectorFunc) Detect(f Frame) ([]image.Rectangle, error) { return d(f) }

type classifierFunc func(Frame, image.Rectangle) (ClassificationResult, error)

func (c classifierFunc) Classify(f Frame, r image.Rectangle) (ClassificationResult, error) {
	return c(f, r)
}

type ledgerEntry struct {
	identity Identity
	session  string
	at       time.Time
}

type memLedger struct {
	records  []ledgerEntry
	failures int // number of leading calls that fail
}

func (l *memLedger) MarkPresent(identity Identity, sessionLabel string, at time.Time) error {
	if l.failures > 0 {
		l.failures--
		return errors.New("ledger write failed")
	}
	l.records = append(l.records, ledgerEntry{identity: identity, session: sessionLabel, at: at})
	return nil
}

type memAlerts struct {
	times    []time.Time
	failures int
}

func (a *memAlerts) Enqueue(snapshot []byte, detectedAt time.Time) (uint, error) {
	if a.failures > 0 {
		a.failures--
		return 0, errors.New("alert write failed")
	}
	a.times = append(a.times, detectedAt)
	return uint(len(a.times)), nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) set(t time.Time)         { c.t = t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func galleryWith(identities ...Identity) *Gallery {
	g := &Gallery{identities: make(map[int]Identity, len(identities))}
	for _, id := range identities {
		g.identities[id.Label] = id
	}
	return g
}

func constantDetector(regions ...image.Rectangle) Detector {
	return detectorFunc(func(Frame) ([]image.Rectangle, error) { return regions, nil })
}

func constantClassifier(label int, confidence float64) Classifier {
	return classifierFunc(func(Frame, image.Rectangle) (ClassificationResult, error) {
		return ClassificationResult{Label: label, Confidence: confidence}, nil
	})
}

func testConfig() Config {
	return Config{
		ConfidenceThreshold: 60,
		AlertCooldown:       5 * time.Second,
		SessionLabel:        "Morning",
	}
}

func newTestSession(t *testing.T, cfg Config, ctx SessionContext) *Session {
	t.Helper()
	s, err := NewSession(cfg, ctx)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestMarksAttendanceOncePerSession(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	ledger := &memLedger{}
	alerts := &memAlerts{}
	source := &scriptedSource{frames: 11}

	s := newTestSession(t, testConfig(), SessionContext{
		Source:     source,
		Detector:   constantDetector(image.Rect(100, 100, 200, 200)),
		Classifier: constantClassifier(0, 40),
		Gallery:    galleryWith(Identity{Label: 0, StudentID: 7, RollNo: "R1", Name: "Asha"}),
		Ledger:     ledger,
		Alerts:     alerts,
		Now:        clock.now,
	})

	err := s.Run()
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError on source exhaustion, got %v", err)
	}

	if len(ledger.records) != 1 {
		t.Fatalf("expected exactly one attendance record, got %d", len(ledger.records))
	}
	if ledger.records[0].identity.RollNo != "R1" || ledger.records[0].session != "Morning" {
		t.Fatalf("unexpected record: %+v", ledger.records[0])
	}
	if len(alerts.times) != 0 {
		t.Fatalf("expected no alerts for recognized identity, got %d", len(alerts.times))
	}
	if got := s.Stats().FramesProcessed; got != 11 {
		t.Fatalf("expected 11 frames processed, got %d", got)
	}
}

func TestAlertCooldownRateLimitsUnknownFaces(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{t: base}
	ledger := &memLedger{}
	alerts := &memAlerts{}
	// frames arrive at t=0s, 2s, 4s, 6s
	source := &scriptedSource{frames: 4, onFrame: func(i int) {
		clock.set(base.Add(time.Duration(i) * 2 * time.Second))
	}}

	s := newTestSession(t, testConfig(), SessionContext{
		Source:     source,
		Detector:   constantDetector(image.Rect(100, 100, 200, 200)),
		Classifier: constantClassifier(0, 90), // above threshold, always Unknown
		Gallery:    galleryWith(Identity{Label: 0, StudentID: 7, RollNo: "R1", Name: "Asha"}),
		Ledger:     ledger,
		Alerts:     alerts,
		Now:        clock.now,
	})
	_ = s.Run()

	if len(alerts.times) != 2 {
		t.Fatalf("expected 2 alerts (t=0 and t=6), got %d", len(alerts.times))
	}
	if !alerts.times[0].Equal(base) {
		t.Errorf("first alert at %v, want %v", alerts.times[0], base)
	}
	if got, want := alerts.times[1], base.Add(6*time.Second); !got.Equal(want) {
		t.Errorf("second alert at %v, want %v", got, want)
	}
	if gap := alerts.times[1].Sub(alerts.times[0]); gap < 5*time.Second {
		t.Errorf("alerts only %v apart, cooldown window is 5s", gap)
	}
	if len(ledger.records) != 0 {
		t.Fatalf("unknown faces must not mark attendance, got %d records", len(ledger.records))
	}
}

func TestThresholdRule(t *testing.T) {
	gallery := galleryWith(Identity{Label: 3, StudentID: 1, RollNo: "R3", Name: "Ben"})

	cases := []struct {
		name       string
		label      int
		confidence float64
		recognized bool
	}{
		{"well below threshold", 3, 20, true},
		{"just below threshold", 3, 59.9, true},
		{"exactly at threshold", 3, 60, false},
		{"above threshold", 3, 90, false},
		{"below threshold but unknown label", 9, 20, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t, testConfig(), SessionContext{
				Source:     &scriptedSource{},
				Detector:   constantDetector(),
				Classifier: constantClassifier(0, 0),
				Gallery:    gallery,
				Ledger:     &memLedger{},
				Alerts:     &memAlerts{},
			})
			_, ok := s.decide(ClassificationResult{Label: tc.label, Confidence: tc.confidence})
			if ok != tc.recognized {
				t.Fatalf("decide(label=%d, conf=%g) recognized=%v, want %v", tc.label, tc.confidence, ok, tc.recognized)
			}
		})
	}
}

func TestClassifierFailureIsIsolatedToFrame(t *testing.T) {
	ledger := &memLedger{}
	call := 0
	classifier := classifierFunc(func(Frame, image.Rectangle) (ClassificationResult, error) {
		call++
		if call == 1 {
			return ClassificationResult{}, fmt.Errorf("model blew up")
		}
		return ClassificationResult{Label: 0, Confidence: 40}, nil
	})

	s := newTestSession(t, testConfig(), SessionContext{
		Source:     &scriptedSource{frames: 3},
		Detector:   constantDetector(image.Rect(0, 0, 50, 50)),
		Classifier: classifier,
		Gallery:    galleryWith(Identity{Label: 0, StudentID: 7, RollNo: "R1", Name: "Asha"}),
		Ledger:     ledger,
		Alerts:     &memAlerts{},
	})
	_ = s.Run()

	if got := s.Stats().FramesProcessed; got != 3 {
		t.Fatalf("a classifier failure must not stop the loop, processed %d of 3 frames", got)
	}
	if len(ledger.records) != 1 {
		t.Fatalf("expected recognition to succeed on a later frame, got %d records", len(ledger.records))
	}
}

func TestDetectorFailureSkipsFrame(t *testing.T) {
	ledger := &memLedger{}
	call := 0
	detector := detectorFunc(func(Frame) ([]image.Rectangle, error) {
		call++
		if call == 1 {
			return nil, errors.New("cascade error")
		}
		return []image.Rectangle{image.Rect(0, 0, 50, 50)}, nil
	})

	s := newTestSession(t, testConfig(), SessionContext{
		Source:     &scriptedSource{frames: 2},
		Detector:   detector,
		Classifier: constantClassifier(0, 40),
		Gallery:    galleryWith(Identity{Label: 0, StudentID: 7, RollNo: "R1", Name: "Asha"}),
		Ledger:     ledger,
		Alerts:     &memAlerts{},
	})
	_ = s.Run()

	if got := s.Stats().FramesProcessed; got != 2 {
		t.Fatalf("expected both frames consumed, got %d", got)
	}
	if len(ledger.records) != 1 {
		t.Fatalf("expected one record from the surviving frame, got %d", len(ledger.records))
	}
}

func TestSourceExhaustionStopsWithNoWrites(t *testing.T) {
	ledger := &memLedger{}
	alerts := &memAlerts{}
	source := &scriptedSource{frames: 0}

	s := newTestSession(t, testConfig(), SessionContext{
		Source:     source,
		Detector:   constantDetector(image.Rect(0, 0, 50, 50)),
		Classifier: constantClassifier(0, 40),
		Gallery:    galleryWith(Identity{Label: 0, StudentID: 7, RollNo: "R1", Name: "Asha"}),
		Ledger:     ledger,
		Alerts:     alerts,
	})

	err := s.Run()
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected wrapped io.EOF, got %v", err)
	}
	if s.State() != StateStopped {
		t.Fatalf("expected stopped state, got %v", s.State())
	}
	if !source.closed {
		t.Fatal("frame source must be released on stop")
	}
	if len(ledger.records) != 0 || len(alerts.times) != 0 {
		t.Fatal("no store writes may happen after device failure")
	}
}

func TestReadFailureIsFatalToSession(t *testing.T) {
	source := &scriptedSource{frames: 2, readErr: errors.New("device unplugged")}
	s := newTestSession(t, testConfig(), SessionContext{
		Source:     source,
		Detector:   constantDetector(),
		Classifier: constantClassifier(0, 40),
		Gallery:    galleryWith(),
		Ledger:     &memLedger{},
		Alerts:     &memAlerts{},
	})

	err := s.Run()
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if s.State() != StateStopped {
		t.Fatalf("expected stopped state, got %v", s.State())
	}
}

func TestStopBeforeRunExitsCleanly(t *testing.T) {
	source := &scriptedSource{frames: 100}
	s := newTestSession(t, testConfig(), SessionContext{
		Source:     source,
		Detector:   constantDetector(),
		Classifier: constantClassifier(0, 40),
		Gallery:    galleryWith(),
		Ledger:     &memLedger{},
		Alerts:     &memAlerts{},
	})

	s.Stop()
	s.Stop() // idempotent
	if err := s.Run(); err != nil {
		t.Fatalf("orderly stop must not report an error, got %v", err)
	}
	if s.State() != StateStopped {
		t.Fatalf("expected stopped state, got %v", s.State())
	}
	if source.served != 0 {
		t.Fatalf("stop must be observed before the next frame pull, served %d", source.served)
	}
	if !source.closed {
		t.Fatal("frame source must be released on stop")
	}
}

func TestLedgerWriteFailureKeepsIdentityEligible(t *testing.T) {
	ledger := &memLedger{failures: 1}
	s := newTestSession(t, testConfig(), SessionContext{
		Source:     &scriptedSource{frames: 3},
		Detector:   constantDetector(image.Rect(0, 0, 50, 50)),
		Classifier: constantClassifier(0, 40),
		Gallery:    galleryWith(Identity{Label: 0, StudentID: 7, RollNo: "R1", Name: "Asha"}),
		Ledger:     ledger,
		Alerts:     &memAlerts{},
	})
	_ = s.Run()

	// first write fails and must NOT mark the dedup set; the second frame
	// retries and succeeds; the third is suppressed as a duplicate
	if len(ledger.records) != 1 {
		t.Fatalf("expected exactly one successful record, got %d", len(ledger.records))
	}
}

func TestAlertWriteFailureDoesNotStampCooldown(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{t: base}
	alerts := &memAlerts{failures: 1}
	source := &scriptedSource{frames: 2, onFrame: func(i int) {
		clock.set(base.Add(time.Duration(i) * time.Second))
	}}

	s := newTestSession(t, testConfig(), SessionContext{
		Source:     source,
		Detector:   constantDetector(image.Rect(100, 100, 200, 200)),
		Classifier: constantClassifier(0, 90),
		Gallery:    galleryWith(),
		Ledger:     &memLedger{},
		Alerts:     alerts,
		Now:        clock.now,
	})
	_ = s.Run()

	// the failed write at t=0 leaves the region eligible, so the frame at
	// t=1s (inside the 5s window) still produces the alert
	if len(alerts.times) != 1 {
		t.Fatalf("expected the retry to write one alert, got %d", len(alerts.times))
	}
}

func TestMaxDurationCapStopsSession(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{t: base}
	source := &scriptedSource{frames: 100, onFrame: func(i int) {
		clock.advance(time.Minute)
	}}

	cfg := testConfig()
	cfg.MaxDuration = 2 * time.Minute
	s := newTestSession(t, cfg, SessionContext{
		Source:     source,
		Detector:   constantDetector(),
		Classifier: constantClassifier(0, 40),
		Gallery:    galleryWith(),
		Ledger:     &memLedger{},
		Alerts:     &memAlerts{},
		Now:        clock.now,
	})

	if err := s.Run(); err != nil {
		t.Fatalf("duration cap is an orderly stop, got error %v", err)
	}
	if source.served >= 100 {
		t.Fatal("session never stopped")
	}
}

func TestNewSessionRequiresCollaborators(t *testing.T) {
	ctx := SessionContext{
		Source:     &scriptedSource{},
		Detector:   constantDetector(),
		Classifier: constantClassifier(0, 0),
		Gallery:    galleryWith(),
		Ledger:     &memLedger{},
		Alerts:     &memAlerts{},
	}

	broken := ctx
	broken.Gallery = nil
	if _, err := NewSession(testConfig(), broken); err == nil {
		t.Fatal("expected error for missing gallery")
	} else {
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
	}

	broken = ctx
	broken.Classifier = nil
	if _, err := NewSession(testConfig(), broken); err == nil {
		t.Fatal("expected error for missing classifier")
	}

	cfg := testConfig()
	cfg.SessionLabel = ""
	if _, err := NewSession(cfg, ctx); err == nil {
		t.Fatal("expected error for missing session label")
	}
}

func TestEventsPublished(t *testing.T) {
	var events []Event
	sink := eventSinkFunc(func(e Event) { events = append(events, e) })

	s := newTestSession(t, testConfig(), SessionContext{
		Source:     &scriptedSource{frames: 2},
		Detector:   constantDetector(image.Rect(0, 0, 50, 50)),
		Classifier: constantClassifier(0, 40),
		Gallery:    galleryWith(Identity{Label: 0, StudentID: 7, RollNo: "R1", Name: "Asha"}),
		Ledger:     &memLedger{},
		Alerts:     &memAlerts{},
		Events:     sink,
	})
	_ = s.Run()

	var recognized, duplicate int
	for _, e := range events {
		switch e.Type {
		case "recognized":
			recognized++
		case "duplicate":
			duplicate++
		}
	}
	if recognized != 1 {
		t.Fatalf("expected one recognized event, got %d", recognized)
	}
	if duplicate != 1 {
		t.Fatalf("expected one duplicate event for the second frame, got %d", duplicate)
	}
}

type eventSinkFunc func(Event)

func (f eventSinkFunc) Publish(e Event) { f(e) }
