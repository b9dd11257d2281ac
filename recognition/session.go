package recognition

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"sync/atomic"
	"time"
)

// State is the lifecycle of a recognition session. There is no resume from
// StateStopped; a new session must be constructed.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds the static per-session settings, read once at startup.
type Config struct {
	// ConfidenceThreshold decides Recognized vs Unknown: a classification
	// is Recognized iff confidence < threshold and the label resolves.
	ConfidenceThreshold float64
	// AlertCooldown is the minimum gap between alert writes for one
	// region key.
	AlertCooldown time.Duration
	// SessionLabel groups attendance records (Morning/Afternoon/Evening).
	SessionLabel string
	// MaxDuration stops the session after the given wall time. Zero means
	// no cap.
	MaxDuration time.Duration
}

// SessionContext bundles the collaborators a session needs. Constructed
// fresh at session start; nothing here is process-global.
type SessionContext struct {
	Source     FrameSource
	Detector   Detector
	Classifier Classifier
	Gallery    *Gallery
	Ledger     Ledger
	Alerts     AlertSink

	// Optional display-side outputs.
	Events  EventSink
	Display Displayer

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Session drives the per-frame recognition loop. A single goroutine calls
// Run; the dedup set and cooldown map are private to that goroutine.
// State and counters are atomics so the dashboard can poll Status while
// the loop runs.
type Session struct {
	cfg      Config
	ctx      SessionContext
	now      func() time.Time
	cooldown *alertCooldown
	marked   map[string]struct{} // roll numbers already marked present this session

	state           atomic.Int32
	stop            chan struct{}
	stopOnce        func()
	framesProcessed atomic.Int64
	presentCount    atomic.Int64
	alertCount      atomic.Int64
	startedAt       atomic.Int64
}

// NewSession validates the context and builds an idle session. Missing
// required collaborators are a ConfigurationError: recognition cannot
// proceed without them.
func NewSession(cfg Config, ctx SessionContext) (*Session, error) {
	switch {
	case ctx.Source == nil:
		return nil, &ConfigurationError{Op: "new session", Err: errors.New("frame source is required")}
	case ctx.Detector == nil:
		return nil, &ConfigurationError{Op: "new session", Err: errors.New("detector is required")}
	case ctx.Classifier == nil:
		return nil, &ConfigurationError{Op: "new session", Err: errors.New("classifier is required")}
	case ctx.Gallery == nil:
		return nil, &ConfigurationError{Op: "new session", Err: errors.New("gallery is required")}
	case ctx.Ledger == nil:
		return nil, &ConfigurationError{Op: "new session", Err: errors.New("attendance ledger is required")}
	case ctx.Alerts == nil:
		return nil, &ConfigurationError{Op: "new session", Err: errors.New("alert sink is required")}
	}
	if cfg.ConfidenceThreshold <= 0 {
		return nil, &ConfigurationError{Op: "new session", Err: fmt.Errorf("confidence threshold must be positive, got %g", cfg.ConfidenceThreshold)}
	}
	if cfg.SessionLabel == "" {
		return nil, &ConfigurationError{Op: "new session", Err: errors.New("session label is required")}
	}

	now := ctx.Now
	if now == nil {
		now = time.Now
	}

	stop := make(chan struct{})
	var once atomic.Bool
	s := &Session{
		cfg:      cfg,
		ctx:      ctx,
		now:      now,
		cooldown: newAlertCooldown(cfg.AlertCooldown),
		marked:   make(map[string]struct{}),
		stop:     stop,
	}
	s.stopOnce = func() {
		if once.CompareAndSwap(false, true) {
			close(stop)
		}
	}
	s.state.Store(int32(StateIdle))
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Stop requests an orderly shutdown. The loop observes it on its next
// iteration, releases the frame source and writes nothing further. Safe to
// call from any goroutine, more than once.
func (s *Session) Stop() {
	s.stopOnce()
}

// Stats is a point-in-time snapshot for the dashboard.
type Stats struct {
	State           string `json:"state"`
	SessionLabel    string `json:"session_label"`
	StartedAt       int64  `json:"started_at,omitempty"`
	FramesProcessed int64  `json:"frames_processed"`
	MarkedPresent   int64  `json:"marked_present"`
	AlertsWritten   int64  `json:"alerts_written"`
}

// Stats reports loop progress. Readable concurrently with Run.
func (s *Session) Stats() Stats {
	return Stats{
		State:           s.State().String(),
		SessionLabel:    s.cfg.SessionLabel,
		StartedAt:       s.startedAt.Load(),
		FramesProcessed: s.framesProcessed.Load(),
		MarkedPresent:   s.presentCount.Load(),
		AlertsWritten:   s.alertCount.Load(),
	}
}

// Run executes the per-frame loop until the session is stopped or the
// frame source fails. It returns nil on an orderly stop (explicit Stop or
// duration cap) and a DeviceError when the source is exhausted or fails;
// a device failure is reported, not retried. Run must be called exactly
// once.
func (s *Session) Run() error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("session is not idle, cannot start")
	}

	started := s.now()
	s.startedAt.Store(started.Unix())
	var deadline time.Time
	if s.cfg.MaxDuration > 0 {
		deadline = started.Add(s.cfg.MaxDuration)
	}

	log.Printf("engine: session %q started (threshold=%g, cooldown=%s, gallery=%d identities)",
		s.cfg.SessionLabel, s.cfg.ConfidenceThreshold, s.cfg.AlertCooldown, s.ctx.Gallery.Size())
	s.publish(Event{Type: "session", State: "running", Timestamp: started.Unix()})

	defer func() {
		s.state.Store(int32(StateStopped))
		if err := s.ctx.Source.Close(); err != nil {
			log.Printf("engine: error closing frame source: %v", err)
		}
		s.publish(Event{Type: "session", State: "stopped", Timestamp: s.now().Unix()})
		log.Printf("engine: session %q stopped after %d frames (%d present, %d alerts)",
			s.cfg.SessionLabel, s.framesProcessed.Load(), s.presentCount.Load(), s.alertCount.Load())
	}()

	for {
		select {
		case <-s.stop:
			return nil
		default:
		}

		if !deadline.IsZero() && !s.now().Before(deadline) {
			log.Printf("engine: session duration cap reached, stopping")
			return nil
		}

		frame, err := s.ctx.Source.NextFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Printf("engine: frame source exhausted, stopping session")
			} else {
				log.Printf("engine: frame source read failed, stopping session: %v", err)
			}
			return &DeviceError{Op: "read frame", Err: err}
		}

		s.processFrame(frame)
		frame.Close()
		s.framesProcessed.Add(1)
	}
}

// processFrame runs detection, classification and the decision rule for one
// frame. Any detector or classifier failure is local to the frame: it is
// logged and the loop moves on.
func (s *Session) processFrame(frame Frame) {
	regions, err := s.ctx.Detector.Detect(frame)
	if err != nil {
		log.Printf("engine: detector failed on frame, skipping: %v", err)
		return
	}

	annotations := make([]Annotation, 0, len(regions))
	for _, region := range regions {
		result, err := s.ctx.Classifier.Classify(frame, region)
		if err != nil {
			log.Printf("engine: classifier failed on region %v, skipping: %v", region, err)
			continue
		}

		if identity, ok := s.decide(result); ok {
			annotations = append(annotations, s.handleRecognized(identity, result, region))
		} else {
			annotations = append(annotations, s.handleUnknown(frame, region, result))
		}
	}

	if s.ctx.Display != nil {
		s.ctx.Display.Display(frame, annotations)
	}
}

// decide applies the threshold rule: Recognized iff the distance is below
// the threshold AND the label resolves to a known identity.
func (s *Session) decide(result ClassificationResult) (Identity, bool) {
	if result.Confidence >= s.cfg.ConfidenceThreshold {
		return Identity{}, false
	}
	return s.ctx.Gallery.Resolve(result.Label)
}

// handleRecognized appends an attendance record the first time an identity
// is seen this session. The identity joins the dedup set only after a
// confirmed write, so a failed write keeps it eligible on later frames.
func (s *Session) handleRecognized(identity Identity, result ClassificationResult, region image.Rectangle) Annotation {
	now := s.now()
	if _, seen := s.marked[identity.RollNo]; !seen {
		if err := s.ctx.Ledger.MarkPresent(identity, s.cfg.SessionLabel, now); err != nil {
			log.Printf("engine: attendance write failed for %s (will retry on a later frame): %v", identity.RollNo, err)
		} else {
			s.marked[identity.RollNo] = struct{}{}
			s.presentCount.Add(1)
			log.Printf("engine: marked %s (%s) present for %s session", identity.RollNo, identity.Name, s.cfg.SessionLabel)
			s.publish(Event{Type: "recognized", RollNo: identity.RollNo, Name: identity.Name,
				Confidence: result.Confidence, Timestamp: now.Unix()})
		}
	} else {
		s.publish(Event{Type: "duplicate", RollNo: identity.RollNo, Name: identity.Name,
			Confidence: result.Confidence, Timestamp: now.Unix()})
	}

	return Annotation{Region: region, Text: identity.RollNo, Known: true, Confidence: result.Confidence}
}

// handleUnknown routes a low-confidence detection into the alert queue,
// rate-limited per region key. Cooldown is stamped only on a confirmed
// write.
func (s *Session) handleUnknown(frame Frame, region image.Rectangle, result ClassificationResult) Annotation {
	now := s.now()
	annotation := Annotation{Region: region, Text: "Unknown", Known: false, Confidence: result.Confidence}

	if !s.cooldown.ready(region, now) {
		return annotation
	}

	snapshot, err := frame.EncodeRegionJPEG(region)
	if err != nil {
		log.Printf("engine: failed to crop alert snapshot for region %v: %v", region, err)
		return annotation
	}

	alertID, err := s.ctx.Alerts.Enqueue(snapshot, now)
	if err != nil {
		log.Printf("engine: alert write failed for region %v (record lost): %v", region, err)
		return annotation
	}

	s.cooldown.stamp(region, now)
	s.alertCount.Add(1)
	s.publish(Event{Type: "alert", Confidence: result.Confidence, AlertID: alertID, Timestamp: now.Unix()})
	return annotation
}

func (s *Session) publish(event Event) {
	if s.ctx.Events != nil {
		s.ctx.Events.Publish(event)
	}
}
