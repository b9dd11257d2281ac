package services

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/camden-git/attendancebackend/config"
	"github.com/camden-git/attendancebackend/recognition"
	"github.com/camden-git/attendancebackend/repository"
	"github.com/camden-git/attendancebackend/vision"
)

var (
	// ErrSessionRunning is returned when a start is requested while a
	// session is already active.
	ErrSessionRunning = errors.New("a recognition session is already running")
	// ErrNoSession is returned when a stop is requested with nothing running.
	ErrNoSession = errors.New("no recognition session is running")
)

// SessionService owns at most one live recognition session at a time. It
// assembles a fresh SessionContext on every start (camera, detector,
// classifier, gallery), so model or roster changes are picked up by simply
// starting a new session.
type SessionService struct {
	cfg         config.Config
	studentRepo repository.StudentRepositoryInterface
	ledger      recognition.Ledger
	alerts      recognition.AlertSink
	events      recognition.EventSink

	mu      sync.Mutex
	current *recognition.Session
	lastErr error
}

func NewSessionService(
	cfg config.Config,
	studentRepo repository.StudentRepositoryInterface,
	ledger recognition.Ledger,
	alerts recognition.AlertSink,
	events recognition.EventSink,
) *SessionService {
	return &SessionService{
		cfg:         cfg,
		studentRepo: studentRepo,
		ledger:      ledger,
		alerts:      alerts,
		events:      events,
	}
}

// Start builds and launches a new recognition session for the given session
// label (empty means the configured default). It returns once the session
// loop is running; the loop itself runs on its own goroutine and shares
// nothing with the dashboard beyond the persistent store and the event hub.
func (s *SessionService) Start(sessionLabel string) error {
	if sessionLabel == "" {
		sessionLabel = s.cfg.SessionLabel
	}
	if !config.ValidSession(sessionLabel) {
		return fmt.Errorf("invalid session label %q, must be one of %v", sessionLabel, config.Sessions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// a launched session counts as live until its loop reports stopped;
	// right after Start it can still be idle, its goroutine not yet
	// scheduled, and treating idle as free would let a second start
	// open the camera twice
	if s.current != nil && s.current.State() != recognition.StateStopped {
		return ErrSessionRunning
	}

	session, closeAll, err := s.buildSession(sessionLabel)
	if err != nil {
		return err
	}

	s.current = session
	s.lastErr = nil

	go func() {
		err := session.Run()
		closeAll()
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		if err != nil {
			log.Printf("session: terminated with error: %v", err)
		}
	}()

	return nil
}

// buildSession opens the device and loads the model artifacts. Every
// failure here is fatal to the start request; nothing stays half-open.
func (s *SessionService) buildSession(sessionLabel string) (*recognition.Session, func(), error) {
	gallery, err := recognition.LoadGallery(s.cfg.LabelMapPath, NewStudentDirectory(s.studentRepo))
	if err != nil {
		return nil, nil, err
	}

	detector, err := vision.NewHaarDetector(s.cfg.CascadePath)
	if err != nil {
		return nil, nil, err
	}

	classifier, err := vision.NewLBPHClassifier(s.cfg.ModelPath, s.cfg.FaceSizeWidth, s.cfg.FaceSizeHeight)
	if err != nil {
		detector.Close()
		return nil, nil, err
	}

	camera, err := vision.OpenCamera(s.cfg.CameraIndex, s.cfg.CameraWidth, s.cfg.CameraHeight)
	if err != nil {
		detector.Close()
		return nil, nil, err
	}

	var display recognition.Displayer
	var preview *vision.PreviewWindow
	if s.cfg.ShowPreview {
		preview = vision.NewPreviewWindow("Attendance")
		display = preview
	}

	sessionCfg := recognition.Config{
		ConfidenceThreshold: s.cfg.ConfidenceThreshold,
		AlertCooldown:       s.cfg.AlertCooldown,
		SessionLabel:        sessionLabel,
		MaxDuration:         s.cfg.MaxSessionDuration,
	}
	session, err := recognition.NewSession(sessionCfg, recognition.SessionContext{
		Source:     camera,
		Detector:   detector,
		Classifier: classifier,
		Gallery:    gallery,
		Ledger:     s.ledger,
		Alerts:     s.alerts,
		Events:     s.events,
		Display:    display,
	})
	if err != nil {
		camera.Close()
		detector.Close()
		if preview != nil {
			preview.Close()
		}
		return nil, nil, err
	}

	// the session closes the camera itself; this releases the rest
	closeAll := func() {
		detector.Close()
		if preview != nil {
			preview.Close()
		}
	}
	return session, closeAll, nil
}

// Stop signals the running session to terminate. The loop observes the
// signal on its next frame iteration.
func (s *SessionService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// mirror Start's liveness rule: a launched session that has not
	// reached its loop yet is still stoppable, Session.Stop is observed
	// on the loop's first iteration
	if s.current == nil || s.current.State() == recognition.StateStopped {
		return ErrNoSession
	}
	s.current.Stop()
	return nil
}

// Status reports the current (or most recent) session's stats plus any
// terminal error it exited with.
func (s *SessionService) Status() (recognition.Stats, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return recognition.Stats{State: "idle"}, ""
	}

	stats := s.current.Stats()
	errMsg := ""
	if s.lastErr != nil {
		errMsg = s.lastErr.Error()
	}
	return stats, errMsg
}
