package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/camden-git/attendancebackend/models"
	"github.com/camden-git/attendancebackend/repository"
)

// AlertReviewService implements the human-review workflow for unverified
// face alerts. The engine only creates alerts; all mutation happens here.
type AlertReviewService struct {
	alertRepo      repository.AlertRepositoryInterface
	studentRepo    repository.StudentRepositoryInterface
	attendanceRepo repository.AttendanceRepositoryInterface
}

func NewAlertReviewService(
	alertRepo repository.AlertRepositoryInterface,
	studentRepo repository.StudentRepositoryInterface,
	attendanceRepo repository.AttendanceRepositoryInterface,
) *AlertReviewService {
	return &AlertReviewService{
		alertRepo:      alertRepo,
		studentRepo:    studentRepo,
		attendanceRepo: attendanceRepo,
	}
}

// Approve registers the detected face as a new (or existing) student,
// appends a Present record for the session the alert was captured in and
// marks the alert approved. The snapshot stays on disk and the alert stays
// queryable in its resolved state.
func (s *AlertReviewService) Approve(alertID uint, name, rollNo, sessionLabel string) (*models.Student, error) {
	name = strings.TrimSpace(name)
	rollNo = strings.TrimSpace(rollNo)
	if name == "" || rollNo == "" {
		return nil, fmt.Errorf("name and roll number are required to approve an alert")
	}

	alert, err := s.alertRepo.GetByID(alertID)
	if err != nil {
		return nil, err
	}
	if alert.Resolved != models.AlertUnresolved {
		return nil, fmt.Errorf("alert %d is already resolved", alertID)
	}

	photoPath := alert.ImagePath
	student, err := s.studentRepo.EnsureExists(name, rollNo, &photoPath)
	if err != nil {
		return nil, err
	}

	record := &models.Attendance{
		StudentID:   student.ID,
		StudentName: student.Name,
		Status:      models.AttendanceStatusPresent,
		Timestamp:   alert.DetectedTime,
		Session:     sessionLabel,
	}
	if err := s.attendanceRepo.Create(record); err != nil {
		return nil, fmt.Errorf("student registered but attendance write failed: %w", err)
	}

	if err := s.alertRepo.SetResolved(alertID, models.AlertApproved); err != nil {
		return nil, err
	}

	log.Printf("review: alert %d approved as %s (%s)", alertID, rollNo, name)
	return student, nil
}

// Reject marks the alert as a threat. Nothing else changes; the snapshot
// remains available as evidence.
func (s *AlertReviewService) Reject(alertID uint) error {
	alert, err := s.alertRepo.GetByID(alertID)
	if err != nil {
		return err
	}
	if alert.Resolved != models.AlertUnresolved {
		return fmt.Errorf("alert %d is already resolved", alertID)
	}

	if err := s.alertRepo.SetResolved(alertID, models.AlertThreat); err != nil {
		return err
	}
	log.Printf("review: alert %d marked as threat", alertID)
	return nil
}
