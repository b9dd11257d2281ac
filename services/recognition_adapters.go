package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/attendancebackend/media"
	"github.com/camden-git/attendancebackend/models"
	"github.com/camden-git/attendancebackend/recognition"
	"github.com/camden-git/attendancebackend/repository"
)

// AttendanceLedger adapts the attendance repository to the engine's Ledger
// contract.
type AttendanceLedger struct {
	repo repository.AttendanceRepositoryInterface
}

func NewAttendanceLedger(repo repository.AttendanceRepositoryInterface) *AttendanceLedger {
	return &AttendanceLedger{repo: repo}
}

func (l *AttendanceLedger) MarkPresent(identity recognition.Identity, sessionLabel string, at time.Time) error {
	return l.repo.Create(&models.Attendance{
		StudentID:   identity.StudentID,
		StudentName: identity.Name,
		Status:      models.AttendanceStatusPresent,
		Timestamp:   at.Unix(),
		Session:     sessionLabel,
	})
}

// AlertRecorder adapts the snapshot processor plus alert repository to the
// engine's AlertSink contract: the snapshot is written to the content store
// first, then the queue row is inserted pointing at it.
type AlertRecorder struct {
	processor *media.Processor
	repo      repository.AlertRepositoryInterface
}

func NewAlertRecorder(processor *media.Processor, repo repository.AlertRepositoryInterface) *AlertRecorder {
	return &AlertRecorder{processor: processor, repo: repo}
}

func (r *AlertRecorder) Enqueue(snapshot []byte, detectedAt time.Time) (uint, error) {
	path, err := r.processor.SaveSnapshot(snapshot)
	if err != nil {
		return 0, err
	}

	alert := &models.UnverifiedFace{
		ImagePath:    path,
		DetectedTime: detectedAt.Unix(),
	}
	if err := r.repo.Create(alert); err != nil {
		return 0, err
	}
	return alert.ID, nil
}

// studentDirectory adapts the student repository to the gallery's lookup
// contract: a missing roll number is reported as absent, not as an error.
type studentDirectory struct {
	repo repository.StudentRepositoryInterface
}

func NewStudentDirectory(repo repository.StudentRepositoryInterface) recognition.StudentDirectory {
	return &studentDirectory{repo: repo}
}

func (d *studentDirectory) FindByRoll(rollNo string) (uint, string, bool, error) {
	student, err := d.repo.GetByRollNo(rollNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", false, nil
		}
		return 0, "", false, err
	}
	return student.ID, student.Name, true, nil
}
