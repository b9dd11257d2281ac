package repository

import (
	"fmt"

	"github.com/camden-git/attendancebackend/models"
	"gorm.io/gorm"
)

// AttendanceRepository handles database operations for the append-only
// attendance ledger. Records are only ever inserted here; day-level reads
// for the dashboard live in the database package.
type AttendanceRepository struct {
	DB *gorm.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

// Create appends a new attendance record. Errors are propagated to the
// caller rather than swallowed; the recognition engine decides whether a
// failed write is fatal (it is not).
func (r *AttendanceRepository) Create(record *models.Attendance) error {
	err := r.DB.Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to append attendance record for student %d: %w", record.StudentID, err)
	}
	return nil
}

// ListByStudent retrieves all attendance records for one student, newest first
func (r *AttendanceRepository) ListByStudent(studentID uint) ([]models.Attendance, error) {
	var records []models.Attendance
	err := r.DB.Where("student_id = ?", studentID).Order("timestamp DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for student %d: %w", studentID, err)
	}
	return records, nil
}
