package repository

import (
	"github.com/camden-git/attendancebackend/models"
)

// StudentRepositoryInterface defines the methods for student directory operations
type StudentRepositoryInterface interface {
	Create(student *models.Student) error
	GetByID(id uint) (*models.Student, error)
	GetByRollNo(rollNo string) (*models.Student, error)
	ListAll() ([]models.Student, error)
	Update(student *models.Student) error
	Delete(id uint) error
	// EnsureExists creates the student unless the roll number is already
	// registered, returning the existing or new record
	EnsureExists(name, rollNo string, photoPath *string) (*models.Student, error)
}

// AttendanceRepositoryInterface defines the methods for the append-only ledger
type AttendanceRepositoryInterface interface {
	Create(record *models.Attendance) error
	ListByStudent(studentID uint) ([]models.Attendance, error)
}

// AlertRepositoryInterface defines the methods for the unverified-face queue
type AlertRepositoryInterface interface {
	Create(alert *models.UnverifiedFace) error
	GetByID(id uint) (*models.UnverifiedFace, error)
	ListUnresolved() ([]models.UnverifiedFace, error)
	ListAll() ([]models.UnverifiedFace, error)
	SetResolved(id uint, state int) error
}

// ExportJobRepositoryInterface defines the methods for CSV export job tracking
type ExportJobRepositoryInterface interface {
	Create(job *models.ExportJob) error
	GetByID(id uint) (*models.ExportJob, error)
	ListAll() ([]models.ExportJob, error)
	MarkProcessing(id uint) error
	SetResult(id uint, filePath *string, taskErr error) error
}

// OperatorRepositoryInterface defines the methods for dashboard operator accounts
type OperatorRepositoryInterface interface {
	Create(operator *models.Operator) error
	GetByUsername(username string) (*models.Operator, error)
	GetByID(id uint) (*models.Operator, error)
	Count() (int64, error)
}
