package models

const (
	AttendanceStatusPresent = "Present"
	AttendanceStatusAbsent  = "Absent"
)

// Attendance is a single append-only presence record produced by the
// recognition engine (or by the alert review workflow on approval).
// It corresponds to the 'attendance' table. Records are never mutated
// or deleted by the engine after creation.
type Attendance struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   uint   `gorm:"index;not null" json:"student_id"`
	StudentName string `gorm:"not null" json:"student_name"`
	Status      string `gorm:"not null" json:"status"`
	Timestamp   int64  `gorm:"index;not null" json:"timestamp"` // Unix timestamp of the recognition
	Session     string `gorm:"index;not null" json:"session"`   // Morning / Afternoon / Evening
}

// TableName explicitly sets the table name for GORM.
func (Attendance) TableName() string {
	return "attendance"
}
