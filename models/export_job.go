package models

// Export job lifecycle states.
const (
	ExportStatusPending    = "pending"
	ExportStatusProcessing = "processing"
	ExportStatusDone       = "done"
	ExportStatusError      = "error"
)

// ExportJob tracks a queued CSV export of one day's attendance.
// It corresponds to the 'export_jobs' table.
type ExportJob struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Day         string  `gorm:"not null" json:"day"` // calendar day, YYYY-MM-DD
	Session     string  `json:"session"`             // empty means all sessions
	Status      string  `gorm:"not null" json:"status"`
	FilePath    *string `json:"file_path,omitempty"` // relative path within the media store once done
	Error       *string `json:"error,omitempty"`
	CreatedAt   int64   `gorm:"not null" json:"created_at"`
	CompletedAt *int64  `json:"completed_at,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (ExportJob) TableName() string {
	return "export_jobs"
}
