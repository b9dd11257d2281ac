package models

// Resolution states for an unverified face alert.
const (
	AlertUnresolved = 0
	AlertApproved   = 1
	AlertThreat     = 2
)

// UnverifiedFace is a low-confidence detection parked for human review.
// The engine only ever creates these; the review workflow mutates the
// resolved column and nothing else.
// It corresponds to the 'unverified_faces' table.
type UnverifiedFace struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ImagePath    string `gorm:"not null" json:"image_path"` // snapshot path relative to the media store
	DetectedTime int64  `gorm:"index;not null" json:"detected_time"`
	Resolved     int    `gorm:"index;not null;default:0" json:"resolved"` // 0=unresolved, 1=approved, 2=threat
}

// TableName explicitly sets the table name for GORM.
func (UnverifiedFace) TableName() string {
	return "unverified_faces"
}
