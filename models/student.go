package models

// Student represents an enrolled student known to the recognizer.
// It corresponds to the 'students' table.
type Student struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string  `gorm:"not null" json:"name"`
	RollNo    string  `gorm:"uniqueIndex;not null" json:"roll_no"`
	PhotoPath *string `json:"photo_path,omitempty"`
	CreatedAt int64   `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt int64   `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Student) TableName() string {
	return "students"
}
