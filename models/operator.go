package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Operator is a dashboard user allowed to review alerts, manage students
// and control recognition sessions.
type Operator struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"` // "-" means don't include in JSON responses
	CreatedAt    int64  `gorm:"not null" json:"created_at"`
	UpdatedAt    int64  `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Operator) TableName() string {
	return "operators"
}

// SetPassword hashes the given password and sets it on the operator model.
func (o *Operator) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the operator's hashed password.
func (o *Operator) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password))
	return err == nil
}
