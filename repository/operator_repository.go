package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/attendancebackend/models"
	"gorm.io/gorm"
)

// OperatorRepository handles database operations for dashboard operators
type OperatorRepository struct {
	DB *gorm.DB
}

// NewOperatorRepository creates a new instance of OperatorRepository
func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{DB: db}
}

// Create creates a new operator account
func (r *OperatorRepository) Create(operator *models.Operator) error {
	now := time.Now().Unix()
	if operator.CreatedAt == 0 {
		operator.CreatedAt = now
	}
	if operator.UpdatedAt == 0 {
		operator.UpdatedAt = now
	}
	err := r.DB.Create(operator).Error
	if err != nil {
		return fmt.Errorf("failed to create operator %s: %w", operator.Username, err)
	}
	return nil
}

// GetByUsername retrieves an operator by username
func (r *OperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	var operator models.Operator
	err := r.DB.Where("username = ?", username).First(&operator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get operator by username %s: %w", username, err)
	}
	return &operator, nil
}

// GetByID retrieves an operator by ID
func (r *OperatorRepository) GetByID(id uint) (*models.Operator, error) {
	var operator models.Operator
	err := r.DB.First(&operator, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get operator by ID %d: %w", id, err)
	}
	return &operator, nil
}

// Count returns the number of operator accounts
func (r *OperatorRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&models.Operator{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count operators: %w", err)
	}
	return count, nil
}
