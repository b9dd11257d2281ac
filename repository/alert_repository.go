package repository

import (
	"errors"
	"fmt"

	"github.com/camden-git/attendancebackend/models"
	"gorm.io/gorm"
)

// AlertRepository handles database operations for unverified face alerts
type AlertRepository struct {
	DB *gorm.DB
}

// NewAlertRepository creates a new instance of AlertRepository
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{DB: db}
}

// Create inserts a new unresolved alert
func (r *AlertRepository) Create(alert *models.UnverifiedFace) error {
	alert.Resolved = models.AlertUnresolved
	err := r.DB.Create(alert).Error
	if err != nil {
		return fmt.Errorf("failed to create unverified face alert: %w", err)
	}
	return nil
}

// GetByID retrieves an alert by its ID
func (r *AlertRepository) GetByID(id uint) (*models.UnverifiedFace, error) {
	var alert models.UnverifiedFace
	err := r.DB.First(&alert, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get alert by ID %d: %w", id, err)
	}
	return &alert, nil
}

// ListUnresolved retrieves all alerts still awaiting review, oldest first
func (r *AlertRepository) ListUnresolved() ([]models.UnverifiedFace, error) {
	var alerts []models.UnverifiedFace
	err := r.DB.Where("resolved = ?", models.AlertUnresolved).Order("detected_time ASC").Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved alerts: %w", err)
	}
	return alerts, nil
}

// ListAll retrieves every alert regardless of resolution state, newest first
func (r *AlertRepository) ListAll() ([]models.UnverifiedFace, error) {
	var alerts []models.UnverifiedFace
	err := r.DB.Order("detected_time DESC").Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// SetResolved moves an alert into a terminal resolution state
func (r *AlertRepository) SetResolved(id uint, state int) error {
	if state != models.AlertApproved && state != models.AlertThreat {
		return fmt.Errorf("invalid alert resolution state %d", state)
	}
	result := r.DB.Model(&models.UnverifiedFace{}).Where("id = ?", id).Update("resolved", state)
	if result.Error != nil {
		return fmt.Errorf("failed to resolve alert ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
