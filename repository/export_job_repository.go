package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/attendancebackend/models"
	"gorm.io/gorm"
)

// ExportJobRepository handles database operations for CSV export jobs
type ExportJobRepository struct {
	DB *gorm.DB
}

// NewExportJobRepository creates a new instance of ExportJobRepository
func NewExportJobRepository(db *gorm.DB) *ExportJobRepository {
	return &ExportJobRepository{DB: db}
}

// Create inserts a new pending export job
func (r *ExportJobRepository) Create(job *models.ExportJob) error {
	job.Status = models.ExportStatusPending
	if job.CreatedAt == 0 {
		job.CreatedAt = time.Now().Unix()
	}
	err := r.DB.Create(job).Error
	if err != nil {
		return fmt.Errorf("failed to create export job for %s: %w", job.Day, err)
	}
	return nil
}

// GetByID retrieves an export job by its ID
func (r *ExportJobRepository) GetByID(id uint) (*models.ExportJob, error) {
	var job models.ExportJob
	err := r.DB.First(&job, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get export job by ID %d: %w", id, err)
	}
	return &job, nil
}

// ListAll retrieves all export jobs, newest first
func (r *ExportJobRepository) ListAll() ([]models.ExportJob, error) {
	var jobs []models.ExportJob
	err := r.DB.Order("created_at DESC").Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list export jobs: %w", err)
	}
	return jobs, nil
}

// MarkProcessing flags a job as picked up by a worker
func (r *ExportJobRepository) MarkProcessing(id uint) error {
	result := r.DB.Model(&models.ExportJob{}).Where("id = ?", id).
		Update("status", models.ExportStatusProcessing)
	if result.Error != nil {
		return fmt.Errorf("failed to mark export job %d processing: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetResult records the outcome of a finished export job
func (r *ExportJobRepository) SetResult(id uint, filePath *string, taskErr error) error {
	now := time.Now().Unix()
	updates := map[string]interface{}{
		"completed_at": &now,
	}
	if taskErr != nil {
		errMsg := taskErr.Error()
		updates["status"] = models.ExportStatusError
		updates["error"] = &errMsg
	} else {
		updates["status"] = models.ExportStatusDone
		updates["file_path"] = filePath
	}

	result := r.DB.Model(&models.ExportJob{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set export job %d result: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
