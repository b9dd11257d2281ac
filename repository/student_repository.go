package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/attendancebackend/models"
	"gorm.io/gorm"
)

// StudentRepository handles database operations for Student entities
type StudentRepository struct {
	DB *gorm.DB
}

// NewStudentRepository creates a new instance of StudentRepository
func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

// Create creates a new student record in the database
func (r *StudentRepository) Create(student *models.Student) error {
	now := time.Now().Unix()
	if student.CreatedAt == 0 {
		student.CreatedAt = now
	}
	if student.UpdatedAt == 0 {
		student.UpdatedAt = now
	}

	err := r.DB.Create(student).Error
	if err != nil {
		return fmt.Errorf("failed to create student %s: %w", student.RollNo, err)
	}
	return nil
}

// GetByID retrieves a student by their ID
func (r *StudentRepository) GetByID(id uint) (*models.Student, error) {
	var student models.Student
	err := r.DB.First(&student, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get student by ID %d: %w", id, err)
	}
	return &student, nil
}

// GetByRollNo retrieves a student by their roll number
func (r *StudentRepository) GetByRollNo(rollNo string) (*models.Student, error) {
	var student models.Student
	err := r.DB.Where("roll_no = ?", rollNo).First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get student by roll number %s: %w", rollNo, err)
	}
	return &student, nil
}

// ListAll retrieves all students, ordered by roll number
func (r *StudentRepository) ListAll() ([]models.Student, error) {
	var students []models.Student
	err := r.DB.Order("roll_no ASC").Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// Update updates an existing student's details
func (r *StudentRepository) Update(student *models.Student) error {
	student.UpdatedAt = time.Now().Unix()
	result := r.DB.Model(&models.Student{ID: student.ID}).Updates(map[string]interface{}{
		"name":       student.Name,
		"roll_no":    student.RollNo,
		"photo_path": student.PhotoPath,
		"updated_at": student.UpdatedAt,
	})

	if result.Error != nil {
		return fmt.Errorf("failed to update student ID %d: %w", student.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a student record
func (r *StudentRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Student{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete student ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// EnsureExists returns the student registered under rollNo, creating the
// record first if no such student exists yet
func (r *StudentRepository) EnsureExists(name, rollNo string, photoPath *string) (*models.Student, error) {
	existing, err := r.GetByRollNo(rollNo)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student := &models.Student{Name: name, RollNo: rollNo, PhotoPath: photoPath}
	if err := r.Create(student); err != nil {
		return nil, err
	}
	return student, nil
}
