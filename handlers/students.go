package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/attendancebackend/models"
	"github.com/camden-git/attendancebackend/repository"
)

type StudentHandler struct {
	StudentRepo repository.StudentRepositoryInterface
}

func NewStudentHandler(studentRepo repository.StudentRepositoryInterface) *StudentHandler {
	return &StudentHandler{StudentRepo: studentRepo}
}

func (sh *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		RollNo string `json:"roll_no"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.RollNo = strings.TrimSpace(req.RollNo)
	if req.Name == "" || req.RollNo == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields: name, roll_no"})
		return
	}

	// registration is an upsert by roll number: re-registering an enrolled
	// student returns the existing record untouched
	if existing, err := sh.StudentRepo.GetByRollNo(req.RollNo); err == nil {
		writeJSON(w, http.StatusOK, existing)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking roll number '%s': %v", req.RollNo, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create student"})
		return
	}

	student := &models.Student{Name: req.Name, RollNo: req.RollNo}
	if err := sh.StudentRepo.Create(student); err != nil {
		log.Printf("Error creating student '%s': %v", req.RollNo, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create student"})
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

func (sh *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := sh.StudentRepo.ListAll()
	if err != nil {
		log.Printf("Error listing students: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve students"})
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (sh *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := sh.studentFromURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (sh *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := sh.studentFromURL(w, r)
	if !ok {
		return
	}

	var req struct {
		Name   *string `json:"name"`
		RollNo *string `json:"roll_no"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name must not be empty"})
			return
		}
		student.Name = name
	}
	if req.RollNo != nil {
		rollNo := strings.TrimSpace(*req.RollNo)
		if rollNo == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "roll_no must not be empty"})
			return
		}
		student.RollNo = rollNo
	}

	if err := sh.StudentRepo.Update(student); err != nil {
		log.Printf("Error updating student %d: %v", student.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update student"})
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (sh *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := sh.studentFromURL(w, r)
	if !ok {
		return
	}

	if err := sh.StudentRepo.Delete(student.ID); err != nil {
		log.Printf("Error deleting student %d: %v", student.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete student"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStudentAttendance returns a student's full attendance history.
func (sh *StudentHandler) ListStudentAttendance(attendanceRepo repository.AttendanceRepositoryInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := sh.studentFromURL(w, r)
		if !ok {
			return
		}

		records, err := attendanceRepo.ListByStudent(student.ID)
		if err != nil {
			log.Printf("Error listing attendance for student %d: %v", student.ID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve attendance history"})
			return
		}
		if records == nil {
			records = []models.Attendance{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (sh *StudentHandler) studentFromURL(w http.ResponseWriter, r *http.Request) (*models.Student, bool) {
	idStr := chi.URLParam(r, "student_id")
	studentID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid student ID format"})
		return nil, false
	}

	student, err := sh.StudentRepo.GetByID(uint(studentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Student not found"})
		} else {
			log.Printf("Error getting student %d: %v", studentID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve student"})
		}
		return nil, false
	}
	return student, true
}
