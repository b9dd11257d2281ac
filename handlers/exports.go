package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/attendancebackend/config"
	"github.com/camden-git/attendancebackend/models"
	"github.com/camden-git/attendancebackend/repository"
	"github.com/camden-git/attendancebackend/workers"
)

type ExportHandler struct {
	ExportRepo repository.ExportJobRepositoryInterface
	Processor  *workers.ExportProcessor
}

func NewExportHandler(exportRepo repository.ExportJobRepositoryInterface, processor *workers.ExportProcessor) *ExportHandler {
	return &ExportHandler{ExportRepo: exportRepo, Processor: processor}
}

// CreateExport records an export job and queues it for the background
// workers. The response carries the job so the client can poll its status.
func (eh *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day     string `json:"day"`
		Session string `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.Day == "" {
		req.Day = time.Now().Local().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Day); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid day format, expected YYYY-MM-DD"})
		return
	}
	if req.Session != "" && !config.ValidSession(req.Session) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid session label"})
		return
	}

	job := &models.ExportJob{
		Day:     req.Day,
		Session: req.Session,
		Status:  models.ExportStatusPending,
	}
	if err := eh.ExportRepo.Create(job); err != nil {
		log.Printf("Error creating export job for %s: %v", req.Day, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create export job"})
		return
	}

	queued := eh.Processor.QueueJob(workers.ExportJob{JobID: job.ID, Day: job.Day, Session: job.Session})
	if !queued {
		errMsg := "an export for this day and session is already queued"
		if setErr := eh.ExportRepo.SetResult(job.ID, nil, errors.New(errMsg)); setErr != nil {
			log.Printf("Error marking duplicate export job %d: %v", job.ID, setErr)
		}
		writeJSON(w, http.StatusConflict, map[string]string{"error": errMsg})
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

func (eh *ExportHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	jobs, err := eh.ExportRepo.ListAll()
	if err != nil {
		log.Printf("Error listing export jobs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve export jobs"})
		return
	}
	if jobs == nil {
		jobs = []models.ExportJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (eh *ExportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "job_id")
	jobID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid job ID format"})
		return
	}

	job, err := eh.ExportRepo.GetByID(uint(jobID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Export job not found"})
		} else {
			log.Printf("Error getting export job %d: %v", jobID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve export job"})
		}
		return
	}
	writeJSON(w, http.StatusOK, job)
}
