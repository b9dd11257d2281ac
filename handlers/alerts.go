package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/attendancebackend/config"
	"github.com/camden-git/attendancebackend/models"
	"github.com/camden-git/attendancebackend/repository"
	"github.com/camden-git/attendancebackend/services"
)

type AlertHandler struct {
	AlertRepo repository.AlertRepositoryInterface
	Review    *services.AlertReviewService
}

func NewAlertHandler(alertRepo repository.AlertRepositoryInterface, review *services.AlertReviewService) *AlertHandler {
	return &AlertHandler{AlertRepo: alertRepo, Review: review}
}

// ListAlerts returns unresolved alerts by default; ?all=true includes
// resolved ones.
func (ah *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	var alerts []models.UnverifiedFace
	var err error
	if r.URL.Query().Get("all") == "true" {
		alerts, err = ah.AlertRepo.ListAll()
	} else {
		alerts, err = ah.AlertRepo.ListUnresolved()
	}
	if err != nil {
		log.Printf("Error listing alerts: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve alerts"})
		return
	}
	if alerts == nil {
		alerts = []models.UnverifiedFace{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (ah *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	alertID, ok := alertIDFromURL(w, r)
	if !ok {
		return
	}

	alert, err := ah.AlertRepo.GetByID(alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Alert not found"})
		} else {
			log.Printf("Error getting alert %d: %v", alertID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve alert"})
		}
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

// ApproveAlert registers the detected person as a student and marks the
// alert approved.
func (ah *AlertHandler) ApproveAlert(w http.ResponseWriter, r *http.Request) {
	alertID, ok := alertIDFromURL(w, r)
	if !ok {
		return
	}

	var req struct {
		Name    string `json:"name"`
		RollNo  string `json:"roll_no"`
		Session string `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if !config.ValidSession(req.Session) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid session label"})
		return
	}

	student, err := ah.Review.Approve(alertID, req.Name, req.RollNo, req.Session)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Alert not found"})
			return
		}
		log.Printf("Error approving alert %d: %v", alertID, err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// RejectAlert marks the alert as a threat.
func (ah *AlertHandler) RejectAlert(w http.ResponseWriter, r *http.Request) {
	alertID, ok := alertIDFromURL(w, r)
	if !ok {
		return
	}

	if err := ah.Review.Reject(alertID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Alert not found"})
			return
		}
		log.Printf("Error rejecting alert %d: %v", alertID, err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert marked as threat"})
}

func alertIDFromURL(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "alert_id")
	alertID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid alert ID format"})
		return 0, false
	}
	return uint(alertID), true
}
