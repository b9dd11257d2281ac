package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/camden-git/attendancebackend/recognition"
	"github.com/camden-git/attendancebackend/services"
)

type SessionHandler struct {
	Service *services.SessionService
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{Service: service}
}

// StartSession launches a recognition session. Fails with 409 if one is
// already running and 422 if the camera or model artifacts cannot be opened.
func (sh *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Session string `json:"session"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
			return
		}
	}

	if err := sh.Service.Start(req.Session); err != nil {
		if errors.Is(err, services.ErrSessionRunning) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		var cfgErr *recognition.ConfigurationError
		var devErr *recognition.DeviceError
		if errors.As(err, &cfgErr) || errors.As(err, &devErr) {
			log.Printf("Error starting session: %v", err)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Recognition session started"})
}

func (sh *SessionHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	if err := sh.Service.Stop(); err != nil {
		if errors.Is(err, services.ErrNoSession) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("Error stopping session: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to stop session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Recognition session stopping"})
}

func (sh *SessionHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	stats, errMsg := sh.Service.Status()
	resp := map[string]interface{}{"stats": stats}
	if errMsg != "" {
		resp["error"] = errMsg
	}
	writeJSON(w, http.StatusOK, resp)
}
