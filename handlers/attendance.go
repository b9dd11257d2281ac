package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/camden-git/attendancebackend/config"
	"github.com/camden-git/attendancebackend/database"
)

type AttendanceHandler struct {
	DB *sql.DB
}

func NewAttendanceHandler(db *sql.DB) *AttendanceHandler {
	return &AttendanceHandler{DB: db}
}

// dayFromQuery parses the ?day= parameter, defaulting to today (local time).
func dayFromQuery(r *http.Request) (string, bool) {
	day := r.URL.Query().Get("day")
	if day == "" {
		return time.Now().Local().Format("2006-01-02"), true
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return "", false
	}
	return day, true
}

// GetDailyReport returns attendance for a calendar day, optionally filtered
// to a single session via ?session=.
func (ah *AttendanceHandler) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	day, ok := dayFromQuery(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid day format, expected YYYY-MM-DD"})
		return
	}

	sessionLabel := r.URL.Query().Get("session")
	if sessionLabel != "" && !config.ValidSession(sessionLabel) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid session label"})
		return
	}

	rows, err := database.GetAttendanceByDay(ah.DB, day, sessionLabel)
	if err != nil {
		log.Printf("Error querying attendance for %s: %v", day, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve attendance report"})
		return
	}
	if rows == nil {
		rows = []database.AttendanceReportRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetDaySummary returns present/total counts for a day plus the number of
// unresolved alerts, for the dashboard landing page.
func (ah *AttendanceHandler) GetDaySummary(w http.ResponseWriter, r *http.Request) {
	day, ok := dayFromQuery(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid day format, expected YYYY-MM-DD"})
		return
	}

	summary, err := database.GetDaySummary(ah.DB, day)
	if err != nil {
		log.Printf("Error querying day summary for %s: %v", day, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve day summary"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
