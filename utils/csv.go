package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/camden-git/attendancebackend/database"
)

// WriteAttendanceCSV streams an attendance report as CSV. Timestamps are
// rendered in local time alongside the raw unix value so the export is
// usable both by spreadsheets and by scripts.
func WriteAttendanceCSV(w io.Writer, rows []database.AttendanceReportRow) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "roll_no", "student_name", "status", "session", "timestamp", "time_local"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.RollNo,
			row.StudentName,
			row.Status,
			row.Session,
			strconv.FormatInt(row.Timestamp, 10),
			time.Unix(row.Timestamp, 0).Local().Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record for attendance %d: %w", row.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}
