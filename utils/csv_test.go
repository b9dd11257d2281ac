package utils

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/camden-git/attendancebackend/database"
)

func TestWriteAttendanceCSV(t *testing.T) {
	rows := []database.AttendanceReportRow{
		{ID: 1, StudentID: 7, StudentName: "Asha Rao", RollNo: "21CS042", Status: "Present", Timestamp: 1756623600, Session: "Morning"},
		{ID: 2, StudentID: 8, StudentName: "Dev Patel", RollNo: "21CS043", Status: "Present", Timestamp: 1756623660, Session: "Morning"},
	}

	var buf bytes.Buffer
	if err := WriteAttendanceCSV(&buf, rows); err != nil {
		t.Fatalf("WriteAttendanceCSV returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 records, got %d rows", len(records))
	}
	if got := strings.Join(records[0], ","); got != "id,roll_no,student_name,status,session,timestamp,time_local" {
		t.Errorf("unexpected header: %s", got)
	}
	if records[1][1] != "21CS042" || records[1][3] != "Present" {
		t.Errorf("unexpected first record: %v", records[1])
	}
	if records[2][5] != "1756623660" {
		t.Errorf("unexpected timestamp in second record: %v", records[2])
	}
}

func TestWriteAttendanceCSVEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAttendanceCSV(&buf, nil); err != nil {
		t.Fatalf("WriteAttendanceCSV returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected only the header row, got %d rows", len(records))
	}
}
