package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// AttendanceReportRow is one row of the daily attendance report, joining
// attendance records with the student directory.
type AttendanceReportRow struct {
	ID          uint   `json:"id"`
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	RollNo      string `json:"roll_no"`
	Status      string `json:"status"`
	Timestamp   int64  `json:"timestamp"`
	Session     string `json:"session"`
}

// DaySummary aggregates one calendar day of attendance for the dashboard.
type DaySummary struct {
	Day            string `json:"day"`
	PresentCount   int    `json:"present_count"`
	TotalStudents  int    `json:"total_students"`
	UnresolvedFace int    `json:"unresolved_faces"`
}

// GetAttendanceByDay returns attendance records for the given calendar day
// (YYYY-MM-DD, local time) joined with student details. sessionLabel filters
// to a single session when non-empty.
func GetAttendanceByDay(db *sql.DB, day, sessionLabel string) ([]AttendanceReportRow, error) {
	queryBuilder := psql.Select(
		"a.id", "a.student_id", "a.student_name", "s.roll_no",
		"a.status", "a.timestamp", "a.session",
	).
		From("attendance a").
		Join("students s ON s.id = a.student_id").
		Where(sq.Expr("date(a.timestamp, 'unixepoch', 'localtime') = ?", day)).
		OrderBy("a.timestamp ASC")

	if sessionLabel != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"a.session": sessionLabel})
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetAttendanceByDay: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance for %s: %w", day, err)
	}
	defer rows.Close()

	var report []AttendanceReportRow
	for rows.Next() {
		var row AttendanceReportRow
		if err := rows.Scan(&row.ID, &row.StudentID, &row.StudentName, &row.RollNo,
			&row.Status, &row.Timestamp, &row.Session); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

// GetDaySummary returns present/total counts for a calendar day plus the
// current number of unresolved face alerts.
func GetDaySummary(db *sql.DB, day string) (DaySummary, error) {
	summary := DaySummary{Day: day}

	presentQuery := psql.Select("COUNT(DISTINCT a.student_id)").
		From("attendance a").
		Where(sq.Expr("date(a.timestamp, 'unixepoch', 'localtime') = ?", day)).
		Where(sq.Eq{"a.status": "Present"})
	sqlStr, args, err := presentQuery.ToSql()
	if err != nil {
		return summary, fmt.Errorf("failed to build SQL query for present count: %w", err)
	}
	if err := db.QueryRow(sqlStr, args...).Scan(&summary.PresentCount); err != nil {
		return summary, fmt.Errorf("failed to query present count for %s: %w", day, err)
	}

	totalQuery := psql.Select("COUNT(*)").From("students")
	sqlStr, args, err = totalQuery.ToSql()
	if err != nil {
		return summary, fmt.Errorf("failed to build SQL query for student count: %w", err)
	}
	if err := db.QueryRow(sqlStr, args...).Scan(&summary.TotalStudents); err != nil {
		return summary, fmt.Errorf("failed to query student count: %w", err)
	}

	alertQuery := psql.Select("COUNT(*)").
		From("unverified_faces").
		Where(sq.Eq{"resolved": 0})
	sqlStr, args, err = alertQuery.ToSql()
	if err != nil {
		return summary, fmt.Errorf("failed to build SQL query for alert count: %w", err)
	}
	if err := db.QueryRow(sqlStr, args...).Scan(&summary.UnresolvedFace); err != nil {
		return summary, fmt.Errorf("failed to query unresolved alert count: %w", err)
	}

	return summary, nil
}
