package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, employee_id, date, check_in, check_out, break_minutes,
	total_hours, status, is_late, late_minutes, is_early, early_minutes,
	overtime_hours, shortage_hours, adjusted_overtime_hours,
	last_activity_time, auto_checked_out, is_regularized, regularization_id,
	late_waived, early_waived, location, notes, history, version,
	created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func scanAttendance(row rowScanner) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.CheckIn, &rec.CheckOut, &rec.BreakMinutes,
		&rec.TotalHours, &rec.Status, &rec.IsLate, &rec.LateMinutes, &rec.IsEarly, &rec.EarlyMinutes,
		&rec.OvertimeHours, &rec.ShortageHours, &rec.AdjustedOvertimeHours,
		&rec.LastActivityTime, &rec.AutoCheckedOut, &rec.IsRegularized, &rec.RegularizationID,
		&rec.LateWaived, &rec.EarlyWaived, &rec.Location, &rec.Notes, &rec.History, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	history, err := jsonbArray(rec.History)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to marshal attendance history: %w", err)
	}

	query := `
		INSERT INTO attendances (
			employee_id, date, check_in, check_out, break_minutes,
			total_hours, status, is_late, late_minutes, is_early, early_minutes,
			overtime_hours, shortage_hours, adjusted_overtime_hours,
			last_activity_time, auto_checked_out, is_regularized, regularization_id,
			late_waived, early_waived, location, notes, history
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		) RETURNING id, version, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		rec.EmployeeID, rec.Date, rec.CheckIn, rec.CheckOut, rec.BreakMinutes,
		rec.TotalHours, rec.Status, rec.IsLate, rec.LateMinutes, rec.IsEarly, rec.EarlyMinutes,
		rec.OvertimeHours, rec.ShortageHours, rec.AdjustedOvertimeHours,
		rec.LastActivityTime, rec.AutoCheckedOut, rec.IsRegularized, rec.RegularizationID,
		rec.LateWaived, rec.EarlyWaived, rec.Location, rec.Notes, history,
	).Scan(&rec.ID, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`

	rec, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return a.getByEmployeeAndDate(ctx, employeeID, date, "")
}

// GetByEmployeeAndDateForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return a.getByEmployeeAndDate(ctx, employeeID, date, " FOR UPDATE")
}

func (a *attendanceRepository) getByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, lock string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date = $2` + lock

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &rec, nil
}

// GetOpenSessionForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenSessionForUpdate(ctx context.Context, employeeID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1
		  AND check_in IS NOT NULL
		  AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
		FOR UPDATE`

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	history, err := jsonbArray(rec.History)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to marshal attendance history: %w", err)
	}

	query := `
		UPDATE attendances SET
			check_in = $3, check_out = $4, break_minutes = $5,
			total_hours = $6, status = $7, is_late = $8, late_minutes = $9,
			is_early = $10, early_minutes = $11, overtime_hours = $12,
			shortage_hours = $13, adjusted_overtime_hours = $14,
			last_activity_time = $15, auto_checked_out = $16, is_regularized = $17,
			regularization_id = $18, late_waived = $19, early_waived = $20,
			location = $21, notes = $22, history = $23,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`

	err = q.QueryRow(ctx, query,
		rec.ID, rec.Version,
		rec.CheckIn, rec.CheckOut, rec.BreakMinutes,
		rec.TotalHours, rec.Status, rec.IsLate, rec.LateMinutes,
		rec.IsEarly, rec.EarlyMinutes, rec.OvertimeHours,
		rec.ShortageHours, rec.AdjustedOvertimeHours,
		rec.LastActivityTime, rec.AutoCheckedOut, rec.IsRegularized,
		rec.RegularizationID, rec.LateWaived, rec.EarlyWaived,
		rec.Location, rec.Notes, history,
	).Scan(&rec.Version, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrConcurrentUpdate
		}
		return attendance.Record{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	return rec, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.IsLate != nil {
		baseWhere += fmt.Sprintf(" AND is_late = $%d", argIdx)
		args = append(args, *filter.IsLate)
		argIdx++
	}
	if filter.IsRegularized != nil {
		baseWhere += fmt.Sprintf(" AND is_regularized = $%d", argIdx)
		args = append(args, *filter.IsRegularized)
		argIdx++
	}

	// Count total
	countQuery := "SELECT COUNT(*) FROM attendances WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	// Build ORDER BY
	orderByField := "date"
	switch filter.SortBy {
	case "check_in":
		orderByField = "check_in"
	case "check_out":
		orderByField = "check_out"
	case "status":
		orderByField = "status"
	case "total_hours":
		orderByField = "total_hours"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return records, total, nil
}

// ListOpenInactiveSince implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenInactiveSince(ctx context.Context, before time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE check_in IS NOT NULL
		  AND check_out IS NULL
		  AND COALESCE(last_activity_time, check_in) < $1
		ORDER BY check_in`

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate open attendances: %w", err)
	}

	return records, nil
}

// Statistics implements attendance.AttendanceRepository.
func (a *attendanceRepository) Statistics(ctx context.Context, filter attendance.StatisticsFilter) (attendance.Statistics, error) {
	q := GetQuerier(ctx, a.db)

	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		where += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		where += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
	}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Present'),
			COUNT(*) FILTER (WHERE status = 'Half Day'),
			COUNT(*) FILTER (WHERE status = 'Absent'),
			COUNT(*) FILTER (WHERE is_late),
			COUNT(*) FILTER (WHERE is_early),
			COUNT(*) FILTER (WHERE is_regularized),
			COUNT(*) FILTER (WHERE auto_checked_out),
			COALESCE(SUM(total_hours), 0),
			COALESCE(SUM(overtime_hours), 0),
			COALESCE(SUM(shortage_hours), 0)
		FROM attendances
		WHERE ` + where

	var st attendance.Statistics
	err := q.QueryRow(ctx, query, args...).Scan(
		&st.TotalRecords, &st.PresentDays, &st.HalfDays, &st.AbsentDays,
		&st.LateDays, &st.EarlyDays, &st.RegularizedDays, &st.AutoCheckedOutDays,
		&st.TotalHours, &st.OvertimeHours, &st.ShortageHours,
	)
	if err != nil {
		return attendance.Statistics{}, fmt.Errorf("failed to get attendance statistics: %w", err)
	}

	return st, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
