package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/regularization"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
	"github.com/jackc/pgx/v5"
)

const regularizationColumns = `
	id, employee_id, requester_role, attendance_date, attendance_id,
	request_type, reason, requested_check_in, requested_check_out, requested_status,
	original_snapshot, status, current_level, approvals, final_approver_id,
	audit_trail, version, created_at, updated_at`

type regularizationRepository struct {
	db *database.DB
}

func scanRegularization(row rowScanner) (regularization.Request, error) {
	var r regularization.Request
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.RequesterRole, &r.AttendanceDate, &r.AttendanceID,
		&r.RequestType, &r.Reason, &r.RequestedCheckIn, &r.RequestedCheckOut, &r.RequestedStatus,
		&r.OriginalSnapshot, &r.Status, &r.CurrentLevel, &r.Approvals, &r.FinalApproverID,
		&r.AuditTrail, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (rr *regularizationRepository) marshal(r regularization.Request) (snapshot, approvals, trail []byte, err error) {
	if r.OriginalSnapshot != nil {
		if snapshot, err = json.Marshal(r.OriginalSnapshot); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal original snapshot: %w", err)
		}
	}
	if approvals, err = jsonbArray(r.Approvals); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal approvals: %w", err)
	}
	if trail, err = jsonbArray(r.AuditTrail); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal audit trail: %w", err)
	}
	return snapshot, approvals, trail, nil
}

// Create implements regularization.RegularizationRepository.
func (rr *regularizationRepository) Create(ctx context.Context, r regularization.Request) (regularization.Request, error) {
	q := GetQuerier(ctx, rr.db)

	snapshot, approvals, trail, err := rr.marshal(r)
	if err != nil {
		return regularization.Request{}, err
	}

	query := `
		INSERT INTO regularization_requests (
			employee_id, requester_role, attendance_date, attendance_id,
			request_type, reason, requested_check_in, requested_check_out, requested_status,
			original_snapshot, status, current_level, approvals, final_approver_id, audit_trail
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		) RETURNING id, version, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		r.EmployeeID, r.RequesterRole, r.AttendanceDate, r.AttendanceID,
		r.RequestType, r.Reason, r.RequestedCheckIn, r.RequestedCheckOut, r.RequestedStatus,
		snapshot, r.Status, r.CurrentLevel, approvals, r.FinalApproverID, trail,
	).Scan(&r.ID, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return regularization.Request{}, regularization.ErrDuplicateRequest
		}
		return regularization.Request{}, fmt.Errorf("failed to create regularization request: %w", err)
	}

	return r, nil
}

// GetByID implements regularization.RegularizationRepository.
func (rr *regularizationRepository) GetByID(ctx context.Context, id string) (regularization.Request, error) {
	return rr.get(ctx, id, "")
}

// GetByIDForUpdate implements regularization.RegularizationRepository.
func (rr *regularizationRepository) GetByIDForUpdate(ctx context.Context, id string) (regularization.Request, error) {
	return rr.get(ctx, id, " FOR UPDATE")
}

func (rr *regularizationRepository) get(ctx context.Context, id string, lock string) (regularization.Request, error) {
	q := GetQuerier(ctx, rr.db)

	query := `SELECT ` + regularizationColumns + ` FROM regularization_requests WHERE id = $1` + lock

	r, err := scanRegularization(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return regularization.Request{}, regularization.ErrRegularizationNotFound
		}
		return regularization.Request{}, fmt.Errorf("failed to get regularization request: %w", err)
	}

	return r, nil
}

// Update implements regularization.RegularizationRepository.
func (rr *regularizationRepository) Update(ctx context.Context, r regularization.Request) (regularization.Request, error) {
	q := GetQuerier(ctx, rr.db)

	_, approvals, trail, err := rr.marshal(r)
	if err != nil {
		return regularization.Request{}, err
	}

	query := `
		UPDATE regularization_requests SET
			attendance_id = $3, requested_check_in = $4, requested_check_out = $5,
			requested_status = $6, status = $7, current_level = $8, approvals = $9,
			final_approver_id = $10, audit_trail = $11,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`

	err = q.QueryRow(ctx, query,
		r.ID, r.Version,
		r.AttendanceID, r.RequestedCheckIn, r.RequestedCheckOut,
		r.RequestedStatus, r.Status, r.CurrentLevel, approvals,
		r.FinalApproverID, trail,
	).Scan(&r.Version, &r.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return regularization.Request{}, regularization.ErrConcurrentUpdate
		}
		return regularization.Request{}, fmt.Errorf("failed to update regularization request: %w", err)
	}

	return r, nil
}

// HasOpenForDate implements regularization.RegularizationRepository.
func (rr *regularizationRepository) HasOpenForDate(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, rr.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM regularization_requests
			WHERE employee_id = $1
			  AND attendance_date = $2
			  AND status IN ($3, $4)
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, employeeID, date, workflow.LabelPending, workflow.LabelUnderReview).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open regularization requests: %w", err)
	}

	return exists, nil
}

// List implements regularization.RegularizationRepository.
func (rr *regularizationRepository) List(ctx context.Context, filter regularization.RegularizationFilter, v workflow.Visibility) ([]regularization.Request, int64, error) {
	q := GetQuerier(ctx, rr.db)

	baseWhere, args, argIdx := visibilityClause(v, 1)

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.CurrentLevel != nil && *filter.CurrentLevel != "" {
		baseWhere += fmt.Sprintf(" AND current_level = $%d", argIdx)
		args = append(args, *filter.CurrentLevel)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.RequestType != nil && *filter.RequestType != "" {
		baseWhere += fmt.Sprintf(" AND request_type = $%d", argIdx)
		args = append(args, *filter.RequestType)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND attendance_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND attendance_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM regularization_requests WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count regularization requests: %w", err)
	}

	orderByField := "created_at"
	switch filter.SortBy {
	case "attendance_date":
		orderByField = "attendance_date"
	case "status":
		orderByField = "status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM regularization_requests
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, regularizationColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query regularization requests: %w", err)
	}
	defer rows.Close()

	var requests []regularization.Request
	for rows.Next() {
		r, err := scanRegularization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan regularization request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate regularization requests: %w", err)
	}

	return requests, total, nil
}

// CountByStatus implements regularization.RegularizationRepository.
func (rr *regularizationRepository) CountByStatus(ctx context.Context, filter regularization.StatsFilter, v workflow.Visibility) (regularization.StatusCounts, error) {
	q := GetQuerier(ctx, rr.db)

	where, args, argIdx := visibilityClause(v, 1)

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		where += fmt.Sprintf(" AND attendance_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		where += fmt.Sprintf(" AND attendance_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
	}

	rows, err := q.Query(ctx, "SELECT status, COUNT(*) FROM regularization_requests WHERE "+where+" GROUP BY status", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count regularization requests: %w", err)
	}
	defer rows.Close()

	counts := regularization.StatusCounts{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan regularization count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate regularization counts: %w", err)
	}

	return counts, nil
}

func NewRegularizationRepository(db *database.DB) regularization.RegularizationRepository {
	return &regularizationRepository{db: db}
}
