package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/permission"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
	"github.com/jackc/pgx/v5"
)

const permissionColumns = `
	id, employee_id, requester_role, date, start_time, end_time, duration_minutes,
	reason, status, current_level, approvals, final_approver_id, audit_trail,
	version, created_at, updated_at`

type permissionRequestRepository struct {
	db *database.DB
}

func scanPermission(row rowScanner) (permission.Request, error) {
	var r permission.Request
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.RequesterRole, &r.Date, &r.StartTime, &r.EndTime, &r.DurationMinutes,
		&r.Reason, &r.Status, &r.CurrentLevel, &r.Approvals, &r.FinalApproverID, &r.AuditTrail,
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create implements permission.PermissionRepository.
func (p *permissionRequestRepository) Create(ctx context.Context, r permission.Request) (permission.Request, error) {
	q := GetQuerier(ctx, p.db)

	approvals, err := jsonbArray(r.Approvals)
	if err != nil {
		return permission.Request{}, fmt.Errorf("failed to marshal approvals: %w", err)
	}
	trail, err := jsonbArray(r.AuditTrail)
	if err != nil {
		return permission.Request{}, fmt.Errorf("failed to marshal audit trail: %w", err)
	}

	query := `
		INSERT INTO permission_requests (
			employee_id, requester_role, date, start_time, end_time, duration_minutes,
			reason, status, current_level, approvals, final_approver_id, audit_trail
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id, version, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		r.EmployeeID, r.RequesterRole, r.Date, r.StartTime, r.EndTime, r.DurationMinutes,
		r.Reason, r.Status, r.CurrentLevel, approvals, r.FinalApproverID, trail,
	).Scan(&r.ID, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return permission.Request{}, fmt.Errorf("failed to create permission request: %w", err)
	}

	return r, nil
}

// GetByID implements permission.PermissionRepository.
func (p *permissionRequestRepository) GetByID(ctx context.Context, id string) (permission.Request, error) {
	return p.get(ctx, id, "")
}

// GetByIDForUpdate implements permission.PermissionRepository.
func (p *permissionRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (permission.Request, error) {
	return p.get(ctx, id, " FOR UPDATE")
}

func (p *permissionRequestRepository) get(ctx context.Context, id string, lock string) (permission.Request, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + permissionColumns + ` FROM permission_requests WHERE id = $1` + lock

	r, err := scanPermission(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return permission.Request{}, permission.ErrPermissionNotFound
		}
		return permission.Request{}, fmt.Errorf("failed to get permission request: %w", err)
	}

	return r, nil
}

// Update implements permission.PermissionRepository.
func (p *permissionRequestRepository) Update(ctx context.Context, r permission.Request) (permission.Request, error) {
	q := GetQuerier(ctx, p.db)

	approvals, err := jsonbArray(r.Approvals)
	if err != nil {
		return permission.Request{}, fmt.Errorf("failed to marshal approvals: %w", err)
	}
	trail, err := jsonbArray(r.AuditTrail)
	if err != nil {
		return permission.Request{}, fmt.Errorf("failed to marshal audit trail: %w", err)
	}

	query := `
		UPDATE permission_requests SET
			status = $3, current_level = $4, approvals = $5,
			final_approver_id = $6, audit_trail = $7,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`

	err = q.QueryRow(ctx, query,
		r.ID, r.Version,
		r.Status, r.CurrentLevel, approvals, r.FinalApproverID, trail,
	).Scan(&r.Version, &r.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return permission.Request{}, permission.ErrConcurrentUpdate
		}
		return permission.Request{}, fmt.Errorf("failed to update permission request: %w", err)
	}

	return r, nil
}

// HasOverlap implements permission.PermissionRepository. HH:MM strings
// compare in clock order.
func (p *permissionRequestRepository) HasOverlap(ctx context.Context, employeeID string, date time.Time, start, end string) (bool, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM permission_requests
			WHERE employee_id = $1
			  AND date = $2
			  AND status NOT IN ($3, $4)
			  AND start_time < $6
			  AND $5 < end_time
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query,
		employeeID, date, workflow.LabelRejected, workflow.LabelCancelled, start, end,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping permission requests: %w", err)
	}

	return exists, nil
}

// List implements permission.PermissionRepository.
func (p *permissionRequestRepository) List(ctx context.Context, filter permission.PermissionFilter, v workflow.Visibility) ([]permission.Request, int64, error) {
	q := GetQuerier(ctx, p.db)

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

	countQuery := "SELECT COUNT(*) FROM permission_requests WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count permission requests: %w", err)
	}

	orderByField := "created_at"
	switch filter.SortBy {
	case "date":
		orderByField = "date"
	case "status":
		orderByField = "status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM permission_requests
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, permissionColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query permission requests: %w", err)
	}
	defer rows.Close()

	var requests []permission.Request
	for rows.Next() {
		r, err := scanPermission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan permission request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate permission requests: %w", err)
	}

	return requests, total, nil
}

func NewPermissionRequestRepository(db *database.DB) permission.PermissionRepository {
	return &permissionRequestRepository{db: db}
}
