package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type policyRepository struct {
	db *database.DB
}

// Get implements policy.PolicyRepository. The active policy is the row with
// the highest id.
func (p *policyRepository) Get(ctx context.Context) (policy.WorkHourPolicy, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, check_in_time, check_out_time, working_hours, minimum_work_hours,
			   late_threshold_minutes, break_minutes, auto_checkout_timeout_minutes,
			   timezone, updated_by, updated_at
		FROM work_hour_policies
		ORDER BY id DESC
		LIMIT 1
	`

	var wp policy.WorkHourPolicy
	err := q.QueryRow(ctx, query).Scan(
		&wp.ID, &wp.CheckInTime, &wp.CheckOutTime, &wp.WorkingHours, &wp.MinimumWorkHours,
		&wp.LateThresholdMinutes, &wp.BreakMinutes, &wp.AutoCheckoutTimeoutMinutes,
		&wp.Timezone, &wp.UpdatedBy, &wp.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return policy.WorkHourPolicy{}, policy.ErrPolicyNotFound
		}
		return policy.WorkHourPolicy{}, fmt.Errorf("failed to get work hour policy: %w", err)
	}

	return wp, nil
}

// Save implements policy.PolicyRepository.
func (p *policyRepository) Save(ctx context.Context, wp policy.WorkHourPolicy) (policy.WorkHourPolicy, error) {
	q := GetQuerier(ctx, p.db)

	if wp.ID == 0 {
		wp.ID = 1
	}

	query := `
		INSERT INTO work_hour_policies (
			id, check_in_time, check_out_time, working_hours, minimum_work_hours,
			late_threshold_minutes, break_minutes, auto_checkout_timeout_minutes,
			timezone, updated_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			check_in_time = EXCLUDED.check_in_time,
			check_out_time = EXCLUDED.check_out_time,
			working_hours = EXCLUDED.working_hours,
			minimum_work_hours = EXCLUDED.minimum_work_hours,
			late_threshold_minutes = EXCLUDED.late_threshold_minutes,
			break_minutes = EXCLUDED.break_minutes,
			auto_checkout_timeout_minutes = EXCLUDED.auto_checkout_timeout_minutes,
			timezone = EXCLUDED.timezone,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		wp.ID, wp.CheckInTime, wp.CheckOutTime, wp.WorkingHours, wp.MinimumWorkHours,
		wp.LateThresholdMinutes, wp.BreakMinutes, wp.AutoCheckoutTimeoutMinutes,
		wp.Timezone, wp.UpdatedBy, wp.UpdatedAt,
	).Scan(&wp.UpdatedAt)
	if err != nil {
		return policy.WorkHourPolicy{}, fmt.Errorf("failed to save work hour policy: %w", err)
	}

	return wp, nil
}

func NewPolicyRepository(db *database.DB) policy.PolicyRepository {
	return &policyRepository{db: db}
}
