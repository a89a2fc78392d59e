package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// Scheme is one ordered schema step. Steps are applied once, in Index order,
// and the highest applied index is kept in schema_migrations.
type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create table: work_hour_policies",
		Query: `
		CREATE TABLE IF NOT EXISTS work_hour_policies (
			id                            BIGINT PRIMARY KEY,
			check_in_time                 VARCHAR(5) NOT NULL,
			check_out_time                VARCHAR(5) NOT NULL,
			working_hours                 DOUBLE PRECISION NOT NULL,
			minimum_work_hours            DOUBLE PRECISION NOT NULL,
			late_threshold_minutes        INT NOT NULL,
			break_minutes                 INT NOT NULL,
			auto_checkout_timeout_minutes INT NOT NULL,
			timezone                      TEXT NOT NULL DEFAULT 'UTC',
			updated_by                    TEXT,
			updated_at                    TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Index:       2,
		Description: "Create table: attendances",
		Query: `
		CREATE TABLE IF NOT EXISTS attendances (
			id                      UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_id             TEXT NOT NULL,
			date                    DATE NOT NULL,
			check_in                TIMESTAMPTZ,
			check_out               TIMESTAMPTZ,
			break_minutes           INT NOT NULL DEFAULT 0,
			total_hours             DOUBLE PRECISION NOT NULL DEFAULT 0,
			status                  TEXT NOT NULL,
			is_late                 BOOLEAN NOT NULL DEFAULT false,
			late_minutes            INT NOT NULL DEFAULT 0,
			is_early                BOOLEAN NOT NULL DEFAULT false,
			early_minutes           INT NOT NULL DEFAULT 0,
			overtime_hours          DOUBLE PRECISION NOT NULL DEFAULT 0,
			shortage_hours          DOUBLE PRECISION NOT NULL DEFAULT 0,
			adjusted_overtime_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_activity_time      TIMESTAMPTZ,
			auto_checked_out        BOOLEAN NOT NULL DEFAULT false,
			is_regularized          BOOLEAN NOT NULL DEFAULT false,
			regularization_id       UUID,
			late_waived             BOOLEAN NOT NULL DEFAULT false,
			early_waived            BOOLEAN NOT NULL DEFAULT false,
			location                TEXT,
			notes                   TEXT,
			history                 JSONB NOT NULL DEFAULT '[]',
			version                 INT NOT NULL DEFAULT 1,
			created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT attendances_employee_date_key UNIQUE (employee_id, date)
		);
		CREATE INDEX IF NOT EXISTS attendances_open_idx
			ON attendances (employee_id, check_in DESC)
			WHERE check_in IS NOT NULL AND check_out IS NULL;`,
	},
	{
		Index:       3,
		Description: "Create table: regularization_requests",
		Query: `
		CREATE TABLE IF NOT EXISTS regularization_requests (
			id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_id         TEXT NOT NULL,
			requester_role      TEXT NOT NULL,
			attendance_date     DATE NOT NULL,
			attendance_id       UUID REFERENCES attendances(id),
			request_type        TEXT NOT NULL,
			reason              TEXT NOT NULL,
			requested_check_in  TIMESTAMPTZ,
			requested_check_out TIMESTAMPTZ,
			requested_status    TEXT,
			original_snapshot   JSONB,
			status              TEXT NOT NULL,
			current_level       TEXT NOT NULL,
			approvals           JSONB NOT NULL DEFAULT '[]',
			final_approver_id   TEXT,
			audit_trail         JSONB NOT NULL DEFAULT '[]',
			version             INT NOT NULL DEFAULT 1,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS regularization_requests_open_key
			ON regularization_requests (employee_id, attendance_date)
			WHERE status IN ('Pending', 'Under Review');
		CREATE INDEX IF NOT EXISTS regularization_requests_level_idx
			ON regularization_requests (current_level, status);`,
	},
	{
		Index:       4,
		Description: "Create table: permission_requests",
		Query: `
		CREATE TABLE IF NOT EXISTS permission_requests (
			id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_id       TEXT NOT NULL,
			requester_role    TEXT NOT NULL,
			date              DATE NOT NULL,
			start_time        VARCHAR(5) NOT NULL,
			end_time          VARCHAR(5) NOT NULL,
			duration_minutes  INT NOT NULL,
			reason            TEXT NOT NULL,
			status            TEXT NOT NULL,
			current_level     TEXT NOT NULL,
			approvals         JSONB NOT NULL DEFAULT '[]',
			final_approver_id TEXT,
			audit_trail       JSONB NOT NULL DEFAULT '[]',
			version           INT NOT NULL DEFAULT 1,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS permission_requests_employee_date_idx
			ON permission_requests (employee_id, date);`,
	},
	{
		Index:       5,
		Description: "Create table: notifications",
		Query: `
		CREATE TABLE IF NOT EXISTS notifications (
			id             UUID PRIMARY KEY,
			recipient_id   TEXT,
			recipient_role TEXT,
			type           TEXT NOT NULL,
			title          TEXT NOT NULL,
			message        TEXT NOT NULL,
			data           JSONB,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS notifications_recipient_idx ON notifications (recipient_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS notifications_role_idx ON notifications (recipient_role, created_at DESC);`,
	},
}

// Migrate brings the schema up to the latest step. Each step runs in its own
// transaction together with the version bump, so a failed step leaves the
// recorded version untouched.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INT NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var version int
	err := db.QueryRow(ctx, `SELECT version FROM schema_migrations`).Scan(&version)
	if err == pgx.ErrNoRows {
		if _, err := db.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES (0)`); err != nil {
			return fmt.Errorf("failed to initialise schema_migrations: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, s := range scheme {
		if s.Index <= version {
			continue
		}
		err := WithTransaction(ctx, db, func(ctx context.Context) error {
			q := GetQuerier(ctx, db)
			if _, err := q.Exec(ctx, s.Query); err != nil {
				return err
			}
			_, err := q.Exec(ctx, `UPDATE schema_migrations SET version = $1`, s.Index)
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate error version %d (%s): %w", s.Index, s.Description, err)
		}
		slog.InfoContext(ctx, "schema migrated", "version", s.Index, "description", s.Description)
	}

	return nil
}
