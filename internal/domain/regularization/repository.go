package regularization

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

type RegularizationRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)

	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)

	// Update is a compare-and-swap on Version.
	Update(ctx context.Context, req Request) (Request, error)

	// HasOpenForDate reports whether a Pending or Under Review request exists.
	HasOpenForDate(ctx context.Context, employeeID string, date time.Time) (bool, error)

	List(ctx context.Context, filter RegularizationFilter, visibility workflow.Visibility) ([]Request, int64, error)
	CountByStatus(ctx context.Context, filter StatsFilter, visibility workflow.Visibility) (StatusCounts, error)
}
