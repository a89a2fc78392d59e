package permission

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

type PermissionRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)

	// Update is a compare-and-swap on Version.
	Update(ctx context.Context, req Request) (Request, error)

	// HasOverlap reports whether a request that is not rejected or cancelled
	// covers any part of [start, end) on the date.
	HasOverlap(ctx context.Context, employeeID string, date time.Time, start, end string) (bool, error)

	List(ctx context.Context, filter PermissionFilter, visibility workflow.Visibility) ([]Request, int64, error)
}
