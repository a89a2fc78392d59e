package regularization

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type RegularizationService interface {
	Submit(ctx context.Context, actor user.Actor, req CreateRegularizationRequest) (RegularizationResponse, error)

	// Approve records the actor's approval at the current level. Approval at
	// the last level rewrites the attendance record in the same transaction.
	Approve(ctx context.Context, actor user.Actor, id string, req ApproveRegularizationRequest) (RegularizationResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string, req RejectRegularizationRequest) (RegularizationResponse, error)
	Cancel(ctx context.Context, actor user.Actor, id string) (RegularizationResponse, error)

	List(ctx context.Context, actor user.Actor, filter RegularizationFilter) (ListRegularizationResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (RegularizationResponse, error)
	Stats(ctx context.Context, actor user.Actor, filter StatsFilter) (StatsResponse, error)
}
