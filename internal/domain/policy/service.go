package policy

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Provider supplies the policy currently in force.
type Provider interface {
	Current(ctx context.Context) (WorkHourPolicy, error)
}

type PolicyService interface {
	Provider
	Update(ctx context.Context, actor user.Actor, req UpdatePolicyRequest) (WorkHourPolicy, error)
}
