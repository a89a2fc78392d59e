package policy

import "context"

type PolicyRepository interface {
	// Get returns the active policy, or ErrPolicyNotFound.
	Get(ctx context.Context) (WorkHourPolicy, error)
	Save(ctx context.Context, p WorkHourPolicy) (WorkHourPolicy, error)
}
