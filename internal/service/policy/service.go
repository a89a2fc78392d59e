package policy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// PolicyServiceImpl serves the active policy from memory and reloads it from
// the repository only after an update or on first use.
type PolicyServiceImpl struct {
	policy.PolicyRepository
	defaults policy.WorkHourPolicy
	now      func() time.Time

	mu     sync.RWMutex
	cached *policy.WorkHourPolicy
}

// Current implements policy.Provider. When no policy has been stored yet the
// configured defaults apply.
func (s *PolicyServiceImpl) Current(ctx context.Context) (policy.WorkHourPolicy, error) {
	s.mu.RLock()
	if s.cached != nil {
		p := *s.cached
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return *s.cached, nil
	}

	p, err := s.PolicyRepository.Get(ctx)
	if errors.Is(err, policy.ErrPolicyNotFound) {
		p = s.defaults
	} else if err != nil {
		return policy.WorkHourPolicy{}, fmt.Errorf("failed to get work hour policy: %w", err)
	}

	s.cached = &p
	return p, nil
}

// Update implements policy.PolicyService.
func (s *PolicyServiceImpl) Update(ctx context.Context, actor user.Actor, req policy.UpdatePolicyRequest) (policy.WorkHourPolicy, error) {
	if !actor.Capability().ManagePolicy {
		return policy.WorkHourPolicy{}, user.ErrInsufficientPermissions
	}

	current, err := s.Current(ctx)
	if err != nil {
		return policy.WorkHourPolicy{}, err
	}

	next := req.Merge(current)
	if err := next.Validate(); err != nil {
		return policy.WorkHourPolicy{}, err
	}
	updatedBy := actor.UserID
	next.UpdatedBy = &updatedBy
	next.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.PolicyRepository.Save(ctx, next)
	if err != nil {
		return policy.WorkHourPolicy{}, fmt.Errorf("failed to save work hour policy: %w", err)
	}
	s.cached = &saved
	return saved, nil
}

func NewPolicyService(repo policy.PolicyRepository, defaults policy.WorkHourPolicy) policy.PolicyService {
	return &PolicyServiceImpl{
		PolicyRepository: repo,
		defaults:         defaults,
		now:              time.Now,
	}
}
