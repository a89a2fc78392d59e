package permission

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/permission"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
	notificationsvc "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
)

// PermissionServiceImpl runs permission requests through the approval chain.
// Approval has no effect beyond notifying the requester.
type PermissionServiceImpl struct {
	permission.PermissionRepository
	policy   policy.Provider
	tx       database.Transactor
	notifier *notificationsvc.ApprovalNotifier
	now      func() time.Time
}

func (s *PermissionServiceImpl) Submit(ctx context.Context, actor user.Actor, req permission.CreatePermissionRequest) (permission.PermissionResponse, error) {
	if actor.EmployeeID == "" {
		return permission.PermissionResponse{}, user.ErrEmployeeIDRequired
	}
	if err := req.Validate(); err != nil {
		return permission.PermissionResponse{}, err
	}

	p, err := s.policy.Current(ctx)
	if err != nil {
		return permission.PermissionResponse{}, fmt.Errorf("failed to load work hour policy: %w", err)
	}

	parsed, _ := validator.IsValidDate(req.Date)
	date := p.OnDate(parsed)

	overlap, err := s.PermissionRepository.HasOverlap(ctx, actor.EmployeeID, date, req.StartTime, req.EndTime)
	if err != nil {
		return permission.PermissionResponse{}, fmt.Errorf("failed to check overlapping requests: %w", err)
	}
	if overlap {
		return permission.PermissionResponse{}, permission.ErrOverlappingRequest
	}

	r := permission.Request{
		EmployeeID:      actor.EmployeeID,
		RequesterRole:   actor.Role,
		Date:            date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.Duration(),
		Reason:          strings.TrimSpace(req.Reason),
	}
	if _, err := r.Begin(permission.Levels, actor.EmployeeID, actor.Role, s.now().UTC()); err != nil {
		return permission.PermissionResponse{}, err
	}

	created, err := s.PermissionRepository.Create(ctx, r)
	if err != nil {
		return permission.PermissionResponse{}, fmt.Errorf("failed to create permission request: %w", err)
	}

	s.notifier.Submitted(ctx, created.ID, created.EmployeeID, created.CurrentLevel)

	return permission.NewPermissionResponse(created, false), nil
}

func (s *PermissionServiceImpl) Approve(ctx context.Context, actor user.Actor, id string, req permission.ApprovePermissionRequest) (permission.PermissionResponse, error) {
	if err := req.Validate(); err != nil {
		return permission.PermissionResponse{}, err
	}

	comments := ""
	if req.Comments != nil {
		comments = strings.TrimSpace(*req.Comments)
	}

	var outcome workflow.Outcome
	saved, err := s.transition(ctx, id, func(w *workflow.Workflow, now time.Time) (err error) {
		outcome, err = w.Approve(actor, comments, now)
		return err
	})
	if err != nil {
		return permission.PermissionResponse{}, err
	}

	s.notifier.Approved(ctx, saved.ID, saved.EmployeeID, outcome)

	return permission.NewPermissionResponse(saved, false), nil
}

func (s *PermissionServiceImpl) Reject(ctx context.Context, actor user.Actor, id string, req permission.RejectPermissionRequest) (permission.PermissionResponse, error) {
	if err := req.Validate(); err != nil {
		return permission.PermissionResponse{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	var level user.Level
	saved, err := s.transition(ctx, id, func(w *workflow.Workflow, now time.Time) error {
		level = w.CurrentLevel()
		return w.Reject(actor, reason, now)
	})
	if err != nil {
		return permission.PermissionResponse{}, err
	}

	s.notifier.Rejected(ctx, saved.ID, saved.EmployeeID, level, reason)

	return permission.NewPermissionResponse(saved, false), nil
}

func (s *PermissionServiceImpl) Cancel(ctx context.Context, actor user.Actor, id string) (permission.PermissionResponse, error) {
	if actor.EmployeeID == "" {
		return permission.PermissionResponse{}, user.ErrEmployeeIDRequired
	}

	var level user.Level
	saved, err := s.transition(ctx, id, func(w *workflow.Workflow, now time.Time) error {
		level = w.CurrentLevel()
		return w.Cancel(actor.EmployeeID, now)
	})
	if err != nil {
		return permission.PermissionResponse{}, err
	}

	s.notifier.Cancelled(ctx, saved.ID, saved.EmployeeID, level)

	return permission.NewPermissionResponse(saved, false), nil
}

// transition loads the request under lock, applies fn to its workflow and
// stores the result.
func (s *PermissionServiceImpl) transition(ctx context.Context, id string, fn func(w *workflow.Workflow, now time.Time) error) (permission.Request, error) {
	now := s.now().UTC()

	var saved permission.Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.PermissionRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		w, err := r.Workflow(r.EmployeeID)
		if err != nil {
			return err
		}
		if err := fn(w, now); err != nil {
			return err
		}

		r.Sync(w)
		saved, err = s.PermissionRepository.Update(ctx, r)
		return err
	})
	return saved, err
}

func (s *PermissionServiceImpl) List(ctx context.Context, actor user.Actor, filter permission.PermissionFilter) (permission.ListPermissionResponse, error) {
	if err := filter.Validate(); err != nil {
		return permission.ListPermissionResponse{}, err
	}

	requests, total, err := s.PermissionRepository.List(ctx, filter, workflow.VisibilityFor(actor))
	if err != nil {
		return permission.ListPermissionResponse{}, fmt.Errorf("failed to list permission requests: %w", err)
	}

	responses := make([]permission.PermissionResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, permission.NewPermissionResponse(r, false))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return permission.ListPermissionResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Permissions: responses,
	}, nil
}

func (s *PermissionServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (permission.PermissionResponse, error) {
	r, err := s.PermissionRepository.GetByID(ctx, id)
	if err != nil {
		return permission.PermissionResponse{}, err
	}
	if !workflow.VisibilityFor(actor).CanSee(r.EmployeeID, r.State) {
		return permission.PermissionResponse{}, permission.ErrForbidden
	}
	return permission.NewPermissionResponse(r, true), nil
}

func NewPermissionService(
	permissionRepo permission.PermissionRepository,
	policyProvider policy.Provider,
	tx database.Transactor,
	dispatcher notification.Dispatcher,
) permission.PermissionService {
	return &PermissionServiceImpl{
		PermissionRepository: permissionRepo,
		policy:               policyProvider,
		tx:                   tx,
		notifier:             notificationsvc.NewApprovalNotifier(dispatcher, "permission"),
		now:                  time.Now,
	}
}
