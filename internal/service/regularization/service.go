package regularization

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/regularization"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
	notificationsvc "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
)

type RegularizationServiceImpl struct {
	regularization.RegularizationRepository
	attendance attendance.AttendanceRepository
	policy     policy.Provider
	tx         database.Transactor
	notifier   *notificationsvc.ApprovalNotifier
	now        func() time.Time
}

// Submit implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) Submit(ctx context.Context, actor user.Actor, req regularization.CreateRegularizationRequest) (regularization.RegularizationResponse, error) {
	if actor.EmployeeID == "" {
		return regularization.RegularizationResponse{}, user.ErrEmployeeIDRequired
	}
	if err := req.Validate(); err != nil {
		return regularization.RegularizationResponse{}, err
	}

	p, err := s.policy.Current(ctx)
	if err != nil {
		return regularization.RegularizationResponse{}, fmt.Errorf("failed to load work hour policy: %w", err)
	}

	now := s.now().UTC()
	parsedDate, checkIn, checkOut, status := req.Parsed()
	date := p.OnDate(parsedDate)
	if date.After(p.Day(now)) {
		return regularization.RegularizationResponse{}, regularization.ErrFutureDate
	}
	if err := regularization.ValidateTimesForDay(date, checkIn, checkOut, "requested_"); err != nil {
		return regularization.RegularizationResponse{}, err
	}

	open, err := s.RegularizationRepository.HasOpenForDate(ctx, actor.EmployeeID, date)
	if err != nil {
		return regularization.RegularizationResponse{}, fmt.Errorf("failed to check open requests: %w", err)
	}
	if open {
		return regularization.RegularizationResponse{}, regularization.ErrDuplicateRequest
	}

	existing, err := s.attendance.GetByEmployeeAndDate(ctx, actor.EmployeeID, date)
	if err != nil {
		return regularization.RegularizationResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	r := regularization.Request{
		EmployeeID:        actor.EmployeeID,
		RequesterRole:     actor.Role,
		AttendanceDate:    date,
		RequestType:       regularization.RequestType(req.RequestType),
		Reason:            strings.TrimSpace(req.Reason),
		RequestedCheckIn:  checkIn,
		RequestedCheckOut: checkOut,
		RequestedStatus:   status,
	}
	if existing != nil {
		id := existing.ID
		snapshot := existing.Snapshot()
		r.AttendanceID = &id
		r.OriginalSnapshot = &snapshot
	}
	if _, err := r.Begin(regularization.Levels, actor.EmployeeID, actor.Role, now); err != nil {
		return regularization.RegularizationResponse{}, err
	}

	created, err := s.RegularizationRepository.Create(ctx, r)
	if err != nil {
		return regularization.RegularizationResponse{}, fmt.Errorf("failed to create regularization request: %w", err)
	}

	s.notifier.Submitted(ctx, created.ID, created.EmployeeID, created.CurrentLevel)

	return regularization.NewRegularizationResponse(created, false), nil
}

// Approve implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) Approve(ctx context.Context, actor user.Actor, id string, req regularization.ApproveRegularizationRequest) (regularization.RegularizationResponse, error) {
	if err := req.Validate(); err != nil {
		return regularization.RegularizationResponse{}, err
	}

	p, err := s.policy.Current(ctx)
	if err != nil {
		return regularization.RegularizationResponse{}, fmt.Errorf("failed to load work hour policy: %w", err)
	}

	now := s.now().UTC()
	comments := ""
	if req.Comments != nil {
		comments = strings.TrimSpace(*req.Comments)
	}

	var saved regularization.Request
	var outcome workflow.Outcome
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.RegularizationRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		w, err := r.Workflow(r.EmployeeID)
		if err != nil {
			return err
		}
		if outcome, err = w.Approve(actor, comments, now); err != nil {
			return err
		}

		if req.HasOverrides() {
			if err := adjust(&r, w, actor, req, p.OnDate(r.AttendanceDate), now); err != nil {
				return err
			}
		}

		if outcome.Completed {
			if err := s.applyToAttendance(ctx, &r, p, actor.UserID, now); err != nil {
				return err
			}
		}

		r.Sync(w)
		saved, err = s.RegularizationRepository.Update(ctx, r)
		return err
	})
	if err != nil {
		return regularization.RegularizationResponse{}, err
	}

	s.notifier.Approved(ctx, saved.ID, saved.EmployeeID, outcome)

	return regularization.NewRegularizationResponse(saved, false), nil
}

// adjust replaces the requested values with the approver's and records the
// change in the request's audit trail. day is the attendance date at
// midnight in the policy timezone.
func adjust(r *regularization.Request, w *workflow.Workflow, actor user.Actor, req regularization.ApproveRegularizationRequest, day, at time.Time) error {
	checkIn, checkOut, status := req.Parsed()
	if err := regularization.ValidateTimesForDay(day, checkIn, checkOut, ""); err != nil {
		return err
	}

	var changes []string
	if checkIn != nil {
		r.RequestedCheckIn = checkIn
		changes = append(changes, "check_in="+checkIn.Format(time.RFC3339))
	}
	if checkOut != nil {
		r.RequestedCheckOut = checkOut
		changes = append(changes, "check_out="+checkOut.Format(time.RFC3339))
	}
	if status != nil {
		r.RequestedStatus = status
		changes = append(changes, "status="+string(*status))
	}

	if r.RequestedCheckIn != nil && r.RequestedCheckOut != nil && r.RequestedCheckOut.Before(*r.RequestedCheckIn) {
		return regularization.ErrInconsistentTimes
	}

	w.Trail.Append(workflow.ActionAdjusted, actor.UserID, strings.Join(changes, ", "), at)
	return nil
}

// applyToAttendance rewrites the targeted day inside the caller's transaction.
func (s *RegularizationServiceImpl) applyToAttendance(ctx context.Context, r *regularization.Request, p policy.WorkHourPolicy, actorID string, at time.Time) error {
	date := p.OnDate(r.AttendanceDate)
	existing, err := s.attendance.GetByEmployeeAndDateForUpdate(ctx, r.EmployeeID, date)
	if err != nil {
		return fmt.Errorf("failed to lock attendance: %w", err)
	}

	applied, err := Apply(*r, existing, p, actorID, at)
	if err != nil {
		return err
	}

	var stored attendance.Record
	if existing != nil {
		stored, err = s.attendance.Update(ctx, applied)
	} else {
		stored, err = s.attendance.Create(ctx, applied)
	}
	if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
		// A check-in created the day after it was read; the transaction is void.
		return attendance.ErrConcurrentUpdate
	}
	if err != nil {
		return fmt.Errorf("failed to apply regularization to attendance: %w", err)
	}

	attendanceID := stored.ID
	r.AttendanceID = &attendanceID
	return nil
}

// Reject implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) Reject(ctx context.Context, actor user.Actor, id string, req regularization.RejectRegularizationRequest) (regularization.RegularizationResponse, error) {
	if err := req.Validate(); err != nil {
		return regularization.RegularizationResponse{}, err
	}

	now := s.now().UTC()
	reason := strings.TrimSpace(req.Reason)

	var saved regularization.Request
	var level user.Level
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.RegularizationRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		w, err := r.Workflow(r.EmployeeID)
		if err != nil {
			return err
		}
		level = w.CurrentLevel()
		if err := w.Reject(actor, reason, now); err != nil {
			return err
		}

		r.Sync(w)
		saved, err = s.RegularizationRepository.Update(ctx, r)
		return err
	})
	if err != nil {
		return regularization.RegularizationResponse{}, err
	}

	s.notifier.Rejected(ctx, saved.ID, saved.EmployeeID, level, reason)

	return regularization.NewRegularizationResponse(saved, false), nil
}

// Cancel implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) Cancel(ctx context.Context, actor user.Actor, id string) (regularization.RegularizationResponse, error) {
	if actor.EmployeeID == "" {
		return regularization.RegularizationResponse{}, user.ErrEmployeeIDRequired
	}

	now := s.now().UTC()

	var saved regularization.Request
	var level user.Level
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.RegularizationRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		w, err := r.Workflow(r.EmployeeID)
		if err != nil {
			return err
		}
		level = w.CurrentLevel()
		if err := w.Cancel(actor.EmployeeID, now); err != nil {
			return err
		}

		r.Sync(w)
		saved, err = s.RegularizationRepository.Update(ctx, r)
		return err
	})
	if err != nil {
		return regularization.RegularizationResponse{}, err
	}

	s.notifier.Cancelled(ctx, saved.ID, saved.EmployeeID, level)

	return regularization.NewRegularizationResponse(saved, false), nil
}

// List implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) List(ctx context.Context, actor user.Actor, filter regularization.RegularizationFilter) (regularization.ListRegularizationResponse, error) {
	if err := filter.Validate(); err != nil {
		return regularization.ListRegularizationResponse{}, err
	}

	requests, total, err := s.RegularizationRepository.List(ctx, filter, workflow.VisibilityFor(actor))
	if err != nil {
		return regularization.ListRegularizationResponse{}, fmt.Errorf("failed to list regularization requests: %w", err)
	}

	responses := make([]regularization.RegularizationResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, regularization.NewRegularizationResponse(r, false))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return regularization.ListRegularizationResponse{
		TotalCount:      total,
		Page:            filter.Page,
		Limit:           filter.Limit,
		TotalPages:      totalPages,
		Showing:         showing,
		Regularizations: responses,
	}, nil
}

// Get implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (regularization.RegularizationResponse, error) {
	r, err := s.RegularizationRepository.GetByID(ctx, id)
	if err != nil {
		return regularization.RegularizationResponse{}, err
	}
	if !workflow.VisibilityFor(actor).CanSee(r.EmployeeID, r.State) {
		return regularization.RegularizationResponse{}, regularization.ErrForbidden
	}
	return regularization.NewRegularizationResponse(r, true), nil
}

// Stats implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) Stats(ctx context.Context, actor user.Actor, filter regularization.StatsFilter) (regularization.StatsResponse, error) {
	if err := filter.Validate(); err != nil {
		return regularization.StatsResponse{}, err
	}

	counts, err := s.RegularizationRepository.CountByStatus(ctx, filter, workflow.VisibilityFor(actor))
	if err != nil {
		return regularization.StatsResponse{}, fmt.Errorf("failed to count regularization requests: %w", err)
	}

	resp := regularization.StatsResponse{
		Pending:     counts[workflow.LabelPending],
		UnderReview: counts[workflow.LabelUnderReview],
		Approved:    counts[workflow.LabelApproved],
		Rejected:    counts[workflow.LabelRejected],
		Cancelled:   counts[workflow.LabelCancelled],
	}
	resp.Total = resp.Pending + resp.UnderReview + resp.Approved + resp.Rejected + resp.Cancelled
	return resp, nil
}

func NewRegularizationService(
	regularizationRepo regularization.RegularizationRepository,
	attendanceRepo attendance.AttendanceRepository,
	policyProvider policy.Provider,
	tx database.Transactor,
	dispatcher notification.Dispatcher,
) regularization.RegularizationService {
	return &RegularizationServiceImpl{
		RegularizationRepository: regularizationRepo,
		attendance:               attendanceRepo,
		policy:                   policyProvider,
		tx:                       tx,
		notifier:                 notificationsvc.NewApprovalNotifier(dispatcher, "regularization"),
		now:                      time.Now,
	}
}
