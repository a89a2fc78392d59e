package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

// SystemActor is recorded as the actor of automatic transitions.
const SystemActor = "system"

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	policy     policy.Provider
	tx         database.Transactor
	dispatcher notification.Dispatcher
	now        func() time.Time
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, actor user.Actor, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if actor.EmployeeID == "" {
		return attendance.AttendanceResponse{}, user.ErrEmployeeIDRequired
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	p, err := s.policy.Current(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load work hour policy: %w", err)
	}

	now := s.now().UTC()
	breakMinutes := p.BreakMinutes
	if req.BreakMinutes != nil {
		breakMinutes = *req.BreakMinutes
	}

	var saved attendance.Record
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.AttendanceRepository.GetByEmployeeAndDateForUpdate(ctx, actor.EmployeeID, p.Day(now))
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}

		rec := attendance.Record{EmployeeID: actor.EmployeeID, Date: p.Day(now)}
		if existing != nil {
			if existing.CheckIn != nil {
				return attendance.ErrAlreadyCheckedIn
			}
			// A record created by an approved correction without a check-in.
			// Showing up returns the day to derived status; the back-reference
			// and history keep the correction visible.
			rec = *existing
			rec.IsRegularized = false
			rec.Status = ""
		}

		rec.CheckIn = &now
		rec.BreakMinutes = breakMinutes
		rec.LastActivityTime = &now
		if req.Location != nil {
			rec.Location = req.Location
		}
		if req.Notes != nil {
			rec.Notes = req.Notes
		}
		Recompute(&rec, p)
		rec.History.Append(attendance.ActionCheckedIn, actor.UserID, "", now)

		if existing != nil {
			saved, err = s.AttendanceRepository.Update(ctx, rec)
		} else {
			saved, err = s.AttendanceRepository.Create(ctx, rec)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check in: %w", err)
	}

	return attendance.NewAttendanceResponse(saved, false), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, actor user.Actor, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if actor.EmployeeID == "" {
		return attendance.AttendanceResponse{}, user.ErrEmployeeIDRequired
	}

	p, err := s.policy.Current(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load work hour policy: %w", err)
	}

	now := s.now().UTC()

	var saved attendance.Record
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.openSession(ctx, actor.EmployeeID, p.Day(now))
		if err != nil {
			return err
		}
		if now.Before(*rec.CheckIn) {
			return attendance.ErrCheckOutBeforeIn
		}

		rec.CheckOut = &now
		rec.LastActivityTime = &now
		if req.Notes != nil {
			rec.Notes = req.Notes
		}
		Recompute(rec, p)
		rec.History.Append(attendance.ActionCheckedOut, actor.UserID, "", now)

		saved, err = s.AttendanceRepository.Update(ctx, *rec)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.NewAttendanceResponse(saved, false), nil
}

// Ping implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Ping(ctx context.Context, actor user.Actor) (attendance.AttendanceResponse, error) {
	if actor.EmployeeID == "" {
		return attendance.AttendanceResponse{}, user.ErrEmployeeIDRequired
	}

	p, err := s.policy.Current(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load work hour policy: %w", err)
	}

	now := s.now().UTC()

	var saved attendance.Record
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.openSession(ctx, actor.EmployeeID, p.Day(now))
		if err != nil {
			return err
		}

		rec.LastActivityTime = &now
		saved, err = s.AttendanceRepository.Update(ctx, *rec)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.NewAttendanceResponse(saved, false), nil
}

// openSession returns the locked open record, or the error explaining why
// there is none.
func (s *AttendanceServiceImpl) openSession(ctx context.Context, employeeID string, today time.Time) (*attendance.Record, error) {
	rec, err := s.AttendanceRepository.GetOpenSessionForUpdate(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	if rec != nil {
		return rec, nil
	}

	todays, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if todays != nil && todays.CheckOut != nil {
		return nil, attendance.ErrAlreadyCheckedOut
	}
	return nil, attendance.ErrNotCheckedIn
}

// AutoCheckout implements attendance.AttendanceService. Each record is closed
// with a version-guarded write; a record changed in the meantime is skipped.
func (s *AttendanceServiceImpl) AutoCheckout(ctx context.Context, now time.Time) (int, error) {
	p, err := s.policy.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load work hour policy: %w", err)
	}
	if p.AutoCheckoutTimeoutMinutes <= 0 {
		return 0, nil
	}

	now = now.UTC()
	timeout := time.Duration(p.AutoCheckoutTimeoutMinutes) * time.Minute

	candidates, err := s.AttendanceRepository.ListOpenInactiveSince(ctx, now.Add(-timeout))
	if err != nil {
		return 0, fmt.Errorf("failed to list open attendance: %w", err)
	}

	closed := 0
	for _, rec := range candidates {
		if !rec.IsOpen() || !now.After(p.StandardCheckOut(*rec.CheckIn)) {
			continue
		}

		checkOut := *rec.CheckIn
		if rec.LastActivityTime != nil && rec.LastActivityTime.After(checkOut) {
			checkOut = *rec.LastActivityTime
		}

		rec.CheckOut = &checkOut
		rec.AutoCheckedOut = true
		Recompute(&rec, p)
		rec.History.Append(attendance.ActionAutoCheckedOut, SystemActor,
			fmt.Sprintf("inactive since %s", checkOut.Format(time.RFC3339)), now)

		saved, err := s.AttendanceRepository.Update(ctx, rec)
		if errors.Is(err, attendance.ErrConcurrentUpdate) {
			slog.InfoContext(ctx, "auto-checkout skipped, record changed concurrently", "attendance_id", rec.ID)
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "auto-checkout failed", "attendance_id", rec.ID, "error", err)
			continue
		}

		closed++
		s.dispatcher.Dispatch(ctx, notification.ToEmployee(saved.EmployeeID, notification.TypeAutoCheckout,
			"Automatic check-out",
			fmt.Sprintf("You were checked out automatically at %s after inactivity.", checkOut.Format(time.RFC3339)),
			map[string]interface{}{"attendance_id": saved.ID, "date": saved.Date.Format(attendance.DateLayout)},
		))
	}

	return closed, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, actor user.Actor, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if actor.EmployeeID == "" {
		return attendance.ListAttendanceResponse{}, user.ErrEmployeeIDRequired
	}
	return s.list(ctx, filter.ForEmployee(actor.EmployeeID))
}

// ListAttendance implements attendance.AttendanceService. Callers without the
// view-all capability only see their own records.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, actor user.Actor, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	employeeID, err := scopeEmployee(actor, filter.EmployeeID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.EmployeeID = employeeID
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.NewAttendanceResponse(rec, false))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, actor user.Actor, id string) (attendance.AttendanceResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.Capability().ViewAllAttendance && rec.EmployeeID != actor.EmployeeID {
		return attendance.AttendanceResponse{}, attendance.ErrForbidden
	}
	return attendance.NewAttendanceResponse(rec, true), nil
}

// Statistics implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Statistics(ctx context.Context, actor user.Actor, filter attendance.StatisticsFilter) (attendance.StatisticsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.StatisticsResponse{}, err
	}
	employeeID, err := scopeEmployee(actor, filter.EmployeeID)
	if err != nil {
		return attendance.StatisticsResponse{}, err
	}
	filter.EmployeeID = employeeID

	stats, err := s.AttendanceRepository.Statistics(ctx, filter)
	if err != nil {
		return attendance.StatisticsResponse{}, fmt.Errorf("failed to get attendance statistics: %w", err)
	}

	resp := attendance.StatisticsResponse{
		TotalRecords:       stats.TotalRecords,
		PresentDays:        stats.PresentDays,
		HalfDays:           stats.HalfDays,
		AbsentDays:         stats.AbsentDays,
		LateDays:           stats.LateDays,
		EarlyDays:          stats.EarlyDays,
		RegularizedDays:    stats.RegularizedDays,
		AutoCheckedOutDays: stats.AutoCheckedOutDays,
		TotalHours:         stats.TotalHours,
		OvertimeHours:      stats.OvertimeHours,
		ShortageHours:      stats.ShortageHours,
	}
	if stats.TotalRecords > 0 {
		resp.AverageHours = stats.TotalHours / float64(stats.TotalRecords)
	}
	return resp, nil
}

// scopeEmployee narrows an employee selector to what the actor may see.
func scopeEmployee(actor user.Actor, requested *string) (*string, error) {
	if actor.Capability().ViewAllAttendance {
		return requested, nil
	}
	if actor.EmployeeID == "" {
		return nil, user.ErrEmployeeIDRequired
	}
	if requested != nil && *requested != actor.EmployeeID {
		return nil, attendance.ErrForbidden
	}
	own := actor.EmployeeID
	return &own, nil
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	policyProvider policy.Provider,
	tx database.Transactor,
	dispatcher notification.Dispatcher,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		policy:               policyProvider,
		tx:                   tx,
		dispatcher:           dispatcher,
		now:                  time.Now,
	}
}
