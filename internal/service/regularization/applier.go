package regularization

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/regularization"
	attendancesvc "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
)

// Apply rewrites the attendance day targeted by an approved request. rec is
// nil when the employee has no record for that date. Applying the same
// request twice yields the same record and a single history entry.
func Apply(req regularization.Request, rec *attendance.Record, p policy.WorkHourPolicy, actorID string, at time.Time) (attendance.Record, error) {
	day := p.OnDate(req.AttendanceDate)
	if err := regularization.ValidateTimesForDay(day, req.RequestedCheckIn, req.RequestedCheckOut, "requested_"); err != nil {
		return attendance.Record{}, err
	}

	var out attendance.Record
	if rec != nil {
		out = *rec
		out.History = rec.History.Clone()
	} else {
		out = attendance.Record{
			EmployeeID:   req.EmployeeID,
			Date:         day,
			BreakMinutes: p.BreakMinutes,
		}
	}

	stdIn := p.StandardCheckIn(day)
	stdOut := p.StandardCheckOut(day)
	reqIn, reqOut := req.RequestedCheckIn, req.RequestedCheckOut

	status := attendance.StatusPresent

	switch req.RequestType {
	case regularization.TypeMissedCheckIn:
		out.CheckIn = pick(reqIn, stdIn)
		if reqOut != nil {
			out.CheckOut = clone(reqOut)
		} else if out.CheckOut == nil {
			out.CheckOut = &stdOut
		}

	case regularization.TypeMissedCheckOut:
		out.CheckOut = pick(reqOut, stdOut)
		if reqIn != nil || out.CheckIn == nil {
			out.CheckIn = pick(reqIn, stdIn)
		}

	case regularization.TypeMissedBoth, regularization.TypeAbsentToPresent:
		out.CheckIn = pick(reqIn, stdIn)
		out.CheckOut = pick(reqOut, stdOut)

	case regularization.TypeAbsentToHalfDay:
		out.CheckIn = pick(reqIn, stdIn)
		out.CheckOut = pick(reqOut, stdIn.Add(4*time.Hour))
		status = attendance.StatusHalfDay

	case regularization.TypeLateArrival:
		if reqIn != nil || out.CheckIn == nil {
			out.CheckIn = pick(reqIn, stdIn)
		}
		out.LateWaived = true

	case regularization.TypeEarlyDeparture:
		if reqOut != nil || out.CheckOut == nil {
			out.CheckOut = pick(reqOut, stdOut)
		}
		if reqIn != nil || out.CheckIn == nil {
			out.CheckIn = pick(reqIn, stdIn)
		}
		out.EarlyWaived = true

	case regularization.TypeWorkFromHome, regularization.TypeFieldWork,
		regularization.TypeMedicalEmergency, regularization.TypeTransportIssue:
		out.CheckIn = pick(reqIn, stdIn)
		out.CheckOut = pick(reqOut, stdOut)
		location := string(req.RequestType)
		out.Location = &location
		if req.RequestType == regularization.TypeTransportIssue {
			out.LateWaived = true
		}

	case regularization.TypeSystemError, regularization.TypeOther:
		if reqIn != nil {
			out.CheckIn = clone(reqIn)
		}
		if reqOut != nil {
			out.CheckOut = clone(reqOut)
		}
		// Without an explicit status the computer decides.
		status = ""
		if req.RequestedStatus != nil {
			status = *req.RequestedStatus
		}
	}

	if out.CheckIn != nil && out.CheckOut != nil && out.CheckOut.Before(*out.CheckIn) {
		return attendance.Record{}, regularization.ErrInconsistentTimes
	}

	out.IsRegularized = true
	id := req.ID
	out.RegularizationID = &id
	out.Status = status
	attendancesvc.Recompute(&out, p)

	if !out.History.Has(attendance.ActionRegularized, req.ID) {
		out.History.Append(attendance.ActionRegularized, actorID, req.ID, at)
	}

	return out, nil
}

func pick(requested *time.Time, fallback time.Time) *time.Time {
	if requested != nil {
		return clone(requested)
	}
	return &fallback
}

func clone(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
