package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
)

// Input is the raw data of one attendance day.
type Input struct {
	CheckIn        time.Time
	CheckOut       *time.Time
	BreakMinutes   int
	WaiveLateness  bool
	WaiveEarliness bool
}

// Compute derives status, lateness, earliness, overtime and shortage from
// raw check-in data. It is pure: the same inputs always give the same
// result, whether the day is evaluated while open or once at close.
func Compute(in Input, p policy.WorkHourPolicy) attendance.Derived {
	d := attendance.Derived{Status: attendance.StatusPresent}

	// Lateness never demotes status.
	late := in.CheckIn.Sub(p.StandardCheckIn(in.CheckIn)).Minutes()
	if !in.WaiveLateness && late > float64(p.LateThresholdMinutes) {
		d.IsLate = true
		d.LateMinutes = int(math.Floor(late))
		d.ShortageHours = float64(d.LateMinutes) / 60
	}

	// Open day: provisional Present, no totals or overtime yet.
	if in.CheckOut == nil {
		return d
	}

	worked := in.CheckOut.Sub(in.CheckIn).Minutes() - float64(in.BreakMinutes)
	d.TotalHours = math.Max(0, worked/60)

	switch {
	case d.TotalHours >= p.MinimumWorkHours:
		d.Status = attendance.StatusPresent
	case d.TotalHours >= p.MinimumWorkHours/2:
		d.Status = attendance.StatusHalfDay
	default:
		d.Status = attendance.StatusAbsent
	}

	// Standard check-out is taken on the check-in day so that a shift ending
	// after midnight is not compared against the next day's schedule.
	early := p.StandardCheckOut(in.CheckIn).Sub(*in.CheckOut).Minutes()
	if !in.WaiveEarliness && early > 0 {
		d.IsEarly = true
		d.EarlyMinutes = int(math.Floor(early))
	}

	// Extra hours pay back late-arrival shortage before counting as overtime.
	extra := math.Max(0, d.TotalHours-p.WorkingHours)
	d.AdjustedOvertimeHours = extra
	if d.ShortageHours > 0 {
		reduction := math.Min(extra, d.ShortageHours)
		d.ShortageHours -= reduction
		d.AdjustedOvertimeHours = extra - reduction
	}
	d.OvertimeHours = d.AdjustedOvertimeHours

	return d
}

// Recompute rewrites every derived field of rec from its raw fields. A
// regularized record keeps the status it was explicitly assigned.
func Recompute(rec *attendance.Record, p policy.WorkHourPolicy) {
	if rec.CheckIn == nil {
		status := rec.Status
		if status == "" {
			status = attendance.StatusAbsent
		}
		rec.Derived = attendance.Derived{Status: status}
		return
	}

	d := Compute(Input{
		CheckIn:        *rec.CheckIn,
		CheckOut:       rec.CheckOut,
		BreakMinutes:   rec.BreakMinutes,
		WaiveLateness:  rec.LateWaived,
		WaiveEarliness: rec.EarlyWaived,
	}, p)

	if rec.IsRegularized && rec.Status != "" {
		d.Status = rec.Status
	}
	rec.Derived = d
}
