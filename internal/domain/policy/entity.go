package policy

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// WorkHourPolicy holds the company-wide working-day rules. Clock values are
// "HH:MM" in the policy timezone.
type WorkHourPolicy struct {
	ID                         int64     `json:"id"`
	CheckInTime                string    `json:"check_in_time"`
	CheckOutTime               string    `json:"check_out_time"`
	WorkingHours               float64   `json:"working_hours"`
	MinimumWorkHours           float64   `json:"minimum_work_hours"`
	LateThresholdMinutes       int       `json:"late_threshold_minutes"`
	BreakMinutes               int       `json:"break_minutes"`
	AutoCheckoutTimeoutMinutes int       `json:"auto_checkout_timeout_minutes"`
	Timezone                   string    `json:"timezone"`
	UpdatedBy                  *string   `json:"updated_by,omitempty"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// DefaultPolicy is used when no policy row exists yet.
func DefaultPolicy() WorkHourPolicy {
	return WorkHourPolicy{
		ID:                         1,
		CheckInTime:                "09:00",
		CheckOutTime:               "18:00",
		WorkingHours:               8,
		MinimumWorkHours:           6,
		LateThresholdMinutes:       15,
		BreakMinutes:               60,
		AutoCheckoutTimeoutMinutes: 120,
		Timezone:                   "UTC",
	}
}

// Location returns the policy timezone, falling back to UTC.
func (p WorkHourPolicy) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StandardCheckIn is the policy check-in instant on the calendar day of t.
func (p WorkHourPolicy) StandardCheckIn(t time.Time) time.Time {
	return p.clockOn(t, p.CheckInTime)
}

// StandardCheckOut is the policy check-out instant on the calendar day of t.
func (p WorkHourPolicy) StandardCheckOut(t time.Time) time.Time {
	return p.clockOn(t, p.CheckOutTime)
}

// Day truncates t to midnight of its calendar day in the policy timezone.
func (p WorkHourPolicy) Day(t time.Time) time.Time {
	local := t.In(p.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location())
}

// OnDate places the calendar date of d, as written, at midnight in the
// policy timezone. Use it for dates read from storage.
func (p WorkHourPolicy) OnDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, p.Location())
}

func (p WorkHourPolicy) clockOn(t time.Time, clock string) time.Time {
	minutes, _ := validator.ParseClock(clock)
	return p.Day(t).Add(time.Duration(minutes) * time.Minute)
}

// Validate checks the internal consistency of the policy.
func (p WorkHourPolicy) Validate() error {
	var errs validator.ValidationErrors

	checkIn, okIn := validator.ParseClock(p.CheckInTime)
	if !okIn {
		errs.Add("check_in_time", "must be in HH:MM format")
	}
	checkOut, okOut := validator.ParseClock(p.CheckOutTime)
	if !okOut {
		errs.Add("check_out_time", "must be in HH:MM format")
	}
	if okIn && okOut && checkOut <= checkIn {
		errs.Add("check_out_time", "must be after check_in_time")
	}

	if p.WorkingHours <= 0 || p.WorkingHours > 24 {
		errs.Add("working_hours", "must be between 0 and 24")
	}
	if p.MinimumWorkHours <= 0 || p.MinimumWorkHours > 24 {
		errs.Add("minimum_work_hours", "must be between 0 and 24")
	} else if p.MinimumWorkHours > p.WorkingHours {
		errs.Add("minimum_work_hours", "must not exceed working_hours")
	}

	if p.LateThresholdMinutes < 0 {
		errs.Add("late_threshold_minutes", "must not be negative")
	}
	if p.BreakMinutes < 0 {
		errs.Add("break_minutes", "must not be negative")
	}
	if p.AutoCheckoutTimeoutMinutes < 0 {
		errs.Add("auto_checkout_timeout_minutes", "must not be negative")
	}
	if !validator.IsValidTimezone(p.Timezone) {
		errs.Add("timezone", "must be a valid IANA timezone")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
