package policy

// UpdatePolicyRequest replaces the active policy. Omitted fields keep their
// current value.
type UpdatePolicyRequest struct {
	CheckInTime                *string  `json:"check_in_time"`
	CheckOutTime               *string  `json:"check_out_time"`
	WorkingHours               *float64 `json:"working_hours"`
	MinimumWorkHours           *float64 `json:"minimum_work_hours"`
	LateThresholdMinutes       *int     `json:"late_threshold_minutes"`
	BreakMinutes               *int     `json:"break_minutes"`
	AutoCheckoutTimeoutMinutes *int     `json:"auto_checkout_timeout_minutes"`
	Timezone                   *string  `json:"timezone"`
}

// Merge applies the request over p and returns the result.
func (r UpdatePolicyRequest) Merge(p WorkHourPolicy) WorkHourPolicy {
	if r.CheckInTime != nil {
		p.CheckInTime = *r.CheckInTime
	}
	if r.CheckOutTime != nil {
		p.CheckOutTime = *r.CheckOutTime
	}
	if r.WorkingHours != nil {
		p.WorkingHours = *r.WorkingHours
	}
	if r.MinimumWorkHours != nil {
		p.MinimumWorkHours = *r.MinimumWorkHours
	}
	if r.LateThresholdMinutes != nil {
		p.LateThresholdMinutes = *r.LateThresholdMinutes
	}
	if r.BreakMinutes != nil {
		p.BreakMinutes = *r.BreakMinutes
	}
	if r.AutoCheckoutTimeoutMinutes != nil {
		p.AutoCheckoutTimeoutMinutes = *r.AutoCheckoutTimeoutMinutes
	}
	if r.Timezone != nil {
		p.Timezone = *r.Timezone
	}
	return p
}
