package regularization

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/audit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

// ========================================
// REGULARIZATION DTOs
// ========================================

type CreateRegularizationRequest struct {
	AttendanceDate    string  `json:"attendance_date"` // YYYY-MM-DD
	RequestType       string  `json:"request_type"`
	Reason            string  `json:"reason"`
	RequestedCheckIn  *string `json:"requested_check_in,omitempty"`  // RFC3339
	RequestedCheckOut *string `json:"requested_check_out,omitempty"` // RFC3339
	RequestedStatus   *string `json:"requested_status,omitempty"`
}

func (r *CreateRegularizationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceDate) {
		errs.Add("attendance_date", "attendance_date is required")
	} else if _, ok := validator.IsValidDate(r.AttendanceDate); !ok {
		errs.Add("attendance_date", "attendance_date must be in YYYY-MM-DD format")
	}

	if !validator.IsInSlice(r.RequestType, RequestTypeValues) {
		errs.Add("request_type", "request_type must be one of: "+strings.Join(RequestTypeValues, ", "))
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	validateOverrides(&errs, r.RequestedCheckIn, r.RequestedCheckOut, r.RequestedStatus, "requested_")

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Parsed returns the typed values of a validated request.
func (r *CreateRegularizationRequest) Parsed() (date time.Time, checkIn, checkOut *time.Time, status *attendance.Status) {
	date, _ = validator.IsValidDate(r.AttendanceDate)
	checkIn, checkOut, status = parseOverrides(r.RequestedCheckIn, r.RequestedCheckOut, r.RequestedStatus)
	return date, checkIn, checkOut, status
}

// ApproveRegularizationRequest lets the approver adjust the requested values
// before the decision is recorded.
type ApproveRegularizationRequest struct {
	Comments *string `json:"comments,omitempty"`
	CheckIn  *string `json:"check_in,omitempty"`  // RFC3339
	CheckOut *string `json:"check_out,omitempty"` // RFC3339
	Status   *string `json:"status,omitempty"`
}

func (r *ApproveRegularizationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Comments != nil && len(*r.Comments) > 1000 {
		errs.Add("comments", "comments must not exceed 1000 characters")
	}
	validateOverrides(&errs, r.CheckIn, r.CheckOut, r.Status, "")

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// HasOverrides reports whether the approver supplied any value.
func (r *ApproveRegularizationRequest) HasOverrides() bool {
	return r.CheckIn != nil || r.CheckOut != nil || r.Status != nil
}

func (r *ApproveRegularizationRequest) Parsed() (checkIn, checkOut *time.Time, status *attendance.Status) {
	return parseOverrides(r.CheckIn, r.CheckOut, r.Status)
}

type RejectRegularizationRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRegularizationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "rejection reason is required")
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateOverrides(errs *validator.ValidationErrors, checkIn, checkOut, status *string, prefix string) {
	var in, out time.Time
	var okIn, okOut bool

	if checkIn != nil {
		if in, okIn = validator.IsValidDateTime(*checkIn); !okIn {
			errs.Add(prefix+"check_in", prefix+"check_in must be an RFC3339 timestamp")
		}
	}
	if checkOut != nil {
		if out, okOut = validator.IsValidDateTime(*checkOut); !okOut {
			errs.Add(prefix+"check_out", prefix+"check_out must be an RFC3339 timestamp")
		}
	}
	if okIn && okOut && !out.After(in) {
		errs.Add(prefix+"check_out", prefix+"check_out must be after "+prefix+"check_in")
	}
	if status != nil && !validator.IsInSlice(*status, attendance.StatusValues) {
		errs.Add(prefix+"status", prefix+"status must be one of: "+strings.Join(attendance.StatusValues, ", "))
	}
}

// CheckOutSpill is how far past midnight a check-out may run into the
// following morning and still belong to the attendance day.
const CheckOutSpill = 12 * time.Hour

// ValidateTimesForDay checks that requested times belong to the attendance
// day starting at day (midnight in the policy timezone): check-in on that
// calendar day, check-out after it starts and no later than CheckOutSpill
// into the next day.
func ValidateTimesForDay(day time.Time, checkIn, checkOut *time.Time, prefix string) error {
	var errs validator.ValidationErrors

	next := day.AddDate(0, 0, 1)
	if checkIn != nil && (checkIn.Before(day) || !checkIn.Before(next)) {
		errs.Add(prefix+"check_in", prefix+"check_in must fall on "+day.Format(attendance.DateLayout))
	}
	if checkOut != nil && (!checkOut.After(day) || checkOut.After(next.Add(CheckOutSpill))) {
		errs.Add(prefix+"check_out", prefix+"check_out must fall on "+day.Format(attendance.DateLayout)+" or the following morning")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func parseOverrides(checkIn, checkOut, status *string) (*time.Time, *time.Time, *attendance.Status) {
	var in, out *time.Time
	var st *attendance.Status
	if checkIn != nil {
		if t, ok := validator.IsValidDateTime(*checkIn); ok {
			t = t.UTC()
			in = &t
		}
	}
	if checkOut != nil {
		if t, ok := validator.IsValidDateTime(*checkOut); ok {
			t = t.UTC()
			out = &t
		}
	}
	if status != nil {
		s := attendance.Status(*status)
		st = &s
	}
	return in, out, st
}

type RegularizationResponse struct {
	ID                string               `json:"id"`
	EmployeeID        string               `json:"employee_id"`
	RequesterRole     string               `json:"requester_role"`
	AttendanceDate    string               `json:"attendance_date"`
	AttendanceID      *string              `json:"attendance_id,omitempty"`
	RequestType       string               `json:"request_type"`
	Reason            string               `json:"reason"`
	RequestedCheckIn  *string              `json:"requested_check_in,omitempty"`
	RequestedCheckOut *string              `json:"requested_check_out,omitempty"`
	RequestedStatus   *string              `json:"requested_status,omitempty"`
	OriginalSnapshot  *attendance.Snapshot `json:"original_snapshot,omitempty"`
	Status            string               `json:"status"`
	CurrentLevel      string               `json:"current_level"`
	Approvals         []workflow.Step      `json:"approvals"`
	FinalApproverID   *string              `json:"final_approver_id,omitempty"`
	AuditTrail        []audit.Entry        `json:"audit_trail,omitempty"`
	CreatedAt         string               `json:"created_at"`
	UpdatedAt         string               `json:"updated_at"`
}

// NewRegularizationResponse maps a request to its wire form.
func NewRegularizationResponse(r Request, withHistory bool) RegularizationResponse {
	resp := RegularizationResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		RequesterRole:     string(r.RequesterRole),
		AttendanceDate:    r.AttendanceDate.Format(attendance.DateLayout),
		AttendanceID:      r.AttendanceID,
		RequestType:       string(r.RequestType),
		Reason:            r.Reason,
		RequestedCheckIn:  formatTime(r.RequestedCheckIn),
		RequestedCheckOut: formatTime(r.RequestedCheckOut),
		OriginalSnapshot:  r.OriginalSnapshot,
		Status:            r.Status,
		CurrentLevel:      string(r.CurrentLevel),
		Approvals:         r.Approvals,
		FinalApproverID:   r.FinalApproverID,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.Format(time.RFC3339),
	}
	if r.RequestedStatus != nil {
		s := string(*r.RequestedStatus)
		resp.RequestedStatus = &s
	}
	if withHistory {
		resp.AuditTrail = r.AuditTrail.Entries()
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type RegularizationFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	CurrentLevel *string `json:"current_level,omitempty"`
	Status       *string `json:"status,omitempty"`
	RequestType  *string `json:"request_type,omitempty"`
	StartDate    *string `json:"start_date,omitempty"` // attendance_date lower bound
	EndDate      *string `json:"end_date,omitempty"`

	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"`    // created_at, attendance_date, status
	SortOrder string `json:"sort_order"` // asc, desc
}

var regularizationSortFields = []string{"created_at", "attendance_date", "status"}

func (f *RegularizationFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidatePaging(&errs, &f.Page, &f.Limit)

	levels := user.LevelNames(Levels)
	if f.CurrentLevel != nil && !validator.IsInSlice(*f.CurrentLevel, levels) {
		errs.Add("current_level", "current_level must be one of: "+strings.Join(levels, ", "))
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, workflow.LabelValues) {
		errs.Add("status", "status must be one of: "+strings.Join(workflow.LabelValues, ", "))
	}
	if f.RequestType != nil && !validator.IsInSlice(*f.RequestType, RequestTypeValues) {
		errs.Add("request_type", "request_type must be one of: "+strings.Join(RequestTypeValues, ", "))
	}

	validator.ValidateDateRange(&errs, f.StartDate, f.EndDate)
	validator.ValidateSort(&errs, &f.SortBy, &f.SortOrder, regularizationSortFields, "created_at")

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListRegularizationResponse struct {
	TotalCount      int64                    `json:"total_count"`
	Page            int                      `json:"page"`
	Limit           int                      `json:"limit"`
	TotalPages      int                      `json:"total_pages"`
	Showing         string                   `json:"showing"`
	Regularizations []RegularizationResponse `json:"regularizations"`
}

type StatsFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
}

func (f *StatsFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidateDateRange(&errs, f.StartDate, f.EndDate)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StatsResponse struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	UnderReview int64 `json:"under_review"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Cancelled   int64 `json:"cancelled"`
}
