package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/audit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	BreakMinutes *int    `json:"break_minutes,omitempty"`
	Location     *string `json:"location,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BreakMinutes != nil && (*r.BreakMinutes < 0 || *r.BreakMinutes > 24*60) {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes must be between 0 and 1440",
		})
	}

	if r.Location != nil && len(*r.Location) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type AttendanceResponse struct {
	ID                    string        `json:"id"`
	EmployeeID            string        `json:"employee_id"`
	Date                  string        `json:"date"`
	CheckIn               *string       `json:"check_in,omitempty"`
	CheckOut              *string       `json:"check_out,omitempty"`
	BreakMinutes          int           `json:"break_minutes"`
	TotalHours            float64       `json:"total_hours"`
	Status                string        `json:"status"`
	IsLate                bool          `json:"is_late"`
	LateMinutes           int           `json:"late_minutes"`
	IsEarly               bool          `json:"is_early"`
	EarlyMinutes          int           `json:"early_minutes"`
	OvertimeHours         float64       `json:"overtime_hours"`
	ShortageHours         float64       `json:"shortage_hours"`
	AdjustedOvertimeHours float64       `json:"adjusted_overtime_hours"`
	LastActivityTime      *string       `json:"last_activity_time,omitempty"`
	AutoCheckedOut        bool          `json:"auto_checked_out"`
	IsRegularized         bool          `json:"is_regularized"`
	RegularizationID      *string       `json:"regularization_id,omitempty"`
	Location              *string       `json:"location,omitempty"`
	Notes                 *string       `json:"notes,omitempty"`
	History               []audit.Entry `json:"history,omitempty"`
	CreatedAt             string        `json:"created_at"`
	UpdatedAt             string        `json:"updated_at"`
}

// NewAttendanceResponse maps a record to its wire form.
func NewAttendanceResponse(r Record, withHistory bool) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                    r.ID,
		EmployeeID:            r.EmployeeID,
		Date:                  r.Date.Format(DateLayout),
		CheckIn:               formatTime(r.CheckIn),
		CheckOut:              formatTime(r.CheckOut),
		BreakMinutes:          r.BreakMinutes,
		TotalHours:            r.TotalHours,
		Status:                string(r.Status),
		IsLate:                r.IsLate,
		LateMinutes:           r.LateMinutes,
		IsEarly:               r.IsEarly,
		EarlyMinutes:          r.EarlyMinutes,
		OvertimeHours:         r.OvertimeHours,
		ShortageHours:         r.ShortageHours,
		AdjustedOvertimeHours: r.AdjustedOvertimeHours,
		LastActivityTime:      formatTime(r.LastActivityTime),
		AutoCheckedOut:        r.AutoCheckedOut,
		IsRegularized:         r.IsRegularized,
		RegularizationID:      r.RegularizationID,
		Location:              r.Location,
		Notes:                 r.Notes,
		CreatedAt:             r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             r.UpdatedAt.Format(time.RFC3339),
	}
	if withHistory {
		resp.History = r.History.Entries()
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

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID    *string `json:"employee_id,omitempty"`
	StartDate     *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate       *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status        *string `json:"status,omitempty"`
	IsLate        *bool   `json:"is_late,omitempty"`
	IsRegularized *bool   `json:"is_regularized,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, check_in, check_out, status, total_hours
	SortOrder string `json:"sort_order"` // asc, desc
}

var attendanceSortFields = []string{"date", "check_in", "check_out", "status", "total_hours"}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidatePaging(&errs, &f.Page, &f.Limit)

	if f.Status != nil {
		if !validator.IsInSlice(*f.Status, StatusValues) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(StatusValues, ", "),
			})
		}
	}

	validator.ValidateDateRange(&errs, f.StartDate, f.EndDate)

	validator.ValidateSort(&errs, &f.SortBy, &f.SortOrder, attendanceSortFields, "date")

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MyAttendanceFilter is AttendanceFilter without the employee selector.
type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Status    *string `json:"status,omitempty"`

	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// ForEmployee widens the filter to a full AttendanceFilter for one employee.
func (f MyAttendanceFilter) ForEmployee(employeeID string) AttendanceFilter {
	return AttendanceFilter{
		EmployeeID: &employeeID,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Status:     f.Status,
		Page:       f.Page,
		Limit:      f.Limit,
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type StatisticsFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
}

func (f *StatisticsFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidateDateRange(&errs, f.StartDate, f.EndDate)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StatisticsResponse struct {
	TotalRecords       int64   `json:"total_records"`
	PresentDays        int64   `json:"present_days"`
	HalfDays           int64   `json:"half_days"`
	AbsentDays         int64   `json:"absent_days"`
	LateDays           int64   `json:"late_days"`
	EarlyDays          int64   `json:"early_days"`
	RegularizedDays    int64   `json:"regularized_days"`
	AutoCheckedOutDays int64   `json:"auto_checked_out_days"`
	TotalHours         float64 `json:"total_hours"`
	OvertimeHours      float64 `json:"overtime_hours"`
	ShortageHours      float64 `json:"shortage_hours"`
	AverageHours       float64 `json:"average_hours"`
}
