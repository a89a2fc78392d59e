package permission

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
// PERMISSION DTOs
// ========================================

type CreatePermissionRequest struct {
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
	Reason    string `json:"reason"`
}

func (r *CreatePermissionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs.Add("date", "date is required")
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	start, okStart := validator.ParseClock(r.StartTime)
	if !okStart {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	end, okEnd := validator.ParseClock(r.EndTime)
	if !okEnd {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if okStart && okEnd && end <= start {
		errs.Add("end_time", "end_time must be after start_time")
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Duration returns the requested minutes of a validated request.
func (r *CreatePermissionRequest) Duration() int {
	start, _ := validator.ParseClock(r.StartTime)
	end, _ := validator.ParseClock(r.EndTime)
	return end - start
}

type ApprovePermissionRequest struct {
	Comments *string `json:"comments,omitempty"`
}

func (r *ApprovePermissionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Comments != nil && len(*r.Comments) > 1000 {
		errs.Add("comments", "comments must not exceed 1000 characters")
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectPermissionRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectPermissionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "rejection reason is required")
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PermissionResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	RequesterRole   string          `json:"requester_role"`
	Date            string          `json:"date"`
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	DurationMinutes int             `json:"duration_minutes"`
	Reason          string          `json:"reason"`
	Status          string          `json:"status"`
	CurrentLevel    string          `json:"current_level"`
	Approvals       []workflow.Step `json:"approvals"`
	FinalApproverID *string         `json:"final_approver_id,omitempty"`
	AuditTrail      []audit.Entry   `json:"audit_trail,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

func NewPermissionResponse(r Request, withHistory bool) PermissionResponse {
	resp := PermissionResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		RequesterRole:   string(r.RequesterRole),
		Date:            r.Date.Format(attendance.DateLayout),
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
		Reason:          r.Reason,
		Status:          r.Status,
		CurrentLevel:    string(r.CurrentLevel),
		Approvals:       r.Approvals,
		FinalApproverID: r.FinalApproverID,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
	if withHistory {
		resp.AuditTrail = r.AuditTrail.Entries()
	}
	return resp
}

type PermissionFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	CurrentLevel *string `json:"current_level,omitempty"`
	Status       *string `json:"status,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`

	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"`    // created_at, date, status
	SortOrder string `json:"sort_order"` // asc, desc
}

var permissionSortFields = []string{"created_at", "date", "status"}

func (f *PermissionFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidatePaging(&errs, &f.Page, &f.Limit)

	levels := user.LevelNames(Levels)
	if f.CurrentLevel != nil && !validator.IsInSlice(*f.CurrentLevel, levels) {
		errs.Add("current_level", "current_level must be one of: "+strings.Join(levels, ", "))
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, workflow.LabelValues) {
		errs.Add("status", "status must be one of: "+strings.Join(workflow.LabelValues, ", "))
	}

	validator.ValidateDateRange(&errs, f.StartDate, f.EndDate)
	validator.ValidateSort(&errs, &f.SortBy, &f.SortOrder, permissionSortFields, "created_at")

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListPermissionResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Permissions []PermissionResponse `json:"permissions"`
}
