package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/permission"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/policy"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/regularization"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authorization
	case errors.Is(err, workflow.ErrUnauthorized),
		errors.Is(err, workflow.ErrSelfApproval),
		errors.Is(err, workflow.ErrNotRequester),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrEmployeeIDRequired),
		errors.Is(err, user.ErrUnknownRole),
		errors.Is(err, attendance.ErrForbidden),
		errors.Is(err, regularization.ErrForbidden),
		errors.Is(err, permission.ErrForbidden):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, regularization.ErrRegularizationNotFound),
		errors.Is(err, permission.ErrPermissionNotFound),
		errors.Is(err, policy.ErrPolicyNotFound):
		NotFound(w, err.Error())

	// State conflicts
	case errors.Is(err, workflow.ErrAlreadyProcessed),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrConcurrentUpdate),
		errors.Is(err, regularization.ErrDuplicateRequest),
		errors.Is(err, regularization.ErrConcurrentUpdate),
		errors.Is(err, permission.ErrOverlappingRequest),
		errors.Is(err, permission.ErrConcurrentUpdate):
		Conflict(w, err.Error())

	// Semantically invalid input
	case errors.Is(err, regularization.ErrFutureDate),
		errors.Is(err, regularization.ErrInconsistentTimes),
		errors.Is(err, attendance.ErrCheckOutBeforeIn):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
