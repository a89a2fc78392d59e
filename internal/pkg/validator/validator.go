package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidUUID accepts the canonical 36-character form of any UUID version.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidClock checks a 24-hour "HH:MM" wall-clock value.
func IsValidClock(s string) bool {
	return clockRegex.MatchString(s)
}

// ParseClock returns the minutes since midnight of an "HH:MM" value.
func ParseClock(s string) (int, bool) {
	if !IsValidClock(s) {
		return 0, false
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// IsValidTimezone checks an IANA zone name such as "Asia/Jakarta".
func IsValidTimezone(name string) bool {
	if IsEmpty(name) {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}

// ValidatePaging applies the default page (1) and limit (20) and caps the
// limit at 100.
func ValidatePaging(errs *ValidationErrors, page, limit *int) {
	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = 1
	}

	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
}

// ValidateDateRange checks optional YYYY-MM-DD bounds and their order.
func ValidateDateRange(errs *ValidationErrors, start, end *string) {
	var from, to time.Time
	var okFrom, okTo bool

	if start != nil && *start != "" {
		if from, okFrom = IsValidDate(*start); !okFrom {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if end != nil && *end != "" {
		if to, okTo = IsValidDate(*end); !okTo {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if okFrom && okTo && to.Before(from) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
}

// ValidateSort checks sort_by against the allowed fields and normalizes
// sort_order, applying the given defaults.
func ValidateSort(errs *ValidationErrors, sortBy, sortOrder *string, allowed []string, defaultBy string) {
	if *sortBy != "" {
		if !IsInSlice(*sortBy, allowed) {
			errs.Add("sort_by", "sort_by must be one of: "+strings.Join(allowed, ", "))
		}
	} else {
		*sortBy = defaultBy
	}

	if *sortOrder != "" {
		*sortOrder = strings.ToLower(*sortOrder)
		if !IsInSlice(*sortOrder, []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		*sortOrder = "desc"
	}
}
