package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // v7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // v7 (uppercase)
		"123e4567-e89b-42d3-a456-426614174000", // v4, as issued by gen_random_uuid
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"{0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b}",
		"not-a-uuid",
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "check_in_time", Message: "invalid"},
		{Field: "timezone", Message: "required"},
	}
	got := errs.Error()
	want := "check_in_time: invalid; timezone: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "check_in_time", Message: "invalid"},
		{Field: "timezone", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"check_in_time": "invalid", "timezone": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:00", "17:30", "23:59"}
	invalid := []string{"24:00", "9:00", "09:60", "0900", "09:00:00", ""}
	for _, s := range valid {
		if !IsValidClock(s) {
			t.Errorf("IsValidClock(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidClock(s) {
			t.Errorf("IsValidClock(%q) = true, want false", s)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		input string
		want  int
		ok    bool
	}{
		{"00:00", 0, true},
		{"09:15", 555, true},
		{"18:00", 1080, true},
		{"25:00", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseClock(c.input)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseClock(%q) = (%d, %v), want (%d, %v)", c.input, got, ok, c.want, c.ok)
		}
	}
}

func TestIsValidTimezone(t *testing.T) {
	if !IsValidTimezone("UTC") {
		t.Errorf("IsValidTimezone(UTC) = false, want true")
	}
	if IsValidTimezone("Mars/Olympus") {
		t.Errorf("IsValidTimezone(Mars/Olympus) = true, want false")
	}
	if IsValidTimezone("") {
		t.Errorf("IsValidTimezone(\"\") = true, want false")
	}
}

func TestValidationErrors_Add(t *testing.T) {
	var errs ValidationErrors
	errs.Add("date", "required")
	if len(errs) != 1 || errs[0].Field != "date" {
		t.Errorf("ValidationErrors.Add() = %v, want one date error", errs)
	}
}

func TestValidatePaging(t *testing.T) {
	var errs ValidationErrors
	page, limit := 0, 0
	ValidatePaging(&errs, &page, &limit)
	if len(errs) != 0 || page != 1 || limit != 20 {
		t.Errorf("ValidatePaging(0, 0) = (%d, %d, %v), want (1, 20, none)", page, limit, errs)
	}

	errs = nil
	page, limit = -1, 101
	ValidatePaging(&errs, &page, &limit)
	m := errs.ToMap()
	if _, ok := m["page"]; !ok {
		t.Errorf("ValidatePaging(-1, 101) missing page error: %v", m)
	}
	if _, ok := m["limit"]; !ok {
		t.Errorf("ValidatePaging(-1, 101) missing limit error: %v", m)
	}
}

func TestValidateDateRange(t *testing.T) {
	start, end := "2026-03-10", "2026-03-01"
	var errs ValidationErrors
	ValidateDateRange(&errs, &start, &end)
	if _, ok := errs.ToMap()["end_date"]; !ok {
		t.Errorf("ValidateDateRange(reversed) = %v, want end_date error", errs)
	}

	errs = nil
	bad := "10/03/2026"
	ValidateDateRange(&errs, &bad, nil)
	if _, ok := errs.ToMap()["start_date"]; !ok {
		t.Errorf("ValidateDateRange(bad start) = %v, want start_date error", errs)
	}

	errs = nil
	ValidateDateRange(&errs, nil, nil)
	if len(errs) != 0 {
		t.Errorf("ValidateDateRange(nil, nil) = %v, want none", errs)
	}
}

func TestValidateSort(t *testing.T) {
	allowed := []string{"date", "status"}

	var errs ValidationErrors
	sortBy, sortOrder := "", ""
	ValidateSort(&errs, &sortBy, &sortOrder, allowed, "date")
	if len(errs) != 0 || sortBy != "date" || sortOrder != "desc" {
		t.Errorf("ValidateSort(defaults) = (%q, %q, %v), want (date, desc, none)", sortBy, sortOrder, errs)
	}

	errs = nil
	sortBy, sortOrder = "status", "ASC"
	ValidateSort(&errs, &sortBy, &sortOrder, allowed, "date")
	if len(errs) != 0 || sortOrder != "asc" {
		t.Errorf("ValidateSort(status, ASC) = (%q, %v), want (asc, none)", sortOrder, errs)
	}

	errs = nil
	sortBy, sortOrder = "salary", "sideways"
	ValidateSort(&errs, &sortBy, &sortOrder, allowed, "date")
	if len(errs) != 2 {
		t.Errorf("ValidateSort(invalid) = %v, want 2 errors", errs)
	}
}
