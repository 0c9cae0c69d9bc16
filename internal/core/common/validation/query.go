package validation

import (
	"fmt"
	"strconv"
	"strings"

	errors "github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
)

// ParseDate parses a YYYY-MM-DD query value. field names the parameter in the error.
func ParseDate(field, raw string) (calendar.Date, *errors.AppError) {
	d, err := calendar.Parse(strings.TrimSpace(raw))
	if err != nil {
		return calendar.Date{}, errors.NewValidationFieldError(field,
			fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field), errors.ErrCodeInvalidDate)
	}
	return d, nil
}

// ParseDateRange reads start/end query values. Missing bounds default to the first of
// today's month and today.
func ParseDateRange(startRaw, endRaw string, today calendar.Date) (calendar.Range, *errors.AppError) {
	rng := calendar.MonthToDate(today)

	if startRaw != "" {
		d, appErr := ParseDate("start_date", startRaw)
		if appErr != nil {
			return calendar.Range{}, appErr
		}
		rng.From = d
	}
	if endRaw != "" {
		d, appErr := ParseDate("end_date", endRaw)
		if appErr != nil {
			return calendar.Range{}, appErr
		}
		rng.To = d
	}

	if !rng.Valid() {
		return calendar.Range{}, errors.ErrInvalidDateRange
	}
	return rng, nil
}

// ParseUserID reads an optional user filter. An empty value yields nil.
func ParseUserID(raw string) (*int64, *errors.AppError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.NewValidationFieldError("user_id", "user_id must be a positive integer", errors.ErrCodeInvalidUserID)
	}
	return &id, nil
}

// ParseStatusFilter reads an optional status filter against the allowed labels.
func ParseStatusFilter(raw string, allowed []string) (*string, *errors.AppError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v := NewValidator()
	v.Field("status", raw).OneOf(errors.ErrCodeInvalidStatus, allowed...)
	if appErr := v.Validate(); appErr != nil {
		return nil, errors.ErrInvalidStatusFilter.WithDetails(appErr.Details)
	}
	return &raw, nil
}
