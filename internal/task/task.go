package task

import (
	"errors"
	"strings"
	"time"
)

// Task is one row of the tasks table.
type Task struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Reminder    *string `json:"reminder"`
}

// Update carries the fields of a partial update. Nil pointers mean
// "leave unchanged". ReminderSet distinguishes "reminder absent" from
// "reminder explicitly cleared".
type Update struct {
	Completed   *bool
	Description *string
	Reminder    *string
	ReminderSet bool
}

var ErrNotFound = errors.New("not found")

// ValidationError marks bad or missing caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(msg string) error { return &ValidationError{Msg: msg} }

// Reminder values must be ISO-8601. The short form without seconds is what
// the UI's datetime-local input produces.
var reminderLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeReminder validates a raw reminder value. Empty, "null" and
// whitespace all mean "no reminder" and yield nil. A parseable ISO-8601
// value is returned as given; anything else is a ValidationError.
func NormalizeReminder(value string) (*string, error) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "null") {
		return nil, nil
	}
	for _, layout := range reminderLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return &v, nil
		}
	}
	return nil, Invalid("Invalid reminder format.")
}
