package util

import (
	"github.com/harrisonrobin/taskdeck/pkg/model"
)

const (
	notSetLabel  = "not set"
	invalidLabel = "unknown"

	dateTimeLayout = "02/01/2006 15:04"
	dateOnlyLayout = "02/01/2006"
)

// FormatDate renders an optional timestamp as date and time.
func FormatDate(ts *model.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return notSetLabel
	}
	return ts.Format(dateTimeLayout)
}

// FormatDateOnly renders an optional timestamp as a bare date.
func FormatDateOnly(ts *model.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return notSetLabel
	}
	return ts.Format(dateOnlyLayout)
}

// StatusLabel renders a status for display.
func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusPending:
		return "pending"
	case model.StatusInProgress:
		return "in progress"
	case model.StatusCompleted:
		return "completed"
	case model.StatusCancelled:
		return "cancelled"
	default:
		return invalidLabel
	}
}

// PriorityLabel renders a priority for display.
func PriorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityLow:
		return "low"
	case model.PriorityMedium:
		return "medium"
	case model.PriorityHigh:
		return "high"
	case model.PriorityCritical:
		return "critical"
	default:
		return invalidLabel
	}
}
