// Package overdue implements the due-date rule for task views.
package overdue

import (
	"time"

	"github.com/harrisonrobin/taskdeck/pkg/model"
)

// IsOverdue reports whether a task with the given due date and status has
// slipped past its due day. The comparison is calendar-date only in now's
// location: a task due earlier today is not overdue yet. Completed tasks are
// never overdue; cancelled tasks still are, matching the upstream behavior.
func IsOverdue(due *model.Timestamp, status model.Status, now time.Time) bool {
	if due == nil || due.IsZero() || status == model.StatusCompleted {
		return false
	}

	dy, dm, dd := due.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return dueDay.Before(today)
}

// Filter returns the tasks from the given list that are overdue.
func Filter(tasks []model.Task, now time.Time) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if IsOverdue(t.DueDate, t.Status, now) {
			out = append(out, t)
		}
	}
	return out
}
