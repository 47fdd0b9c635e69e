// Package filter derives the visible subset of tasks for a named predicate.
// Each application fetches a server-scoped result and then re-checks every
// returned record locally: the gateway's filtering is advisory, the client's
// revalidation pass is authoritative.
package filter

import (
	"fmt"

	"github.com/harrisonrobin/taskdeck/pkg/model"
)

// Name identifies one of the closed set of filters.
type Name string

const (
	All            Name = "all"
	MyTasks        Name = "my-tasks"
	MyPending      Name = "my-pending"
	MyCompleted    Name = "my-completed"
	MyHighPriority Name = "my-high-priority"
	ByStatus       Name = "by-status"
	ByPriority     Name = "by-priority"
)

// Selection is a filter choice plus the arguments the parameterized filters
// need. Status and Priority are only read for ByStatus and ByPriority.
type Selection struct {
	Name     Name           `json:"name"`
	Status   model.Status   `json:"status"`
	Priority model.Priority `json:"priority"`
}

// Predicate is the local truth a fetched batch is checked against. A
// non-empty AssignedTo requires the assignment to be present and equal;
// an unassigned task can never match an "assigned to me" predicate.
type Predicate struct {
	AssignedTo string
	Status     *model.Status
	Priority   *model.Priority
}

func (p Predicate) Matches(t model.Task) bool {
	if p.AssignedTo != "" {
		if t.AssignedToUserID == nil || *t.AssignedToUserID != p.AssignedTo {
			return false
		}
	}
	if p.Status != nil && t.Status != *p.Status {
		return false
	}
	if p.Priority != nil && t.Priority != *p.Priority {
		return false
	}
	return true
}

// Revalidate narrows a fetched batch to the records that actually satisfy
// the predicate. When every record passes, the batch is returned as-is. The
// pass is pure and idempotent; records that fail are dropped, not reported.
func Revalidate(tasks []model.Task, p Predicate) []model.Task {
	for i, t := range tasks {
		if !p.Matches(t) {
			valid := make([]model.Task, 0, len(tasks)-1)
			valid = append(valid, tasks[:i]...)
			for _, rest := range tasks[i+1:] {
				if p.Matches(rest) {
					valid = append(valid, rest)
				}
			}
			return valid
		}
	}
	return tasks
}

// predicateFor translates a selection into the local predicate for the given
// user. Every filter except All scopes to tasks assigned to that user.
func predicateFor(sel Selection, userID string) (Predicate, error) {
	switch sel.Name {
	case All:
		return Predicate{}, nil
	case MyTasks:
		return Predicate{AssignedTo: userID}, nil
	case MyPending:
		status := model.StatusPending
		return Predicate{AssignedTo: userID, Status: &status}, nil
	case MyCompleted:
		status := model.StatusCompleted
		return Predicate{AssignedTo: userID, Status: &status}, nil
	case MyHighPriority:
		priority := model.PriorityHigh
		return Predicate{AssignedTo: userID, Priority: &priority}, nil
	case ByStatus:
		if !sel.Status.Valid() {
			return Predicate{}, fmt.Errorf("invalid status value %d", sel.Status)
		}
		status := sel.Status
		return Predicate{AssignedTo: userID, Status: &status}, nil
	case ByPriority:
		if !sel.Priority.Valid() {
			return Predicate{}, fmt.Errorf("invalid priority value %d", sel.Priority)
		}
		priority := sel.Priority
		return Predicate{AssignedTo: userID, Priority: &priority}, nil
	default:
		return Predicate{}, fmt.Errorf("unknown filter '%s'", sel.Name)
	}
}
