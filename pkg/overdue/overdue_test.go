package overdue

import (
	"testing"
	"time"

	"github.com/harrisonrobin/taskdeck/pkg/model"
)

func ts(s string) *model.Timestamp {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return model.NewTimestamp(t)
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		due    *model.Timestamp
		status model.Status
		want   bool
	}{
		{"past due pending", ts("2024-01-01"), model.StatusPending, true},
		{"past due completed", ts("2024-01-01"), model.StatusCompleted, false},
		{"past due cancelled", ts("2024-01-01"), model.StatusCancelled, true},
		{"past due in progress", ts("2024-05-31"), model.StatusInProgress, true},
		{"due today", ts("2024-06-01"), model.StatusPending, false},
		{"due in the future", ts("2024-07-01"), model.StatusPending, false},
		{"no due date", nil, model.StatusPending, false},
		{"zero due date", &model.Timestamp{}, model.StatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOverdue(tc.due, tc.status, now); got != tc.want {
				t.Errorf("IsOverdue(%v, %v) = %v, want %v", tc.due, tc.status, got, tc.want)
			}
		})
	}
}

func TestIsOverdueComparesCalendarDates(t *testing.T) {
	// Due late yesterday evening, checked early this morning: less than a
	// day apart but a calendar day behind, so it counts as overdue.
	due := model.NewTimestamp(time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC))
	now := time.Date(2024, 6, 1, 0, 30, 0, 0, time.UTC)

	if !IsOverdue(due, model.StatusPending, now) {
		t.Error("expected a task due the previous calendar day to be overdue")
	}
}

func TestFilter(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "1", DueDate: ts("2024-01-01"), Status: model.StatusPending},
		{ID: "2", DueDate: ts("2024-01-01"), Status: model.StatusCompleted},
		{ID: "3", DueDate: ts("2024-08-01"), Status: model.StatusPending},
		{ID: "4", Status: model.StatusPending},
	}

	got := Filter(tasks, now)
	if len(got) != 1 {
		t.Fatalf("expected 1 overdue task, got %d", len(got))
	}
	if got[0].ID != "1" {
		t.Errorf("expected task 1 to be overdue, got %s", got[0].ID)
	}
}
