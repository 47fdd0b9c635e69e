package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the task status as the gateway encodes it.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
	StatusCancelled
)

// Priority is the task priority as the gateway encodes it.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// Role is the user role as the gateway encodes it.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

func (s Status) Valid() bool   { return s >= StatusPending && s <= StatusCancelled }
func (p Priority) Valid() bool { return p >= PriorityLow && p <= PriorityCritical }

// Timestamp wraps time.Time to tolerate the date shapes the gateway emits:
// full RFC 3339 timestamps, bare dates for due dates, and empty strings.
type Timestamp struct {
	time.Time
}

const dateOnlyLayout = "2006-01-02"

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse(dateOnlyLayout, s)
	}
	if err != nil {
		return fmt.Errorf("failed to parse gateway time string '%s': %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Time.Format(time.RFC3339) + `"`), nil
}

// NewTimestamp is a convenience constructor for optional date fields.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// User mirrors the gateway's user record.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
	IsDeleted bool       `json:"isDeleted"`
}

// Task mirrors the gateway's task record. AssignedToUserID is nil when the
// task is unassigned.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	DueDate          *Timestamp `json:"dueDate,omitempty"`
	UserID           string     `json:"userId"`
	AssignedToUserID *string    `json:"assignedToUserId,omitempty"`
	CreatedAt        *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt        *Timestamp `json:"updatedAt,omitempty"`
	IsDeleted        bool       `json:"isDeleted"`
}

// LoginData is the credential payload for the login endpoint.
type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData is the payload for the account-creation endpoint.
type RegisterData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the shape the login endpoint returns. Token and UserID are
// mandatory; a response missing either is treated as a contract violation.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// CreateTaskData is the task-creation payload. UserID is always overwritten
// with the current session's user before it reaches the gateway.
type CreateTaskData struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	UserID           string     `json:"userId"`
	Priority         *Priority  `json:"priority,omitempty"`
	DueDate          *Timestamp `json:"dueDate,omitempty"`
	AssignedToUserID *string    `json:"assignedToUserId,omitempty"`
}

// UpdateTaskData carries only the fields a PATCH should touch; nil pointers
// stay out of the request body entirely. The assignee is tri-state: leave
// SetAssignee false to keep it untouched, set SetAssignee with a nil
// AssignedToUserID to clear the assignment on the server.
type UpdateTaskData struct {
	Title            *string
	Description      *string
	Status           *Status
	Priority         *Priority
	DueDate          *Timestamp
	SetAssignee      bool
	AssignedToUserID *string
}
