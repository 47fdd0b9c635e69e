// Package cache holds the authoritative local set of task records for the
// current session. Every mutation is a remote write followed by a
// reconciliation step; on failure the local set is left untouched.
package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/harrisonrobin/taskdeck/pkg/gateway"
	"github.com/harrisonrobin/taskdeck/pkg/model"
	"github.com/harrisonrobin/taskdeck/pkg/session"
)

// ErrNoSession is a contract failure: the caller invoked an operation that
// requires an authenticated session without one. It is never retryable.
var ErrNoSession = errors.New("no active session")

// TaskCache is the in-memory task collection. A single UI consumer mutates
// it, but reads and the filter engine's install can overlap, so access goes
// through an RWMutex. Overlapping operations are not serialized against each
// other beyond that.
type TaskCache struct {
	gw      *gateway.Client
	session *session.Store

	mu      sync.RWMutex
	tasks   []model.Task
	lastErr string
}

func New(gw *gateway.Client, sess *session.Store) *TaskCache {
	return &TaskCache{gw: gw, session: sess}
}

// Tasks returns a copy of the current visible list.
func (c *TaskCache) Tasks() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// LastError returns the user-visible message of the most recent failure, or
// "" after a success.
func (c *TaskCache) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Replace installs a new visible list wholesale. The filter engine uses this
// to publish a validated server-scoped result.
func (c *TaskCache) Replace(tasks []model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = tasks
	c.lastErr = ""
}

// SetError records a shared, user-visible failure message without touching
// the task list.
func (c *TaskCache) SetError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = msg
}

// GetTaskByID is a pure lookup against the current list. Absence is not an
// error: the record may be filtered out of the current view or not fetched
// yet.
func (c *TaskCache) GetTaskByID(id string) (model.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (c *TaskCache) requireSession() (string, error) {
	if !c.session.IsAuthenticated() {
		return "", ErrNoSession
	}
	return c.session.Token(), nil
}

// Refresh fetches the full unfiltered collection and replaces the cache
// contents with it.
func (c *TaskCache) Refresh(ctx context.Context) error {
	token, err := c.requireSession()
	if err != nil {
		return err
	}

	tasks, err := c.gw.GetTasks(ctx, token, nil)
	if err != nil {
		c.SetError("failed to load tasks")
		return err
	}

	c.Replace(tasks)
	return nil
}

// Create posts a new task and refreshes the whole cache afterwards, so the
// local set reflects exactly what the server persisted. The owner is always
// the current session's user, whatever the caller put in data.
func (c *TaskCache) Create(ctx context.Context, data model.CreateTaskData) error {
	token, err := c.requireSession()
	if err != nil {
		return err
	}
	data.UserID = c.session.User().ID

	if _, err := c.gw.CreateTask(ctx, token, data); err != nil {
		c.SetError("failed to create task")
		return err
	}
	return c.Refresh(ctx)
}

// Update patches only the supplied fields, then re-fetches that single
// record and reconciles it into the cache. A record the cache has never seen
// is inserted rather than dropped; the server confirmed it exists.
func (c *TaskCache) Update(ctx context.Context, id string, data model.UpdateTaskData) error {
	token, err := c.requireSession()
	if err != nil {
		return err
	}

	if err := c.gw.UpdateTask(ctx, token, id, data); err != nil {
		c.SetError("failed to update task")
		return err
	}

	updated, err := c.gw.GetTask(ctx, token, id)
	if err != nil {
		c.SetError("failed to update task")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i] = *updated
			c.lastErr = ""
			return nil
		}
	}
	c.tasks = append(c.tasks, *updated)
	c.lastErr = ""
	return nil
}

// Delete removes the task on the server, then hard-removes it from the
// cache. There is no optimistic removal: the record stays visible until the
// server confirms.
func (c *TaskCache) Delete(ctx context.Context, id string) error {
	token, err := c.requireSession()
	if err != nil {
		return err
	}

	if err := c.gw.DeleteTask(ctx, token, id); err != nil {
		c.SetError("failed to delete task")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	c.lastErr = ""
	return nil
}

// Assign is the specialization of Update that only touches the assignment.
// A nil userID clears it.
func (c *TaskCache) Assign(ctx context.Context, id string, userID *string) error {
	return c.Update(ctx, id, model.UpdateTaskData{SetAssignee: true, AssignedToUserID: userID})
}
