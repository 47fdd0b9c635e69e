package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/harrisonrobin/taskdeck/pkg/model"
)

// TaskFilters are the query parameters the tasks endpoint understands. The
// gateway's filtering is advisory; callers re-check the results locally.
type TaskFilters struct {
	UserID           string
	AssignedToUserID string
	Status           *model.Status
	Priority         *model.Priority
	SearchTerm       string
}

func (f *TaskFilters) encode() string {
	if f == nil {
		return ""
	}
	params := url.Values{}
	if f.UserID != "" {
		params.Set("userId", f.UserID)
	}
	if f.AssignedToUserID != "" {
		params.Set("assignedToUserId", f.AssignedToUserID)
	}
	if f.Status != nil {
		params.Set("status", strconv.Itoa(int(*f.Status)))
	}
	if f.Priority != nil {
		params.Set("priority", strconv.Itoa(int(*f.Priority)))
	}
	if f.SearchTerm != "" {
		params.Set("searchTerm", f.SearchTerm)
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// decodeTaskList tolerates the two list shapes the gateway has been seen to
// return: a bare array, or an envelope with the array under "value", "data"
// or "tasks". Anything else decodes to an empty list rather than an error.
func decodeTaskList(body []byte) []model.Task {
	doc := gjson.ParseBytes(body)
	list := doc
	if !doc.IsArray() {
		list = gjson.Result{}
		for _, key := range []string{"value", "data", "tasks"} {
			if v := doc.Get(key); v.IsArray() {
				list = v
				break
			}
		}
	}
	if !list.IsArray() {
		return nil
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(list.Raw), &tasks); err != nil {
		return nil
	}
	return tasks
}

// GetTasks fetches the task collection, optionally scoped by filters.
func (c *Client) GetTasks(ctx context.Context, token string, filters *TaskFilters) ([]model.Task, error) {
	body, err := c.get(ctx, "/tasks"+filters.encode(), token)
	if err != nil {
		return nil, err
	}
	return decodeTaskList(body), nil
}

// GetTask fetches a single task record.
func (c *Client) GetTask(ctx context.Context, token, id string) (*model.Task, error) {
	body, err := c.get(ctx, "/tasks/"+id, token)
	if err != nil {
		return nil, err
	}

	var task model.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("failed to decode task %s: %w", id, err)
	}
	return &task, nil
}

// CreateTask posts a new task and returns the id the server assigned. An
// empty assignee is stripped from the payload entirely; some gateway
// deployments reject an explicit empty string there.
func (c *Client) CreateTask(ctx context.Context, token string, data model.CreateTaskData) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	if data.AssignedToUserID == nil || *data.AssignedToUserID == "" {
		if body, err = sjson.DeleteBytes(body, "assignedToUserId"); err != nil {
			return "", err
		}
	}

	respBody, err := c.post(ctx, "/tasks", token, body)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(respBody, "id").String(), nil
}

// UpdateTask patches a task with only the fields the caller supplied.
// Clearing the assignment needs an explicit JSON null, which is why the body
// is assembled field by field instead of marshalled from a struct.
func (c *Client) UpdateTask(ctx context.Context, token, id string, data model.UpdateTaskData) error {
	body := []byte("{}")
	var err error

	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		body, err = sjson.SetBytes(body, path, value)
	}

	if data.Title != nil {
		set("title", *data.Title)
	}
	if data.Description != nil {
		set("description", *data.Description)
	}
	if data.Status != nil {
		set("status", int(*data.Status))
	}
	if data.Priority != nil {
		set("priority", int(*data.Priority))
	}
	if data.DueDate != nil {
		set("dueDate", data.DueDate.Format(time.RFC3339))
	}
	if data.SetAssignee {
		if data.AssignedToUserID != nil {
			set("assignedToUserId", *data.AssignedToUserID)
		} else {
			set("assignedToUserId", nil)
		}
	}
	if err != nil {
		return err
	}

	_, err = c.patch(ctx, "/tasks/"+id, token, body)
	return err
}

// DeleteTask removes a task on the server.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	_, err := c.delete(ctx, "/tasks/"+id, token)
	return err
}
