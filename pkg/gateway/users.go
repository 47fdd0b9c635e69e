package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harrisonrobin/taskdeck/pkg/model"
)

// GetUsers fetches the user collection.
func (c *Client) GetUsers(ctx context.Context, token string) ([]model.User, error) {
	body, err := c.get(ctx, "/users", token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to decode user list: %w", err)
	}
	return users, nil
}

// GetUserByID fetches a single user record.
func (c *Client) GetUserByID(ctx context.Context, token, id string) (*model.User, error) {
	body, err := c.get(ctx, "/users/"+id, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}

	var user model.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	return &user, nil
}
