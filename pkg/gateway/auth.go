package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harrisonrobin/taskdeck/pkg/model"
)

// Login exchanges credentials for an auth response. Shape validation (token
// and userId both present) is the session store's job; this just moves bytes.
func (c *Client) Login(ctx context.Context, data model.LoginData) (*model.AuthResponse, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	respBody, err := c.post(ctx, "/users/login", "", body)
	if err != nil {
		return nil, err
	}

	var resp model.AuthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &resp, nil
}

// Register creates an account and returns the new user's id.
func (c *Client) Register(ctx context.Context, data model.RegisterData) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	respBody, err := c.post(ctx, "/users/register", "", body)
	if err != nil {
		return "", err
	}

	var resp struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to decode register response: %w", err)
	}
	return resp.UserID, nil
}
