package api

import (
	"context"
	"encoding/json"

	apperrors "github.com/chatify/chatify-cli/internal/errors"
	"github.com/chatify/chatify-cli/internal/model"
)

// GetUser fetches one user's profile snapshot. The endpoint sometimes wraps
// the object in a one-element array; NormalizeUser absorbs that.
func (c *Client) GetUser(ctx context.Context, token, id string) (*model.UserSnapshot, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/users/"+escapePath(id), nil, token, &raw); err != nil {
		return nil, err
	}
	user, err := model.NormalizeUser(raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRemoteFailure, "Malformed user payload", err)
	}
	return user, nil
}

// ListUsers fetches the full user directory.
func (c *Client) ListUsers(ctx context.Context, token string) ([]model.UserSnapshot, error) {
	var raw []json.RawMessage
	if err := c.get(ctx, "/users", nil, token, &raw); err != nil {
		return nil, err
	}

	users := make([]model.UserSnapshot, 0, len(raw))
	for _, entry := range raw {
		user, err := model.NormalizeUser(entry)
		if err != nil {
			// One malformed directory entry should not hide the rest.
			continue
		}
		users = append(users, *user)
	}
	return users, nil
}

// UpdateUserParams carries the editable profile fields. Empty password means
// the password is left unchanged.
type UpdateUserParams struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Password string `json:"password,omitempty"`
}

// UpdateUser updates the caller's own profile fields.
func (c *Client) UpdateUser(ctx context.Context, token, userID string, params UpdateUserParams) error {
	body := struct {
		UserID      string           `json:"userId"`
		UpdatedData UpdateUserParams `json:"updatedData"`
	}{UserID: userID, UpdatedData: params}
	return c.put(ctx, "/user", token, body, nil)
}

// DeleteUser deletes the caller's own account.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.delete(ctx, "/users/"+escapePath(id), token)
}
