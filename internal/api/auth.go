package api

import (
	"context"
	"net/http"

	apperrors "github.com/chatify/chatify-cli/internal/errors"
)

// FetchCSRFToken obtains the request-binding token that login and
// registration require. The API hands it out on a PATCH, oddly enough.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	var resp struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.patch(ctx, "/csrf", "", nil, &resp); err != nil {
		return "", err
	}
	if resp.CSRFToken == "" {
		return "", apperrors.RemoteFailure(http.StatusOK, "csrf response missing token")
	}
	return resp.CSRFToken, nil
}

type credentials struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CSRFToken string `json:"csrfToken"`
}

// Login exchanges credentials plus a csrf token for a bearer token.
func (c *Client) Login(ctx context.Context, username, password, csrfToken string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := credentials{Username: username, Password: password, CSRFToken: csrfToken}
	if err := c.post(ctx, "/auth/token", "", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", apperrors.RemoteFailure(http.StatusOK, "auth response missing token")
	}
	return resp.Token, nil
}

type RegisterParams struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	CSRFToken string `json:"csrfToken"`
}

// Register creates an account and returns the bearer token the API issues
// for it. A 400 means the username or email is already taken.
func (c *Client) Register(ctx context.Context, params RegisterParams) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.post(ctx, "/auth/register", "", params, &resp)
	if err != nil {
		// The API reports duplicate accounts as a plain 400.
		if apperrors.RemoteStatus(err) == http.StatusBadRequest {
			return "", apperrors.AlreadyExists("Username or email")
		}
		return "", err
	}
	return resp.Token, nil
}
