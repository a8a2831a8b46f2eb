package api

import (
	"context"
	"strings"

	apperrors "github.com/chatify/chatify-cli/internal/errors"
)

// InviteUser invites another user into a conversation. Re-inviting the same
// user is reported as ErrCodeAlreadyInvited so callers can downgrade it to
// an informational notice.
func (c *Client) InviteUser(ctx context.Context, token, userID, conversationID string) error {
	body := struct {
		ConversationID string `json:"conversationId"`
	}{ConversationID: conversationID}

	err := c.post(ctx, "/invite/"+escapePath(userID), token, body, nil)
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok &&
		strings.Contains(strings.ToLower(appErr.Message), "already exists") {
		return apperrors.AlreadyInvited()
	}
	return err
}
