package api

import (
	"context"
	"net/url"
	"time"

	"github.com/chatify/chatify-cli/internal/model"
)

// wireMessage is a message as the API serializes it. Identifiers come back
// as strings or numbers depending on the endpoint, and createdAt is an ISO
// timestamp string.
type wireMessage struct {
	ID             model.FlexibleID `json:"id"`
	ConversationID model.FlexibleID `json:"conversationId"`
	UserID         model.FlexibleID `json:"userId"`
	Text           string           `json:"text"`
	CreatedAt      string           `json:"createdAt"`
}

func (w wireMessage) toModel() model.Message {
	createdAt, err := time.Parse(time.RFC3339, w.CreatedAt)
	if err != nil {
		// An unparseable timestamp renders as the zero time rather than
		// failing the whole fetch.
		createdAt = time.Time{}
	}
	return model.Message{
		ID:             w.ID.String(),
		ConversationID: w.ConversationID.String(),
		AuthorID:       w.UserID.String(),
		Text:           w.Text,
		CreatedAt:      createdAt,
	}
}

// ListMessages fetches the messages of a conversation in the order the API
// returns them. The order is preserved verbatim; the client never re-sorts.
func (c *Client) ListMessages(ctx context.Context, token, conversationID string) ([]model.Message, error) {
	query := url.Values{"conversationId": {conversationID}}
	var raw []wireMessage
	if err := c.get(ctx, "/messages", query, token, &raw); err != nil {
		return nil, err
	}

	messages := make([]model.Message, 0, len(raw))
	for _, w := range raw {
		messages = append(messages, w.toModel())
	}
	return messages, nil
}

type CreateMessageParams struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversationId"`
}

// CreateMessage submits a new message. The API confirms with a
// latestMessage payload; the returned message may have an empty ID when the
// server omits one, in which case the composer assigns a local fallback.
func (c *Client) CreateMessage(ctx context.Context, token string, params CreateMessageParams) (*model.Message, error) {
	var resp struct {
		LatestMessage *wireMessage `json:"latestMessage"`
	}
	if err := c.post(ctx, "/messages", token, params, &resp); err != nil {
		return nil, err
	}
	if resp.LatestMessage == nil {
		return nil, nil
	}
	msg := resp.LatestMessage.toModel()
	return &msg, nil
}

// DeleteMessage removes a message by identifier.
func (c *Client) DeleteMessage(ctx context.Context, token, id string) error {
	return c.delete(ctx, "/messages/"+escapePath(id), token)
}
