package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chatify/chatify-cli/internal/api"
	"github.com/chatify/chatify-cli/internal/audit"
	"github.com/chatify/chatify-cli/internal/config"
	apperrors "github.com/chatify/chatify-cli/internal/errors"
	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/util"
)

// ComposerAPI is the slice of the remote client the composer needs.
type ComposerAPI interface {
	CreateMessage(ctx context.Context, token string, params api.CreateMessageParams) (*model.Message, error)
	DeleteMessage(ctx context.Context, token, id string) error
}

// ComposerService validates, sanitizes, and submits outgoing messages, and
// merges the confirmed record into the local timeline.
type ComposerService struct {
	api       ComposerAPI
	session   *SessionService
	timeline  *TimelineService
	directory *DirectoryService
}

func NewComposerService(a ComposerAPI, session *SessionService, timeline *TimelineService, directory *DirectoryService) *ComposerService {
	return &ComposerService{api: a, session: session, timeline: timeline, directory: directory}
}

// Send submits rawText to the conversation. Empty trimmed text, a missing
// author, or a missing conversation id fail validation before any network
// traffic. The merged record keeps the client-side submission timestamp
// verbatim; the server-assigned id is used when present, else a local uuid.
// On failure the timeline is left untouched so the caller can retry with
// the same draft.
func (c *ComposerService) Send(ctx context.Context, conversationID string, author *model.UserSnapshot, rawText string) (*model.TimelineEntry, error) {
	text := util.SanitizeText(rawText)
	if text == "" {
		return nil, apperrors.ValidationError("Message text must not be empty")
	}
	if author == nil || author.ID == "" {
		return nil, apperrors.MissingRequired("author")
	}
	if conversationID == "" {
		return nil, apperrors.MissingRequired("conversation id")
	}

	token := c.session.Token()
	if token == "" {
		return nil, apperrors.NoSession()
	}

	submittedAt := time.Now().UTC()

	sendCtx, cancel := context.WithTimeout(ctx, config.SendTimeout)
	defer cancel()

	confirmed, err := c.api.CreateMessage(sendCtx, token, api.CreateMessageParams{
		Text:           text,
		ConversationID: conversationID,
	})
	if err != nil {
		if apperrors.IsAuthLost(err) {
			c.session.Invalidate()
		}
		return nil, err
	}
	if confirmed == nil {
		return nil, apperrors.New(apperrors.ErrCodeRemoteFailure, "Send was not confirmed by the server")
	}

	merged := model.Message{
		ID:             confirmed.ID,
		ConversationID: conversationID,
		AuthorID:       author.ID,
		Text:           text,
		CreatedAt:      submittedAt,
	}
	if merged.ID == "" {
		merged.ID = util.NewID()
	}

	entry := c.timeline.Append(merged, author)
	if err := c.directory.UpdateLatestMessage(conversationID, merged); err != nil {
		log.Warn().Err(err).Str("conversationId", conversationID).Msg("update latest message")
	}
	return &entry, nil
}

// Delete removes a message remotely and, on success, from the local
// timeline. A failed delete leaves the timeline unchanged.
func (c *ComposerService) Delete(ctx context.Context, messageID string) error {
	if messageID == "" {
		return apperrors.MissingRequired("message id")
	}
	token := c.session.Token()
	if token == "" {
		return apperrors.NoSession()
	}

	if err := c.api.DeleteMessage(ctx, token, messageID); err != nil {
		if apperrors.IsAuthLost(err) {
			c.session.Invalidate()
		}
		return err
	}

	c.timeline.Remove(messageID)
	audit.Log(audit.Event{Type: audit.EventMessageDelete, Details: map[string]interface{}{"message_id": messageID}})
	return nil
}
