package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/chatify/chatify-cli/internal/api"
	"github.com/chatify/chatify-cli/internal/audit"
	apperrors "github.com/chatify/chatify-cli/internal/errors"
	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/store"
)

// ProfileAPI is the slice of the remote client the profile flows need.
type ProfileAPI interface {
	GetUser(ctx context.Context, token, id string) (*model.UserSnapshot, error)
	ListUsers(ctx context.Context, token string) ([]model.UserSnapshot, error)
	UpdateUser(ctx context.Context, token, userID string, params api.UpdateUserParams) error
	DeleteUser(ctx context.Context, token, id string) error
	InviteUser(ctx context.Context, token, userID, conversationID string) error
}

// ProfileService covers own-profile management and the user directory.
type ProfileService struct {
	api       ProfileAPI
	session   *SessionService
	directory *DirectoryService
	store     store.Store
}

func NewProfileService(a ProfileAPI, session *SessionService, directory *DirectoryService, s store.Store) *ProfileService {
	return &ProfileService{api: a, session: session, directory: directory, store: s}
}

// UpdateProfile sends the changed fields and then re-fetches the whole
// snapshot so the stored copy reflects what the server actually persisted.
func (p *ProfileService) UpdateProfile(ctx context.Context, params api.UpdateUserParams) (*model.UserSnapshot, error) {
	current := p.session.CurrentUser()
	if current == nil {
		return nil, apperrors.NoSession()
	}
	token := p.session.Token()
	if token == "" {
		return nil, apperrors.NoSession()
	}

	if err := p.api.UpdateUser(ctx, token, current.ID, params); err != nil {
		if apperrors.IsAuthLost(err) {
			p.session.Invalidate()
		}
		return nil, err
	}

	updated, err := p.api.GetUser(ctx, token, current.ID)
	if err != nil {
		log.Warn().Err(err).Msg("refresh profile after update")
		return nil, err
	}
	if err := store.WriteUser(p.store, updated); err != nil {
		return nil, apperrors.Store(err)
	}
	return updated, nil
}

// DeleteAccount removes the account remotely and wipes all local state.
func (p *ProfileService) DeleteAccount(ctx context.Context) error {
	current := p.session.CurrentUser()
	if current == nil {
		return apperrors.NoSession()
	}
	token := p.session.Token()
	if token == "" {
		return apperrors.NoSession()
	}

	if err := p.api.DeleteUser(ctx, token, current.ID); err != nil {
		if apperrors.IsAuthLost(err) {
			p.session.Invalidate()
		}
		return err
	}

	audit.Log(audit.Event{Type: audit.EventAccountDelete, UserID: current.ID, Username: current.Username})
	if err := p.store.Clear(); err != nil {
		return apperrors.Store(err)
	}
	return nil
}

// ListUsers returns the directory, optionally filtered by a
// case-insensitive username substring.
func (p *ProfileService) ListUsers(ctx context.Context, filter string) ([]model.UserSnapshot, error) {
	token := p.session.Token()
	if token == "" {
		return nil, apperrors.NoSession()
	}

	users, err := p.api.ListUsers(ctx, token)
	if err != nil {
		if apperrors.IsAuthLost(err) {
			p.session.Invalidate()
		}
		return nil, err
	}

	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return users, nil
	}
	var matched []model.UserSnapshot
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), filter) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

// Invite invites another user into the active conversation. A duplicate
// invite comes back as ErrCodeAlreadyInvited for the caller to downgrade.
func (p *ProfileService) Invite(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.MissingRequired("user id")
	}
	token := p.session.Token()
	if token == "" {
		return apperrors.NoSession()
	}
	conversationID := p.directory.Active()
	if conversationID == "" {
		return apperrors.MissingRequired("active conversation")
	}

	if err := p.api.InviteUser(ctx, token, userID, conversationID); err != nil {
		if apperrors.IsAuthLost(err) {
			p.session.Invalidate()
		}
		return err
	}

	current := p.session.CurrentUser()
	event := audit.Event{Type: audit.EventInviteSend, ConversationID: conversationID, Details: map[string]interface{}{"invitee_id": userID}}
	if current != nil {
		event.UserID = current.ID
		event.Username = current.Username
	}
	audit.Log(event)
	return nil
}
