package store

import (
	"encoding/json"

	"github.com/chatify/chatify-cli/internal/model"
)

// Keys of the persisted local state. The spellings match the browser
// client's localStorage keys, so a state export/import stays compatible.
const (
	KeyToken              = "token"
	KeyUser               = "user"
	KeySavedConversations = "savedConversations"
	KeyInvites            = "invites"
)

// Store is the injected local persistence capability shared by all
// components. Implementations are not required to be safe for concurrent
// writers beyond what the single event loop needs; callers follow
// read-modify-write against their most recent snapshot.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

// ReadConversations decodes the saved-conversations list. A missing key is
// an empty list; corrupt JSON is returned as an error for the caller to
// degrade and report.
func ReadConversations(s Store) ([]model.Conversation, error) {
	raw, ok, err := s.Get(KeySavedConversations)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var convs []model.Conversation
	if err := json.Unmarshal([]byte(raw), &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// WriteConversations persists the saved-conversations list.
func WriteConversations(s Store, convs []model.Conversation) error {
	if convs == nil {
		convs = []model.Conversation{}
	}
	raw, err := json.Marshal(convs)
	if err != nil {
		return err
	}
	return s.Set(KeySavedConversations, string(raw))
}

// ReadInvites decodes the pending invites list, with the same missing/corrupt
// semantics as ReadConversations.
func ReadInvites(s Store) ([]model.Invitation, error) {
	raw, ok, err := s.Get(KeyInvites)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var invites []model.Invitation
	if err := json.Unmarshal([]byte(raw), &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// WriteInvites persists the pending invites list.
func WriteInvites(s Store, invites []model.Invitation) error {
	if invites == nil {
		invites = []model.Invitation{}
	}
	raw, err := json.Marshal(invites)
	if err != nil {
		return err
	}
	return s.Set(KeyInvites, string(raw))
}

// ReadUser decodes the stored user snapshot, accepting both the bare-object
// and one-element-array shapes.
func ReadUser(s Store) (*model.UserSnapshot, error) {
	raw, ok, err := s.Get(KeyUser)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	return model.NormalizeUser([]byte(raw))
}

// WriteUser persists the user snapshot in canonical (bare object) shape.
func WriteUser(s Store, user *model.UserSnapshot) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.Set(KeyUser, string(raw))
}
