package service

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/chatify/chatify-cli/internal/audit"
	apperrors "github.com/chatify/chatify-cli/internal/errors"
	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/store"
	"github.com/chatify/chatify-cli/internal/telemetry"
)

// InboxService holds the pending conversation invitations. Load replaces
// the whole set from a raw snapshot; it is not cumulative across calls.
type InboxService struct {
	store     store.Store
	directory *DirectoryService
	telemetry *telemetry.Telemetry

	mu      sync.Mutex
	pending []model.Invitation
}

func NewInboxService(s store.Store, dir *DirectoryService, tel *telemetry.Telemetry) *InboxService {
	return &InboxService{store: s, directory: dir, telemetry: tel}
}

// Load replaces the pending set from a raw JSON snapshot, deduplicating by
// sender username with first occurrence winning. Empty input clears the
// inbox without touching the parser; corrupt input degrades to empty and
// is reported.
func (i *InboxService) Load(raw string) []model.Invitation {
	i.mu.Lock()
	defer i.mu.Unlock()

	if raw == "" {
		i.pending = nil
		return nil
	}

	var invites []model.Invitation
	if err := json.Unmarshal([]byte(raw), &invites); err != nil {
		i.telemetry.CaptureException(apperrors.CorruptState(store.KeyInvites, err))
		i.pending = nil
		return nil
	}

	i.pending = dedupeBySender(invites)
	return i.snapshot()
}

// Restore loads the pending set from the persistent store.
func (i *InboxService) Restore() []model.Invitation {
	raw, ok, err := i.store.Get(store.KeyInvites)
	if err != nil {
		log.Warn().Err(err).Msg("read invites from store")
		return nil
	}
	if !ok {
		return nil
	}
	return i.Load(raw)
}

// Pending returns the current deduplicated set in arrival order.
func (i *InboxService) Pending() []model.Invitation {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.snapshot()
}

// Accept registers the invitation's conversation in the directory, removes
// the invitation from the pending set, persists the shrunken set, and
// returns the resulting conversation. Accepting an invitation whose
// conversation is already known still removes the invitation.
func (i *InboxService) Accept(inv model.Invitation, ownerID string) (*model.Conversation, error) {
	conv, err := i.directory.RecordConversation(inv.ConversationID, ownerID)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	remaining := i.pending[:0:0]
	for _, p := range i.pending {
		if p.ConversationID == inv.ConversationID && p.FromUsername == inv.FromUsername {
			continue
		}
		remaining = append(remaining, p)
	}
	i.pending = remaining

	if err := store.WriteInvites(i.store, i.pending); err != nil {
		return nil, apperrors.Store(err)
	}

	audit.Log(audit.Event{
		Type:           audit.EventInviteAccept,
		UserID:         ownerID,
		Username:       inv.FromUsername,
		ConversationID: inv.ConversationID,
	})
	return conv, nil
}

func (i *InboxService) snapshot() []model.Invitation {
	if len(i.pending) == 0 {
		return nil
	}
	out := make([]model.Invitation, len(i.pending))
	copy(out, i.pending)
	return out
}

// dedupeBySender keeps the first invitation from each sender, preserving
// arrival order.
func dedupeBySender(invites []model.Invitation) []model.Invitation {
	seen := make(map[string]bool, len(invites))
	var out []model.Invitation
	for _, inv := range invites {
		if seen[inv.FromUsername] {
			continue
		}
		seen[inv.FromUsername] = true
		out = append(out, inv)
	}
	return out
}
