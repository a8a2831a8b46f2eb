package service

import (
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/chatify/chatify-cli/internal/errors"
	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/store"
	"github.com/chatify/chatify-cli/internal/telemetry"
	"github.com/chatify/chatify-cli/internal/util"
)

// DirectoryService maintains the set of conversations the local user
// participates in. It is the single local source of truth for which
// conversations this client knows about; the remote API offers no
// server-side listing to fall back on.
type DirectoryService struct {
	store     store.Store
	telemetry *telemetry.Telemetry

	mu       sync.Mutex
	activeID string
	onActive func(conversationID string)
}

func NewDirectoryService(s store.Store, tel *telemetry.Telemetry) *DirectoryService {
	return &DirectoryService{store: s, telemetry: tel}
}

// SetActivationHook registers the dependent-refetch trigger invoked on
// SetActive. Typically wired to the timeline fetcher's Trigger.
func (d *DirectoryService) SetActivationHook(fn func(conversationID string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onActive = fn
}

// load reads the saved-conversations list, degrading corrupt state to the
// empty default with a telemetry report.
func (d *DirectoryService) load() []model.Conversation {
	convs, err := store.ReadConversations(d.store)
	if err != nil {
		d.telemetry.CaptureException(apperrors.CorruptState(store.KeySavedConversations, err))
		return nil
	}
	return convs
}

// ListConversations returns the conversations where ownerID is inviter or
// among the invitees, in stored order.
func (d *DirectoryService) ListConversations(ownerID string) []model.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()

	var result []model.Conversation
	for _, conv := range d.load() {
		if conv.Involves(ownerID) {
			result = append(result, conv)
		}
	}
	return result
}

// CreateConversation generates a fresh unique identifier, registers the
// caller as inviter and sole invitee, persists the conversation, and
// returns it.
func (d *DirectoryService) CreateConversation(ownerID string) (*model.Conversation, error) {
	if ownerID == "" {
		return nil, apperrors.MissingRequired("owner id")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	convs := d.load()
	known := make(map[string]bool, len(convs))
	for _, conv := range convs {
		known[conv.ID] = true
	}

	id := util.NewID()
	for known[id] {
		id = util.NewID()
	}

	conv := model.Conversation{
		ID:         id,
		InviterID:  ownerID,
		InviteeIDs: []string{ownerID},
	}
	convs = append(convs, conv)
	if err := store.WriteConversations(d.store, convs); err != nil {
		return nil, apperrors.Store(err)
	}

	log.Info().Str("conversationId", conv.ID).Str("ownerId", ownerID).Msg("conversation created")
	return &conv, nil
}

// RecordConversation idempotently adds a conversation discovered elsewhere
// (an accepted invite, stored data). An entry with the same id is returned
// unchanged.
func (d *DirectoryService) RecordConversation(conversationID, ownerID string) (*model.Conversation, error) {
	if conversationID == "" {
		return nil, apperrors.MissingRequired("conversation id")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	convs := d.load()
	for i := range convs {
		if convs[i].ID == conversationID {
			return &convs[i], nil
		}
	}

	conv := model.Conversation{
		ID:         conversationID,
		InviterID:  ownerID,
		InviteeIDs: []string{ownerID},
	}
	convs = append(convs, conv)
	if err := store.WriteConversations(d.store, convs); err != nil {
		return nil, apperrors.Store(err)
	}

	log.Info().Str("conversationId", conversationID).Msg("conversation recorded")
	return &conv, nil
}

// UpdateLatestMessage stores msg as the conversation's most recent message.
func (d *DirectoryService) UpdateLatestMessage(conversationID string, msg model.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	convs := d.load()
	for i := range convs {
		if convs[i].ID == conversationID {
			m := msg
			convs[i].LatestMessage = &m
			return store.WriteConversations(d.store, convs)
		}
	}
	return apperrors.NotFound("Conversation")
}

// SetActive switches the current conversation and fires the dependent
// refetch hook.
func (d *DirectoryService) SetActive(conversationID string) {
	d.mu.Lock()
	d.activeID = conversationID
	hook := d.onActive
	d.mu.Unlock()

	log.Debug().Str("conversationId", conversationID).Msg("active conversation changed")
	if hook != nil {
		hook(conversationID)
	}
}

// Active returns the current conversation id, or empty when none is set.
func (d *DirectoryService) Active() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeID
}
