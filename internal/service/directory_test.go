package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/store"
	"github.com/chatify/chatify-cli/internal/util"
)

func TestCreateConversation(t *testing.T) {
	deps := newTestDeps(t)

	conv, err := deps.directory.CreateConversation("u1")
	require.NoError(t, err)
	assert.True(t, util.IsValidUUID(conv.ID))
	assert.Equal(t, "u1", conv.InviterID)
	assert.Equal(t, []string{"u1"}, conv.InviteeIDs)

	// Persisted, and a second create gets a distinct id.
	other, err := deps.directory.CreateConversation("u1")
	require.NoError(t, err)
	assert.NotEqual(t, conv.ID, other.ID)

	convs := deps.directory.ListConversations("u1")
	require.Len(t, convs, 2)
	assert.Equal(t, conv.ID, convs[0].ID)
	assert.Equal(t, other.ID, convs[1].ID)
}

func TestCreateConversationRequiresOwner(t *testing.T) {
	deps := newTestDeps(t)
	_, err := deps.directory.CreateConversation("")
	assert.Error(t, err)
}

func TestRecordConversationIdempotent(t *testing.T) {
	deps := newTestDeps(t)

	first, err := deps.directory.RecordConversation("c1", "u1")
	require.NoError(t, err)

	second, err := deps.directory.RecordConversation("c1", "u2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "u1", second.InviterID, "existing entry returned unchanged")

	assert.Len(t, deps.directory.ListConversations("u1"), 1)
}

func TestListConversationsFiltersByMembership(t *testing.T) {
	deps := newTestDeps(t)

	_, err := deps.directory.CreateConversation("u1")
	require.NoError(t, err)
	_, err = deps.directory.RecordConversation("c-other", "u2")
	require.NoError(t, err)

	assert.Len(t, deps.directory.ListConversations("u1"), 1)
	assert.Len(t, deps.directory.ListConversations("u2"), 1)
	assert.Empty(t, deps.directory.ListConversations("u3"))
}

func TestListConversationsCorruptStateDegrades(t *testing.T) {
	deps := newTestDeps(t)
	require.NoError(t, deps.store.Set(store.KeySavedConversations, "{broken"))

	assert.Empty(t, deps.directory.ListConversations("u1"))
}

func TestUpdateLatestMessage(t *testing.T) {
	deps := newTestDeps(t)

	conv, err := deps.directory.CreateConversation("u1")
	require.NoError(t, err)

	msg := model.Message{ID: "m1", ConversationID: conv.ID, AuthorID: "u1", Text: "hi", CreatedAt: at(1, 10)}
	require.NoError(t, deps.directory.UpdateLatestMessage(conv.ID, msg))

	convs := deps.directory.ListConversations("u1")
	require.Len(t, convs, 1)
	require.NotNil(t, convs[0].LatestMessage)
	assert.Equal(t, "m1", convs[0].LatestMessage.ID)

	assert.Error(t, deps.directory.UpdateLatestMessage("missing", msg))
}

func TestSetActiveFiresHook(t *testing.T) {
	deps := newTestDeps(t)

	var triggered []string
	deps.directory.SetActivationHook(func(id string) { triggered = append(triggered, id) })

	deps.directory.SetActive("c1")
	deps.directory.SetActive("c2")

	assert.Equal(t, "c2", deps.directory.Active())
	assert.Equal(t, []string{"c1", "c2"}, triggered)
}
