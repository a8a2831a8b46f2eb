package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatify/chatify-cli/internal/model"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	t.Run("get missing key", func(t *testing.T) {
		_, ok, err := s.Get("nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(KeyToken, "t1"))
		value, ok, err := s.Get(KeyToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "t1", value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Set("k", "v"))
		require.NoError(t, s.Delete("k"))
		_, ok, err := s.Get("k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		require.NoError(t, s.Set("a", "1"))
		require.NoError(t, s.Set("b", "2"))
		require.NoError(t, s.Clear())
		_, ok, _ := s.Get("a")
		assert.False(t, ok)
		_, ok, _ = s.Get("b")
		assert.False(t, ok)
	})
}

func TestConversationHelpers(t *testing.T) {
	s := NewMemoryStore()

	t.Run("missing key is empty list", func(t *testing.T) {
		convs, err := ReadConversations(s)
		require.NoError(t, err)
		assert.Empty(t, convs)
	})

	t.Run("round trip", func(t *testing.T) {
		in := []model.Conversation{
			{ID: "c1", InviterID: "u1", InviteeIDs: []string{"u1"}},
			{ID: "c2", InviterID: "u2", InviteeIDs: []string{"u2", "u1"}},
		}
		require.NoError(t, WriteConversations(s, in))
		out, err := ReadConversations(s)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("corrupt JSON surfaces error", func(t *testing.T) {
		require.NoError(t, s.Set(KeySavedConversations, "{not json"))
		_, err := ReadConversations(s)
		assert.Error(t, err)
	})
}

func TestInviteHelpers(t *testing.T) {
	s := NewMemoryStore()

	in := []model.Invitation{{ConversationID: "c1", FromUsername: "bob"}}
	require.NoError(t, WriteInvites(s, in))
	out, err := ReadInvites(s)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, s.Set(KeyInvites, "42"))
	_, err = ReadInvites(s)
	assert.Error(t, err)
}

func TestUserHelpers(t *testing.T) {
	s := NewMemoryStore()

	t.Run("missing user is nil", func(t *testing.T) {
		user, err := ReadUser(s)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("canonical round trip", func(t *testing.T) {
		in := &model.UserSnapshot{ID: "u1", Username: "alice", Avatar: "a.png"}
		require.NoError(t, WriteUser(s, in))
		out, err := ReadUser(s)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("accepts legacy array shape", func(t *testing.T) {
		require.NoError(t, s.Set(KeyUser, `[{"id":"u9","username":"zoe","avatar":"z.png"}]`))
		out, err := ReadUser(s)
		require.NoError(t, err)
		assert.Equal(t, "u9", out.ID)
		assert.Equal(t, "zoe", out.Username)
	})

	t.Run("malformed user surfaces error", func(t *testing.T) {
		require.NoError(t, s.Set(KeyUser, "undefined"))
		_, err := ReadUser(s)
		assert.Error(t, err)
	})
}

func TestWriteEmptyCollections(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, WriteConversations(s, nil))
	raw, ok, err := s.Get(KeySavedConversations)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)

	require.NoError(t, WriteInvites(s, nil))
	raw, ok, err = s.Get(KeyInvites)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}
