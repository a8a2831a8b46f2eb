package model

import (
	"time"
)

// Message is a single chat message. The text is sanitized before it is
// transmitted or displayed; CreatedAt on locally sent messages is the
// client-side submission time and is never replaced by a server timestamp.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	AuthorID       string    `json:"userId"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AuthoredBy reports whether the message was written by the given user.
// All authorship-dependent behavior (own-message styling, deletion rights)
// goes through this predicate.
func (m *Message) AuthoredBy(userID string) bool {
	return userID != "" && m.AuthorID == userID
}

// TimelineEntry is a message joined with its resolved author and the
// display-bucket marker derived from CreatedAt.
type TimelineEntry struct {
	Message Message       `json:"message"`
	Author  *UserSnapshot `json:"author"`
	// NewBucket is true when this entry's CreatedAt falls on a different
	// calendar day than the preceding entry's.
	NewBucket bool `json:"newBucket"`
}

// UnknownUser is the placeholder author used when a per-author lookup fails.
func UnknownUser(id string) *UserSnapshot {
	return &UserSnapshot{
		ID:       id,
		Username: "Unknown",
		Avatar:   "default-avatar.png",
	}
}
