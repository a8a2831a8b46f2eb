package model

// Conversation associates an inviter, invitees, and the most recent message.
// IDs are client-generated (uuid) for locally started conversations and
// server-assigned for conversations discovered through invites.
type Conversation struct {
	ID            string   `json:"id"`
	InviterID     string   `json:"inviterId"`
	InviteeIDs    []string `json:"inviteeIds"`
	LatestMessage *Message `json:"latestMessage,omitempty"`
}

// Involves reports whether the user participates in the conversation as
// inviter or invitee.
func (c *Conversation) Involves(userID string) bool {
	if userID == "" {
		return false
	}
	if c.InviterID == userID {
		return true
	}
	for _, id := range c.InviteeIDs {
		if id == userID {
			return true
		}
	}
	return false
}
