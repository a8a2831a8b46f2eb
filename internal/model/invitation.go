package model

// Invitation is a pending invite discovered in the stored user's invite
// list. The inbox keeps at most one invitation per sender.
type Invitation struct {
	ConversationID string `json:"conversationId"`
	FromUsername   string `json:"username"`
}
