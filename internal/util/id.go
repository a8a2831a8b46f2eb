package util

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a fresh uuid v4 string. Used for client-generated
// conversation ids and fallback message ids when the server omits one.
func NewID() string {
	return uuid.NewString()
}

// RandomAvatarURL returns a unique avatar candidate from the avatar service.
func RandomAvatarURL(baseURL string) string {
	return fmt.Sprintf("%s?u=%s", baseURL, uuid.NewString())
}
