package util

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDFromToken extracts the "id" claim from a bearer token without
// verifying the signature. The client never validates tokens; it only needs
// the user id the API embedded so it can fetch the profile snapshot.
func UserIDFromToken(token string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	switch id := claims["id"].(type) {
	case string:
		if id == "" {
			return "", fmt.Errorf("token has empty id claim")
		}
		return id, nil
	case float64:
		return fmt.Sprintf("%.0f", id), nil
	case nil:
		return "", fmt.Errorf("token has no id claim")
	default:
		return "", fmt.Errorf("unexpected id claim type %T", id)
	}
}
