package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserSnapshot is an immutable profile snapshot as returned by the remote
// API. It is refreshed wholesale on profile edits, never patched in place.
type UserSnapshot struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	Email       string `json:"email,omitempty"`
	LinkedInID  string `json:"linkedInId,omitempty"`
	TwitterID   string `json:"twitterId,omitempty"`
	FacebookID  string `json:"facebookId,omitempty"`
	InstagramID string `json:"instagramId,omitempty"`
}

// SocialHandles returns the user's non-empty social handles keyed by platform.
func (u *UserSnapshot) SocialHandles() map[string]string {
	handles := make(map[string]string)
	for platform, handle := range map[string]string{
		"linkedin":  u.LinkedInID,
		"twitter":   u.TwitterID,
		"facebook":  u.FacebookID,
		"instagram": u.InstagramID,
	} {
		if handle != "" {
			handles[platform] = handle
		}
	}
	return handles
}

// FlexibleID is an opaque identifier that the remote API serializes
// inconsistently as either a JSON string or a JSON number.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string { return string(f) }

// MarshalJSON emits numeric ids as numbers so re-serialized payloads match
// what the API produced.
func (f FlexibleID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(f), 10, 64); err == nil {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

// rawUser tolerates both key spellings the API uses for the identifier:
// GET /users returns "userId" while GET /users/{id} returns "id".
type rawUser struct {
	ID          FlexibleID `json:"id"`
	UserID      FlexibleID `json:"userId"`
	Username    string     `json:"username"`
	Avatar      string     `json:"avatar"`
	Email       string     `json:"email"`
	LinkedInID  string     `json:"linkedInId"`
	TwitterID   string     `json:"twitterId"`
	FacebookID  string     `json:"facebookId"`
	InstagramID string     `json:"instagramId"`
}

func (r rawUser) snapshot() *UserSnapshot {
	id := r.ID.String()
	if id == "" {
		id = r.UserID.String()
	}
	return &UserSnapshot{
		ID:          id,
		Username:    r.Username,
		Avatar:      r.Avatar,
		Email:       r.Email,
		LinkedInID:  r.LinkedInID,
		TwitterID:   r.TwitterID,
		FacebookID:  r.FacebookID,
		InstagramID: r.InstagramID,
	}
}

// NormalizeUser parses a stored or remote user value into its canonical
// shape. The API and the persisted "user" key produce either a bare object
// or a one-element array; both are accepted here so the ambiguity stays out
// of every other component.
func NormalizeUser(raw []byte) (*UserSnapshot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty user value")
	}

	if raw[0] == '[' {
		var list []rawUser
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("parse user list: %w", err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("empty user list")
		}
		user := list[0].snapshot()
		if user.ID == "" && user.Username == "" {
			return nil, fmt.Errorf("user value has no id or username")
		}
		return user, nil
	}

	var single rawUser
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("parse user value: %w", err)
	}
	user := single.snapshot()
	if user.ID == "" && user.Username == "" {
		return nil, fmt.Errorf("user value has no id or username")
	}
	return user, nil
}
