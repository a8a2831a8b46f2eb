package model

// Session pairs the bearer token with the profile snapshot it was issued
// for. A zero Token means logged out.
type Session struct {
	Token string        `json:"token"`
	User  *UserSnapshot `json:"user"`
}

// Active reports whether the session carries a usable token.
func (s *Session) Active() bool {
	return s != nil && s.Token != ""
}
