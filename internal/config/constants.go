package config

import "time"

// Local state database settings
const (
	StateDirPerm      = 0o700
	StateBusyTimeout  = 5 * time.Second
	StateMaxOpenConns = 1
)

// Remote API timeouts
const (
	AuthorLookupTimeout = 10 * time.Second
	SendTimeout         = 15 * time.Second
)

// Number of avatar candidates offered during registration
const AvatarCandidates = 8
