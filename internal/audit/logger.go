package audit

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventLoginSuccess  EventType = "login_success"
	EventLoginFailure  EventType = "login_failure"
	EventLogout        EventType = "logout"
	EventSessionLost   EventType = "session_lost"
	EventAccountCreate EventType = "account_create"
	EventAccountDelete EventType = "account_delete"
	EventMessageDelete EventType = "message_delete"
	EventInviteAccept  EventType = "invite_accept"
	EventInviteSend    EventType = "invite_send"
)

type Event struct {
	Type           EventType
	UserID         string
	Username       string
	ConversationID string
	Details        map[string]interface{}
}

func Log(event Event) {
	logger := log.With().
		Str("audit", "session").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.UserID != "" {
		logger = logger.With().Str("user_id", event.UserID).Logger()
	}
	if event.Username != "" {
		logger = logger.With().Str("username", event.Username).Logger()
	}
	if event.ConversationID != "" {
		logger = logger.With().Str("conversation_id", event.ConversationID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
