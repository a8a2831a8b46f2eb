package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

// Telemetry reports errors and notable events to Sentry. With an empty DSN
// it degrades to structured logging only, so tests and offline use never
// touch the network.
type Telemetry struct {
	enabled bool
}

func Init(dsn string) (*Telemetry, error) {
	if dsn == "" {
		log.Debug().Msg("telemetry disabled: no DSN configured")
		return &Telemetry{}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return nil, err
	}
	return &Telemetry{enabled: true}, nil
}

// CaptureException reports an error.
func (t *Telemetry) CaptureException(err error) {
	if err == nil {
		return
	}
	log.Error().Err(err).Msg("telemetry exception")
	if t.enabled {
		sentry.CaptureException(err)
	}
}

// CaptureMessage reports an informational event.
func (t *Telemetry) CaptureMessage(msg string) {
	log.Info().Str("event", msg).Msg("telemetry message")
	if t.enabled {
		sentry.CaptureMessage(msg)
	}
}

// Close flushes buffered events before shutdown.
func (t *Telemetry) Close() {
	if t.enabled {
		sentry.Flush(2 * time.Second)
	}
}
