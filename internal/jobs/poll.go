package jobs

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ActiveConversation reports which conversation the client is looking at.
type ActiveConversation interface {
	Active() string
}

// Triggerer schedules a debounced timeline refresh.
type Triggerer interface {
	Trigger(conversationID string)
}

// PollJob periodically triggers a refresh of the active conversation so
// messages from other participants show up without user action. The API has
// no push channel, so polling is the only way to observe remote sends.
type PollJob struct {
	directory ActiveConversation
	timeline  Triggerer
	interval  time.Duration
	done      chan struct{}
}

func NewPollJob(directory ActiveConversation, timeline Triggerer, interval time.Duration) *PollJob {
	return &PollJob{
		directory: directory,
		timeline:  timeline,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *PollJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("poll job started")
}

func (j *PollJob) Stop() {
	close(j.done)
	log.Info().Msg("poll job stopped")
}

func (j *PollJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.poll()
		}
	}
}

func (j *PollJob) poll() {
	conversationID := j.directory.Active()
	if conversationID == "" {
		return
	}
	j.timeline.Trigger(conversationID)
}
