package jobs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockDirectory struct {
	mu     sync.Mutex
	active string
}

func (m *mockDirectory) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *mockDirectory) setActive(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = id
}

type mockTimeline struct {
	mu       sync.Mutex
	triggers []string
}

func (m *mockTimeline) Trigger(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, conversationID)
}

func (m *mockTimeline) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.triggers)
}

func TestPollJob(t *testing.T) {
	t.Run("creates job with correct interval", func(t *testing.T) {
		job := NewPollJob(&mockDirectory{}, &mockTimeline{}, 5*time.Second)

		assert.NotNil(t, job)
		assert.Equal(t, 5*time.Second, job.interval)
	})

	t.Run("triggers the active conversation", func(t *testing.T) {
		directory := &mockDirectory{}
		directory.setActive("c1")
		timeline := &mockTimeline{}

		job := NewPollJob(directory, timeline, 10*time.Millisecond)
		job.Start()
		time.Sleep(60 * time.Millisecond)
		job.Stop()

		assert.Greater(t, timeline.count(), 0)
	})

	t.Run("no active conversation means no trigger", func(t *testing.T) {
		timeline := &mockTimeline{}

		job := NewPollJob(&mockDirectory{}, timeline, 10*time.Millisecond)
		job.Start()
		time.Sleep(50 * time.Millisecond)
		job.Stop()

		assert.Zero(t, timeline.count())
	})

	t.Run("starts and stops without panic", func(t *testing.T) {
		job := NewPollJob(&mockDirectory{}, &mockTimeline{}, 100*time.Millisecond)
		job.Start()
		time.Sleep(20 * time.Millisecond)
		job.Stop()
	})
}
