package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/chatify/chatify-cli/internal/errors"
	"github.com/chatify/chatify-cli/internal/model"
)

// TimelineAPI is the slice of the remote client the fetcher needs.
type TimelineAPI interface {
	ListMessages(ctx context.Context, token, conversationID string) ([]model.Message, error)
	GetUser(ctx context.Context, token, userID string) (*model.UserSnapshot, error)
}

// TimelineService fetches a conversation's messages, joins the authors on,
// and holds the last successfully published timeline. Fetches triggered in
// a burst are debounced; a superseded fetch never publishes.
type TimelineService struct {
	api           TimelineAPI
	session       *SessionService
	debounce      time.Duration
	lookupTimeout time.Duration

	mu      sync.Mutex
	entries []model.TimelineEntry
	timer   *time.Timer
	gen     uint64
	closed  bool
}

func NewTimelineService(api TimelineAPI, session *SessionService, debounce, lookupTimeout time.Duration) *TimelineService {
	return &TimelineService{
		api:           api,
		session:       session,
		debounce:      debounce,
		lookupTimeout: lookupTimeout,
	}
}

// Fetch loads the conversation's messages and resolves every distinct
// author concurrently before publishing the joined timeline. Message order
// is exactly what the API returned. On failure the previously published
// timeline is retained; a 401/403 additionally invalidates the session.
func (t *TimelineService) Fetch(ctx context.Context, conversationID, token string) ([]model.TimelineEntry, error) {
	entries, err := t.fetchJoined(ctx, conversationID, token)
	if err != nil {
		return t.Entries(), err
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()

	log.Debug().Str("conversationId", conversationID).Int("count", len(entries)).Msg("timeline published")
	return entries, nil
}

// fetchJoined performs the fetch and author join without publishing.
func (t *TimelineService) fetchJoined(ctx context.Context, conversationID, token string) ([]model.TimelineEntry, error) {
	messages, err := t.api.ListMessages(ctx, token, conversationID)
	if err != nil {
		return nil, t.classifyFetchError(err)
	}

	authors := t.resolveAuthors(ctx, token, messages)

	entries := make([]model.TimelineEntry, 0, len(messages))
	for i, msg := range messages {
		entries = append(entries, model.TimelineEntry{
			Message:   msg,
			Author:    authors[msg.AuthorID],
			NewBucket: i == 0 || !sameCalendarDay(messages[i-1].CreatedAt, msg.CreatedAt),
		})
	}
	return entries, nil
}

// resolveAuthors looks every distinct author id up concurrently and waits
// for all lookups before returning. A failed lookup yields the unknown-user
// placeholder rather than failing the fetch.
func (t *TimelineService) resolveAuthors(ctx context.Context, token string, messages []model.Message) map[string]*model.UserSnapshot {
	ids := make([]string, 0, len(messages))
	seen := make(map[string]bool, len(messages))
	for _, msg := range messages {
		if msg.AuthorID == "" || seen[msg.AuthorID] {
			continue
		}
		seen[msg.AuthorID] = true
		ids = append(ids, msg.AuthorID)
	}

	lookupCtx := ctx
	if t.lookupTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, t.lookupTimeout)
		defer cancel()
	}

	var mu sync.Mutex
	authors := make(map[string]*model.UserSnapshot, len(ids))

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			user, err := t.api.GetUser(lookupCtx, token, id)
			if err != nil {
				log.Warn().Err(err).Str("userId", id).Msg("author lookup failed")
				user = model.UnknownUser(id)
			}
			mu.Lock()
			authors[id] = user
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return authors
}

// classifyFetchError handles the session side effect of an auth rejection.
// Rate limits and other failures pass through untouched; the caller keeps
// its last-known-good timeline either way.
func (t *TimelineService) classifyFetchError(err error) error {
	if apperrors.IsAuthLost(err) {
		t.session.Invalidate()
	}
	return err
}

// Trigger schedules a debounced fetch of the conversation. Calls inside
// the quiescence window supersede each other; only the fetch belonging to
// the latest trigger publishes.
func (t *TimelineService) Trigger(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}

	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.debounce, func() {
		t.runGeneration(gen, conversationID)
	})
}

func (t *TimelineService) runGeneration(gen uint64, conversationID string) {
	t.mu.Lock()
	current := !t.closed && gen == t.gen
	t.mu.Unlock()
	if !current {
		return
	}

	token := t.session.Token()
	if token == "" {
		return
	}

	entries, err := t.fetchJoined(context.Background(), conversationID, token)
	if err != nil {
		log.Warn().Err(err).Str("conversationId", conversationID).Msg("debounced fetch failed")
		return
	}

	// Publish only if no newer trigger fired while this fetch was in flight.
	t.mu.Lock()
	if gen == t.gen && !t.closed {
		t.entries = entries
	}
	t.mu.Unlock()
}

// Close cancels any pending debounce timer and prevents further triggers.
func (t *TimelineService) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Entries returns the last published timeline.
func (t *TimelineService) Entries() []model.TimelineEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == 0 {
		return nil
	}
	out := make([]model.TimelineEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Append adds a message (typically an optimistic send) to the end of the
// published timeline, computing its display bucket from the current tail.
func (t *TimelineService) Append(msg model.Message, author *model.UserSnapshot) model.TimelineEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := model.TimelineEntry{Message: msg, Author: author, NewBucket: true}
	if n := len(t.entries); n > 0 {
		entry.NewBucket = !sameCalendarDay(t.entries[n-1].Message.CreatedAt, msg.CreatedAt)
	}
	t.entries = append(t.entries, entry)
	return entry
}

// Remove drops the message with the given id from the published timeline.
func (t *TimelineService) Remove(messageID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].Message.ID == messageID {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// sameCalendarDay compares the calendar date of two timestamps in the
// local zone. Display buckets follow the message timestamps, never the
// wall clock.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
