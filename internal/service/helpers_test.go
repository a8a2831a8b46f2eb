package service

import (
	"context"
	"testing"
	"time"

	"github.com/chatify/chatify-cli/internal/api"
	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/store"
	"github.com/chatify/chatify-cli/internal/telemetry"
)

// fakeAPI implements the per-service API slices with overridable behavior.
type fakeAPI struct {
	listMessages  func(ctx context.Context, token, conversationID string) ([]model.Message, error)
	getUser       func(ctx context.Context, token, id string) (*model.UserSnapshot, error)
	createMessage func(ctx context.Context, token string, params api.CreateMessageParams) (*model.Message, error)
	deleteMessage func(ctx context.Context, token, id string) error
	fetchCSRF     func(ctx context.Context) (string, error)
	login         func(ctx context.Context, username, password, csrfToken string) (string, error)
	register      func(ctx context.Context, params api.RegisterParams) (string, error)
	listUsers     func(ctx context.Context, token string) ([]model.UserSnapshot, error)
	updateUser    func(ctx context.Context, token, userID string, params api.UpdateUserParams) error
	deleteUser    func(ctx context.Context, token, id string) error
	inviteUser    func(ctx context.Context, token, userID, conversationID string) error
}

func (f *fakeAPI) ListMessages(ctx context.Context, token, conversationID string) ([]model.Message, error) {
	return f.listMessages(ctx, token, conversationID)
}

func (f *fakeAPI) GetUser(ctx context.Context, token, id string) (*model.UserSnapshot, error) {
	return f.getUser(ctx, token, id)
}

func (f *fakeAPI) CreateMessage(ctx context.Context, token string, params api.CreateMessageParams) (*model.Message, error) {
	return f.createMessage(ctx, token, params)
}

func (f *fakeAPI) DeleteMessage(ctx context.Context, token, id string) error {
	return f.deleteMessage(ctx, token, id)
}

func (f *fakeAPI) FetchCSRFToken(ctx context.Context) (string, error) {
	return f.fetchCSRF(ctx)
}

func (f *fakeAPI) Login(ctx context.Context, username, password, csrfToken string) (string, error) {
	return f.login(ctx, username, password, csrfToken)
}

func (f *fakeAPI) Register(ctx context.Context, params api.RegisterParams) (string, error) {
	return f.register(ctx, params)
}

func (f *fakeAPI) ListUsers(ctx context.Context, token string) ([]model.UserSnapshot, error) {
	return f.listUsers(ctx, token)
}

func (f *fakeAPI) UpdateUser(ctx context.Context, token, userID string, params api.UpdateUserParams) error {
	return f.updateUser(ctx, token, userID, params)
}

func (f *fakeAPI) DeleteUser(ctx context.Context, token, id string) error {
	return f.deleteUser(ctx, token, id)
}

func (f *fakeAPI) InviteUser(ctx context.Context, token, userID, conversationID string) error {
	return f.inviteUser(ctx, token, userID, conversationID)
}

type testDeps struct {
	store     *store.MemoryStore
	telemetry *telemetry.Telemetry
	session   *SessionService
	directory *DirectoryService
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	tel, err := telemetry.Init("")
	if err != nil {
		t.Fatalf("init telemetry: %v", err)
	}
	s := store.NewMemoryStore()
	return &testDeps{
		store:     s,
		telemetry: tel,
		session:   NewSessionService(s, tel),
		directory: NewDirectoryService(s, tel),
	}
}

func loggedIn(t *testing.T, deps *testDeps) *model.UserSnapshot {
	t.Helper()
	user := &model.UserSnapshot{ID: "u1", Username: "alice", Avatar: "a.png", Email: "alice@example.com"}
	if err := deps.session.Login("token-1", user); err != nil {
		t.Fatalf("login: %v", err)
	}
	return user
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.May, day, hour, 0, 0, 0, time.UTC)
}
