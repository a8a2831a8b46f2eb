package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/chatify/chatify-cli/internal/api"
	"github.com/chatify/chatify-cli/internal/audit"
	apperrors "github.com/chatify/chatify-cli/internal/errors"
	"github.com/chatify/chatify-cli/internal/model"
	"github.com/chatify/chatify-cli/internal/util"
)

// AuthAPI is the slice of the remote client the auth flows need.
type AuthAPI interface {
	FetchCSRFToken(ctx context.Context) (string, error)
	Login(ctx context.Context, username, password, csrfToken string) (string, error)
	Register(ctx context.Context, params api.RegisterParams) (string, error)
	GetUser(ctx context.Context, token, id string) (*model.UserSnapshot, error)
}

// AuthService runs the login and registration flows against the remote API
// and hands the resulting identity to the session cache.
type AuthService struct {
	api     AuthAPI
	session *SessionService
}

func NewAuthService(a AuthAPI, session *SessionService) *AuthService {
	return &AuthService{api: a, session: session}
}

// Login exchanges credentials for a bearer token, decodes the token's id
// claim to locate the profile, fetches the snapshot, and persists both.
func (a *AuthService) Login(ctx context.Context, username, password string) (*model.UserSnapshot, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.MissingRequired("username")
	}
	if password == "" {
		return nil, apperrors.MissingRequired("password")
	}

	csrfToken, err := a.api.FetchCSRFToken(ctx)
	if err != nil {
		return nil, err
	}

	token, err := a.api.Login(ctx, username, password, csrfToken)
	if err != nil {
		audit.Log(audit.Event{Type: audit.EventLoginFailure, Username: username})
		return nil, err
	}

	userID, err := util.UserIDFromToken(token)
	if err != nil {
		return nil, apperrors.InvalidToken("Issued token carries no user id").WithCause(err)
	}

	user, err := a.api.GetUser(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	if err := a.session.Login(token, user); err != nil {
		return nil, apperrors.Store(err)
	}

	log.Info().Str("userId", user.ID).Str("username", user.Username).Msg("logged in")
	return user, nil
}

// RegisterParams are the trimmed inputs of account creation. Avatar is
// optional; the caller picks one of the generated candidates or leaves it
// empty.
type RegisterParams struct {
	Username string
	Password string
	Email    string
	Avatar   string
}

func (p *RegisterParams) validate() error {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	if p.Username == "" {
		return apperrors.MissingRequired("username")
	}
	if p.Password == "" {
		return apperrors.MissingRequired("password")
	}
	if p.Email == "" {
		return apperrors.MissingRequired("email")
	}
	if !util.IsValidEmail(p.Email) {
		return apperrors.InvalidInput("email", "not a valid address")
	}
	return nil
}

// Register creates the account and, when the API issues a token for it,
// completes the login flow in the same call. When no token is issued the
// caller logs in separately.
func (a *AuthService) Register(ctx context.Context, params RegisterParams) (*model.UserSnapshot, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	csrfToken, err := a.api.FetchCSRFToken(ctx)
	if err != nil {
		return nil, err
	}

	token, err := a.api.Register(ctx, api.RegisterParams{
		Username:  params.Username,
		Password:  params.Password,
		Email:     params.Email,
		Avatar:    params.Avatar,
		CSRFToken: csrfToken,
	})
	if err != nil {
		return nil, err
	}

	audit.Log(audit.Event{Type: audit.EventAccountCreate, Username: params.Username})
	if token == "" {
		return nil, nil
	}

	userID, err := util.UserIDFromToken(token)
	if err != nil {
		return nil, apperrors.InvalidToken("Issued token carries no user id").WithCause(err)
	}
	user, err := a.api.GetUser(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if err := a.session.Login(token, user); err != nil {
		return nil, apperrors.Store(err)
	}
	return user, nil
}

// AvatarCandidates returns n unique generated avatar urls for the
// registration picker.
func AvatarCandidates(baseURL string, n int) []string {
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		urls = append(urls, util.RandomAvatarURL(baseURL))
	}
	return urls
}
