package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dataflexhq/dataflex-backend/internal/agents"
	pkgauth "github.com/dataflexhq/dataflex-backend/pkg/auth"
	"github.com/dataflexhq/dataflex-backend/pkg/auth/session"
	"github.com/dataflexhq/dataflex-backend/pkg/config"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidCredentials covers both unknown identities and bad passwords.
var ErrInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")

// agentAccounts is the slice of the agents service the auth flow needs.
type agentAccounts interface {
	Register(ctx context.Context, input agents.RegisterInput) (*models.Agent, error)
	VerifyCredentials(ctx context.Context, phone, password string) (*models.Agent, error)
}

// sessionManager abstracts the Redis-backed refresh session store.
type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service issues and rotates token pairs for agents and admins.
type Service interface {
	RegisterAgent(ctx context.Context, input agents.RegisterInput) (*models.Agent, error)
	LoginAgent(ctx context.Context, phone, password string) (*TokenPair, error)
	LoginAdmin(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
}

// TokenPair is the credential set returned to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type service struct {
	accounts agentAccounts
	admins   AdminRepository
	sessions sessionManager
	jwt      config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(accounts agentAccounts, admins AdminRepository, sessions sessionManager, jwt config.JWTConfig, logg *logger.Logger) (Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("agent accounts required")
	}
	if admins == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		accounts: accounts,
		admins:   admins,
		sessions: sessions,
		jwt:      jwt,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) RegisterAgent(ctx context.Context, input agents.RegisterInput) (*models.Agent, error) {
	return s.accounts.Register(ctx, input)
}

func (s *service) LoginAgent(ctx context.Context, phone, password string) (*TokenPair, error) {
	agent, err := s.accounts.VerifyCredentials(ctx, phone, password)
	if err != nil {
		return nil, err
	}
	pair, err := s.issue(ctx, agent.ID, enums.ActorRoleAgent)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithAgentID(ctx, agent.ID.String()), "agent logged in")
	return pair, nil
}

func (s *service) LoginAdmin(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, admin.ID, enums.ActorRoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"admin_id": admin.ID}), "admin logged in")
	return pair, nil
}

// Refresh rotates the refresh session and mints a fresh access token carrying
// the same actor identity.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	// An expired access token is still a valid rotation key; only the
	// signature and issuer must hold.
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token missing session id")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh session invalid or expired")
		}
		return nil, err
	}

	access, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		ActorID: claims.ActorID,
		Role:    claims.Role,
		JTI:     newAccessID,
	})
	if err != nil {
		return nil, fmt.Errorf("minting access token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	return s.sessions.Revoke(ctx, accessID)
}

func (s *service) issue(ctx context.Context, actorID uuid.UUID, role enums.ActorRole) (*TokenPair, error) {
	accessID := session.NewAccessID()
	access, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		ActorID: actorID,
		Role:    role,
		JTI:     accessID,
	})
	if err != nil {
		return nil, fmt.Errorf("minting access token: %w", err)
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, fmt.Errorf("creating refresh session: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
