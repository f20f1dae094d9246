package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dataflexhq/dataflex-backend/internal/agents"
	pkgauth "github.com/dataflexhq/dataflex-backend/pkg/auth"
	"github.com/dataflexhq/dataflex-backend/pkg/auth/session"
	"github.com/dataflexhq/dataflex-backend/pkg/config"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeAccounts struct {
	agent     *models.Agent
	verifyErr error
}

func (f *fakeAccounts) Register(ctx context.Context, input agents.RegisterInput) (*models.Agent, error) {
	return f.agent, nil
}

func (f *fakeAccounts) VerifyCredentials(ctx context.Context, phone, password string) (*models.Agent, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.agent, nil
}

type fakeAdmins struct {
	admin *models.AdminUser
}

func (f *fakeAdmins) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if f.admin == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.admin, nil
}

type fakeSessions struct {
	generated string
	revoked   string
	rotateErr error
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	f.generated = accessID
	return "refresh-token", nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if f.rotateErr != nil {
		return "", "", f.rotateErr
	}
	return session.NewAccessID(), "new-refresh-token", nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = accessID
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "dataflex-test",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T, accounts agentAccounts, admins AdminRepository, sessions sessionManager) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(accounts, admins, sessions, testJWTConfig(), logg)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestLoginAgent_IssuesTokenPair(t *testing.T) {
	agent := &models.Agent{ID: uuid.New(), Approved: true}
	sessions := &fakeSessions{}
	svc := newTestService(t, &fakeAccounts{agent: agent}, &fakeAdmins{}, sessions)

	pair, err := svc.LoginAgent(context.Background(), "0551234567", "password123")
	if err != nil {
		t.Fatalf("LoginAgent error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected full token pair")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("minted token should parse: %v", err)
	}
	if claims.ActorID != agent.ID {
		t.Fatalf("expected actor id %s, got %s", agent.ID, claims.ActorID)
	}
	if claims.Role != enums.ActorRoleAgent {
		t.Fatalf("expected agent role, got %s", claims.Role)
	}
	if sessions.generated != claims.ID {
		t.Fatal("refresh session should be keyed by the token jti")
	}
}

func TestLoginAgent_PropagatesVerifyError(t *testing.T) {
	verifyErr := agents.ErrInvalidCredentials
	svc := newTestService(t, &fakeAccounts{verifyErr: verifyErr}, &fakeAdmins{}, &fakeSessions{})

	_, err := svc.LoginAgent(context.Background(), "0551234567", "wrong")
	if !errors.Is(err, verifyErr) {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestLoginAdmin_UnknownEmail(t *testing.T) {
	svc := newTestService(t, &fakeAccounts{}, &fakeAdmins{}, &fakeSessions{})

	_, err := svc.LoginAdmin(context.Background(), "nobody@dataflex.app", "password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefresh_RotatesSession(t *testing.T) {
	actorID := uuid.New()
	jti := session.NewAccessID()
	access, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now(), pkgauth.AccessTokenPayload{
		ActorID: actorID,
		Role:    enums.ActorRoleAgent,
		JTI:     jti,
	})
	if err != nil {
		t.Fatalf("minting fixture token: %v", err)
	}

	svc := newTestService(t, &fakeAccounts{}, &fakeAdmins{}, &fakeSessions{})
	pair, err := svc.Refresh(context.Background(), access, "refresh-token")
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("rotated token should parse: %v", err)
	}
	if claims.ActorID != actorID {
		t.Fatal("rotation must preserve actor identity")
	}
	if claims.ID == jti {
		t.Fatal("rotation must issue a new session id")
	}
}

func TestRefresh_InvalidSession(t *testing.T) {
	access, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now(), pkgauth.AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    enums.ActorRoleAgent,
		JTI:     session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("minting fixture token: %v", err)
	}

	sessions := &fakeSessions{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, &fakeAccounts{}, &fakeAdmins{}, sessions)

	_, err = svc.Refresh(context.Background(), access, "stale")
	if err == nil {
		t.Fatal("expected error for invalid refresh session")
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	sessions := &fakeSessions{}
	svc := newTestService(t, &fakeAccounts{}, &fakeAdmins{}, sessions)

	if err := svc.Logout(context.Background(), "session-id"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if sessions.revoked != "session-id" {
		t.Fatal("expected session revoked")
	}
}
