package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dataflexhq/dataflex-backend/pkg/config"
	"github.com/dataflexhq/dataflex-backend/pkg/db"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/dataflexhq/dataflex-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors for the agents surface.
var (
	ErrNotFound           = pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
	ErrPhoneTaken         = pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid phone or password")
	ErrAccountBanned      = pkgerrors.New(pkgerrors.CodeForbidden, "account is banned")
	ErrAccountNotApproved = pkgerrors.New(pkgerrors.CodeForbidden, "account is awaiting approval")
)

// Service manages agent accounts and credential checks.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Agent, error)
	VerifyCredentials(ctx context.Context, phone, password string) (*models.Agent, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	List(ctx context.Context, params pagination.Params) (*Page, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegisterInput captures a new agent signup.
type RegisterInput struct {
	FullName   string
	Phone      string
	Password   string
	MomoNumber string
	Region     *string
}

// Page is one cursor page of agents.
type Page struct {
	Agents     []models.Agent `json:"agents"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type service struct {
	repo     Repository
	password config.PasswordConfig
	logg     *logger.Logger
}

// NewService builds the agents service.
func NewService(repo Repository, password config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, password: password, logg: logg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Agent, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.MomoNumber = strings.TrimSpace(input.MomoNumber)
	if input.FullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	if input.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if input.MomoNumber == "" {
		input.MomoNumber = input.Phone
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	agent, err := s.repo.Create(ctx, &models.Agent{
		FullName:     input.FullName,
		Phone:        input.Phone,
		PasswordHash: hash,
		MomoNumber:   input.MomoNumber,
		Region:       input.Region,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	s.logg.Info(s.logg.WithAgentID(ctx, agent.ID.String()), "agent registered")
	return agent, nil
}

// VerifyCredentials authenticates a login attempt. Banned and unapproved
// accounts fail after the password check so the error does not reveal whether
// the password was right.
func (s *service) VerifyCredentials(ctx context.Context, phone, password string) (*models.Agent, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	agent, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(password, agent.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if agent.Banned {
		return nil, ErrAccountBanned
	}
	if !agent.Approved {
		return nil, ErrAccountNotApproved
	}
	return agent, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	agent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return agent, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &Page{Agents: rows}
	if len(rows) > limit {
		page.Agents = rows[:limit]
		last := page.Agents[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetApproved(ctx, id, approved)
}

func (s *service) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetBanned(ctx, id, banned)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
