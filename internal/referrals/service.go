package referrals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referral does not exist.
var ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "referral not found")

// serviceCatalog is the catalog slice the referral flow needs.
type serviceCatalog interface {
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// Service manages client referrals.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Referral, error)
	SetStatus(ctx context.Context, id uuid.UUID, next enums.ReferralStatus) (*models.Referral, error)
	ListForAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*Page, error)
	List(ctx context.Context, status *enums.ReferralStatus, params pagination.Params) (*Page, error)
}

// CreateInput captures a new client referral from an agent.
type CreateInput struct {
	AgentID     uuid.UUID
	ServiceID   uuid.UUID
	ClientName  string
	ClientPhone string
}

// Page is one cursor page of referrals.
type Page struct {
	Referrals  []models.Referral `json:"referrals"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type service struct {
	repo    Repository
	catalog serviceCatalog
	logg    *logger.Logger
}

// NewService builds the referrals service.
func NewService(repo Repository, catalog serviceCatalog, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("referrals repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, catalog: catalog, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Referral, error) {
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if strings.TrimSpace(input.ClientName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name required")
	}
	if strings.TrimSpace(input.ClientPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client phone required")
	}

	svc, err := s.catalog.GetService(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service is not accepting referrals")
	}

	unpaid := false
	referral, err := s.repo.Create(ctx, &models.Referral{
		AgentID:        input.AgentID,
		ServiceID:      svc.ID,
		ClientName:     strings.TrimSpace(input.ClientName),
		ClientPhone:    strings.TrimSpace(input.ClientPhone),
		Status:         enums.ReferralStatusPending,
		CommissionPaid: &unpaid,
	})
	if err != nil {
		return nil, fmt.Errorf("creating referral: %w", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"referral_id": referral.ID,
		"agent_id":    referral.AgentID,
		"service_id":  referral.ServiceID,
	}), "referral submitted")
	return referral, nil
}

// SetStatus applies an admin transition. Every transition resets the
// commission flag to unpaid; only the withdrawal paid fan-out ever sets it.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, next enums.ReferralStatus) (*models.Referral, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "referral id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid referral status %q", next))
	}

	referral, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	unpaid := false
	referral.Status = next
	referral.CommissionPaid = &unpaid
	if err := s.repo.SaveStatus(ctx, referral); err != nil {
		return nil, fmt.Errorf("saving referral status: %w", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"referral_id": referral.ID,
		"status":      referral.Status,
	}), "referral status updated")
	return referral, nil
}

func (s *service) ListForAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*Page, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByAgent(ctx, agentID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, err
	}
	return buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) List(ctx context.Context, status *enums.ReferralStatus, params pagination.Params) (*Page, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid referral status %q", *status))
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, status, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, err
	}
	return buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func buildPage(rows []models.Referral, limit int) *Page {
	page := &Page{Referrals: rows}
	if len(rows) > limit {
		page.Referrals = rows[:limit]
		last := page.Referrals[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page
}
