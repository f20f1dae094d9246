package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dataflexhq/dataflex-backend/internal/commissions"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	dbtypes "github.com/dataflexhq/dataflex-backend/pkg/db/types"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/metrics"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sentinel errors the controllers translate into coded API responses.
var (
	ErrBelowMinimum        = pkgerrors.New(pkgerrors.CodeValidation, "amount is below the minimum withdrawal")
	ErrExceedsAvailable    = pkgerrors.New(pkgerrors.CodeInsufficientFunds, "amount exceeds available commission")
	ErrMonthlyLimitReached = pkgerrors.New(pkgerrors.CodeLimitReached, "monthly withdrawal limit reached")
	ErrInvalidTransition   = pkgerrors.New(pkgerrors.CodeStateConflict, "withdrawal status transition not allowed")
	ErrNotFound            = pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal not found")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// commissionTracker is the slice of the accrual tracker the state machine needs.
type commissionTracker interface {
	AvailableWithTx(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (*commissions.Summary, error)
	MarkItems(ctx context.Context, tx *gorm.DB, items dbtypes.CommissionItemList, paid bool) error
}

// Settings carries the payout policy knobs from configuration.
type Settings struct {
	MinAmount   decimal.Decimal
	MaxPerMonth int
}

// Service exposes the withdrawal request builder and its status state machine.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Withdrawal, error)
	SetStatus(ctx context.Context, id uuid.UUID, next enums.WithdrawalStatus) (*models.Withdrawal, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	GetForAgent(ctx context.Context, agentID, id uuid.UUID) (*models.Withdrawal, error)
	ListForAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*Page, error)
	List(ctx context.Context, status *enums.WithdrawalStatus, params pagination.Params) (*Page, error)
}

// CreateInput captures a new payout request from an agent.
type CreateInput struct {
	AgentID    uuid.UUID
	Amount     decimal.Decimal
	MomoNumber string
}

// Page is one cursor page of withdrawals.
type Page struct {
	Withdrawals []models.Withdrawal `json:"withdrawals"`
	NextCursor  string              `json:"next_cursor,omitempty"`
}

// allowedTransitions is the full settlement state machine. Every backward edge
// lands on requested, which also reverts the commission flags.
var allowedTransitions = map[enums.WithdrawalStatus][]enums.WithdrawalStatus{
	enums.WithdrawalStatusRequested:  {enums.WithdrawalStatusProcessing, enums.WithdrawalStatusRejected},
	enums.WithdrawalStatusProcessing: {enums.WithdrawalStatusPaid, enums.WithdrawalStatusRejected, enums.WithdrawalStatusRequested},
	enums.WithdrawalStatusPaid:       {enums.WithdrawalStatusRequested},
	enums.WithdrawalStatusRejected:   {enums.WithdrawalStatusRequested},
}

func transitionAllowed(from, to enums.WithdrawalStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type service struct {
	repo     Repository
	tracker  commissionTracker
	tx       txRunner
	settings Settings
	metrics  *metrics.SettlementMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the withdrawal service with the required dependencies.
func NewService(repo Repository, tracker commissionTracker, tx txRunner, settings Settings, m *metrics.SettlementMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("withdrawals repository required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("commission tracker required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if settings.MaxPerMonth <= 0 {
		return nil, fmt.Errorf("max withdrawals per month must be positive")
	}
	return &service{
		repo:     repo,
		tracker:  tracker,
		tx:       tx,
		settings: settings,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Create snapshots the agent's unpaid commission items and opens a withdrawal
// in requested state. The transaction first takes the agent row's write lock,
// so concurrent requests for one agent serialize and the monthly cap holds
// under races. Open withdrawals do not reduce availability, so a later request
// can snapshot the same still-unpaid items; only the paid transition settles
// them, and payout review decides which request gets paid.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Withdrawal, error) {
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if input.MomoNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile money number required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Amount.LessThan(s.settings.MinAmount) {
		return nil, ErrBelowMinimum
	}

	from, to := monthWindow(s.now().UTC())

	var withdrawal *models.Withdrawal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.LockAgent(ctx, input.AgentID)
		if err != nil {
			return fmt.Errorf("locking agent row: %w", err)
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}

		count, err := repo.CountInWindow(ctx, input.AgentID, from, to)
		if err != nil {
			return fmt.Errorf("counting monthly withdrawals: %w", err)
		}
		if count >= int64(s.settings.MaxPerMonth) {
			return ErrMonthlyLimitReached
		}

		snapshot, err := s.tracker.AvailableWithTx(ctx, tx, input.AgentID)
		if err != nil {
			return fmt.Errorf("building accrual snapshot: %w", err)
		}
		if input.Amount.GreaterThan(snapshot.Total) {
			return ErrExceedsAvailable
		}

		// The snapshot always carries every unpaid item, even when the
		// requested amount is only part of the total. A later paid
		// transition settles all of them.
		withdrawal, err = repo.Create(ctx, &models.Withdrawal{
			AgentID:         input.AgentID,
			Amount:          input.Amount,
			MomoNumber:      input.MomoNumber,
			Status:          enums.WithdrawalStatusRequested,
			CommissionItems: snapshot.Items,
		})
		if err != nil {
			return fmt.Errorf("creating withdrawal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveWithdrawalAmount(string(enums.WithdrawalStatusRequested), withdrawal.Amount.InexactFloat64())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"withdrawal_id": withdrawal.ID,
		"agent_id":      withdrawal.AgentID,
		"amount":        withdrawal.Amount,
		"items":         len(withdrawal.CommissionItems),
	}), "withdrawal requested")
	return withdrawal, nil
}

// SetStatus applies one admin transition. Paid fans out to every snapshotted
// item; a reset back to requested clears all lifecycle timestamps and reverts
// the flags, in the same transaction as the status write.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, next enums.WithdrawalStatus) (*models.Withdrawal, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid withdrawal status %q", next))
	}

	var withdrawal *models.Withdrawal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading withdrawal: %w", err)
		}
		if !transitionAllowed(current.Status, next) {
			return ErrInvalidTransition
		}

		now := s.now().UTC()
		switch next {
		case enums.WithdrawalStatusProcessing:
			current.ProcessingAt = &now
		case enums.WithdrawalStatusPaid:
			current.PaidAt = &now
			if err := s.tracker.MarkItems(ctx, tx, current.CommissionItems, true); err != nil {
				return fmt.Errorf("settling commission items: %w", err)
			}
		case enums.WithdrawalStatusRejected:
			current.RejectedAt = &now
		case enums.WithdrawalStatusRequested:
			current.ProcessingAt = nil
			current.PaidAt = nil
			current.RejectedAt = nil
			if err := s.tracker.MarkItems(ctx, tx, current.CommissionItems, false); err != nil {
				return fmt.Errorf("reverting commission items: %w", err)
			}
		}
		current.Status = next

		if err := repo.SaveStatus(ctx, current); err != nil {
			return fmt.Errorf("saving withdrawal status: %w", err)
		}
		withdrawal = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncWithdrawalTransition(string(next))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"withdrawal_id": withdrawal.ID,
		"agent_id":      withdrawal.AgentID,
		"status":        withdrawal.Status,
	}), "withdrawal status updated")
	return withdrawal, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal id required")
	}
	withdrawal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return withdrawal, nil
}

// GetForAgent hides other agents' withdrawals behind a not-found instead of a
// forbidden so ids cannot be probed.
func (s *service) GetForAgent(ctx context.Context, agentID, id uuid.UUID) (*models.Withdrawal, error) {
	withdrawal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.AgentID != agentID {
		return nil, ErrNotFound
	}
	return withdrawal, nil
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

func (s *service) List(ctx context.Context, status *enums.WithdrawalStatus, params pagination.Params) (*Page, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid withdrawal status %q", *status))
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

func buildPage(rows []models.Withdrawal, limit int) *Page {
	page := &Page{Withdrawals: rows}
	if len(rows) > limit {
		page.Withdrawals = rows[:limit]
		last := page.Withdrawals[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.RequestedAt,
			ID:        last.ID,
		})
	}
	return page
}

// monthWindow returns the [first, next-first) bounds of the calendar month
// containing t.
func monthWindow(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
