package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/metrics"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to controllers.
var (
	ErrInsufficientBalance = pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance does not cover the amount")
	ErrAlreadyReviewed     = pkgerrors.New(pkgerrors.CodeStateConflict, "transaction has already been reviewed")
	ErrNotFound            = pkgerrors.New(pkgerrors.CodeNotFound, "wallet transaction not found")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the wallet ledger: append-only transaction entries plus the
// cached balance on the agent row.
type Service interface {
	RequestTopup(ctx context.Context, input TopupInput) (*models.WalletTransaction, error)
	ReviewTopup(ctx context.Context, input ReviewInput) (*models.WalletTransaction, error)
	Deduct(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
	Refund(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
	Balance(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error)
	Transactions(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*Page, error)
	PendingTopups(ctx context.Context, params pagination.Params) (*Page, error)
}

// TopupInput is an agent's manual top-up claim awaiting admin review.
type TopupInput struct {
	AgentID   uuid.UUID
	Amount    decimal.Decimal
	Reference string
}

// ReviewInput is an admin decision on a pending top-up.
type ReviewInput struct {
	TransactionID uuid.UUID
	AdminID       uuid.UUID
	Approve       bool
	Notes         *string
}

// EntryInput is a balance-moving entry written by another service, usually
// inside that service's transaction.
type EntryInput struct {
	AgentID     uuid.UUID
	Amount      decimal.Decimal
	Description string
	Reference   string
}

// Page is one cursor page of wallet transactions.
type Page struct {
	Transactions []models.WalletTransaction `json:"transactions"`
	NextCursor   string                     `json:"next_cursor,omitempty"`
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.SettlementMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the wallet ledger service.
func NewService(repo Repository, tx txRunner, m *metrics.SettlementMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, metrics: m, logg: logg, now: time.Now}, nil
}

func (s *service) RequestTopup(ctx context.Context, input TopupInput) (*models.WalletTransaction, error) {
	if input.AgentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}

	txn, err := s.repo.CreateTransaction(ctx, &models.WalletTransaction{
		AgentID:       input.AgentID,
		Type:          enums.WalletTransactionTypeTopup,
		Amount:        input.Amount,
		Description:   "wallet top-up",
		Reference:     input.Reference,
		Status:        enums.WalletTransactionStatusPending,
		PaymentMethod: enums.PaymentMethodManual,
	})
	if err != nil {
		return nil, fmt.Errorf("creating top-up entry: %w", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"transaction_id": txn.ID,
		"agent_id":       txn.AgentID,
		"amount":         txn.Amount,
	}), "top-up requested")
	return txn, nil
}

// ReviewTopup settles a pending top-up. The review write carries the pending
// status in its WHERE clause, so when two reviewers race only one decision
// lands and only that one credits. Approval credits the balance in the same
// transaction as the review write, so the ledger and the cached balance
// cannot drift apart.
func (s *service) ReviewTopup(ctx context.Context, input ReviewInput) (*models.WalletTransaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	var txn *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindTransactionByID(ctx, input.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading transaction: %w", err)
		}
		if current.Type != enums.WalletTransactionTypeTopup {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only top-ups can be reviewed")
		}
		if current.Status != enums.WalletTransactionStatusPending {
			return ErrAlreadyReviewed
		}

		now := s.now().UTC()
		current.ReviewedBy = &input.AdminID
		current.ReviewedAt = &now
		current.AdminNotes = input.Notes
		if input.Approve {
			current.Status = enums.WalletTransactionStatusApproved
		} else {
			current.Status = enums.WalletTransactionStatusRejected
		}

		applied, err := repo.SaveReview(ctx, current)
		if err != nil {
			return fmt.Errorf("saving review: %w", err)
		}
		if !applied {
			return ErrAlreadyReviewed
		}
		if input.Approve {
			if err := repo.Credit(ctx, current.AgentID, current.Amount); err != nil {
				return fmt.Errorf("crediting balance: %w", err)
			}
		}
		txn = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if txn.Status == enums.WalletTransactionStatusApproved {
		s.metrics.IncWalletMutation("topup_approved")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"transaction_id": txn.ID,
		"agent_id":       txn.AgentID,
		"status":         txn.Status,
	}), "top-up reviewed")
	return txn, nil
}

// Deduct debits the balance and writes an already-approved deduction entry.
// It runs on the caller's transaction when one is given, so an order and its
// payment land or roll back together.
func (s *service) Deduct(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	if err := validateEntry(input); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.Debit(ctx, input.AgentID, input.Amount)
	if err != nil {
		return nil, fmt.Errorf("debiting balance: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientBalance
	}

	txn, err := repo.CreateTransaction(ctx, settledEntry(input, enums.WalletTransactionTypeDeduction, s.now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("creating deduction entry: %w", err)
	}
	s.metrics.IncWalletMutation("deduction")
	return txn, nil
}

// Refund credits the balance back and records the reversal.
func (s *service) Refund(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	if err := validateEntry(input); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Credit(ctx, input.AgentID, input.Amount); err != nil {
		return nil, fmt.Errorf("crediting balance: %w", err)
	}

	txn, err := repo.CreateTransaction(ctx, settledEntry(input, enums.WalletTransactionTypeRefund, s.now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("creating refund entry: %w", err)
	}
	s.metrics.IncWalletMutation("refund")
	return txn, nil
}

func (s *service) Balance(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error) {
	if agentID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	balance, err := s.repo.Balance(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *service) Transactions(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*Page, error) {
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

func (s *service) PendingTopups(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListPendingTopups(ctx, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, err
	}
	return buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func validateEntry(input EntryInput) error {
	if input.AgentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reference required")
	}
	return nil
}

func settledEntry(input EntryInput, entryType enums.WalletTransactionType, reviewedAt time.Time) *models.WalletTransaction {
	return &models.WalletTransaction{
		AgentID:       input.AgentID,
		Type:          entryType,
		Amount:        input.Amount,
		Description:   input.Description,
		Reference:     input.Reference,
		Status:        enums.WalletTransactionStatusApproved,
		PaymentMethod: enums.PaymentMethodAuto,
		ReviewedAt:    &reviewedAt,
	}
}

func buildPage(rows []models.WalletTransaction, limit int) *Page {
	page := &Page{Transactions: rows}
	if len(rows) > limit {
		page.Transactions = rows[:limit]
		last := page.Transactions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page
}
