package wallet

import (
	"context"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists wallet ledger entries and moves the cached balance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error)
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.WalletTransaction, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error)
	ListPendingTopups(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error)
	SaveReview(ctx context.Context, txn *models.WalletTransaction) (bool, error)
	Balance(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error)
	Credit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error
	Debit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *repository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID)
	return listPage(query, limit, cursor)
}

func (r *repository) ListPendingTopups(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", enums.WalletTransactionTypeTopup, enums.WalletTransactionStatusPending)
	return listPage(query, limit, cursor)
}

func listPage(query *gorm.DB, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error) {
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}
	var txns []models.WalletTransaction
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// SaveReview writes the decision only while the row is still pending, so of
// two racing reviewers exactly one update lands. Returns false when another
// review already settled the row.
func (r *repository) SaveReview(ctx context.Context, txn *models.WalletTransaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("id = ? AND status = ?", txn.ID, enums.WalletTransactionStatusPending).
		Updates(map[string]any{
			"status":      txn.Status,
			"admin_notes": txn.AdminNotes,
			"reviewed_by": txn.ReviewedBy,
			"reviewed_at": txn.ReviewedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Balance(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).
		Select("wallet_balance").
		Where("id = ?", agentID).
		First(&agent).Error
	if err != nil {
		return decimal.Zero, err
	}
	return agent.WalletBalance, nil
}

// Credit moves the balance with a single relative UPDATE so concurrent
// mutations never clobber each other.
func (r *repository) Credit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Exec(
			"UPDATE agents SET wallet_balance = wallet_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			amount, agentID,
		).Error
}

// Debit only succeeds when the balance covers the amount; the guard lives in
// the WHERE clause so the check and the write are one atomic statement.
func (r *repository) Debit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Exec(
			"UPDATE agents SET wallet_balance = wallet_balance - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND wallet_balance >= ?",
			amount, agentID, amount,
		)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
