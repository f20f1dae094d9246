package withdrawals

import (
	"context"
	"time"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists withdrawal requests and their settlement status.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockAgent(ctx context.Context, agentID uuid.UUID) (bool, error)
	Create(ctx context.Context, withdrawal *models.Withdrawal) (*models.Withdrawal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Withdrawal, error)
	List(ctx context.Context, status *enums.WithdrawalStatus, limit int, cursor *pagination.Cursor) ([]models.Withdrawal, error)
	CountInWindow(ctx context.Context, agentID uuid.UUID, from, to time.Time) (int64, error)
	SaveStatus(ctx context.Context, withdrawal *models.Withdrawal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a withdrawals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LockAgent takes the agent row's write lock for the rest of the transaction.
// Concurrent withdrawal requests for the same agent queue behind it, so the
// monthly count each request reads includes every request committed before it.
// Returns false when the agent does not exist.
func (r *repository) LockAgent(ctx context.Context, agentID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Exec("UPDATE agents SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", agentID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Create(ctx context.Context, withdrawal *models.Withdrawal) (*models.Withdrawal, error) {
	if err := r.db.WithContext(ctx).Create(withdrawal).Error; err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&withdrawal).Error
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Withdrawal, error) {
	query := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID)
	return listPage(query, limit, cursor)
}

func (r *repository) List(ctx context.Context, status *enums.WithdrawalStatus, limit int, cursor *pagination.Cursor) ([]models.Withdrawal, error) {
	query := r.db.WithContext(ctx).Model(&models.Withdrawal{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return listPage(query, limit, cursor)
}

func listPage(query *gorm.DB, limit int, cursor *pagination.Cursor) ([]models.Withdrawal, error) {
	if cursor != nil {
		query = query.Where(
			"(requested_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}
	var withdrawals []models.Withdrawal
	err := query.
		Order("requested_at DESC, id DESC").
		Limit(limit).
		Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// CountInWindow counts an agent's requests inside [from, to), used to enforce
// the calendar month cap.
func (r *repository) CountInWindow(ctx context.Context, agentID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("agent_id = ? AND requested_at >= ? AND requested_at < ?", agentID, from, to).
		Count(&count).Error
	return count, err
}

// SaveStatus writes the status and every lifecycle timestamp. Selecting the
// columns explicitly lets a reset write NULLs back.
func (r *repository) SaveStatus(ctx context.Context, withdrawal *models.Withdrawal) error {
	return r.db.WithContext(ctx).
		Model(withdrawal).
		Select("status", "processing_at", "paid_at", "rejected_at").
		Updates(map[string]any{
			"status":        withdrawal.Status,
			"processing_at": withdrawal.ProcessingAt,
			"paid_at":       withdrawal.PaidAt,
			"rejected_at":   withdrawal.RejectedAt,
		}).Error
}
