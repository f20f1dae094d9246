package commissions

import (
	"context"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads and repairs the commission flags on referrals and data orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListUnpaidReferrals(ctx context.Context, agentID uuid.UUID) ([]models.Referral, error)
	ListUnpaidOrders(ctx context.Context, agentID uuid.UUID) ([]models.DataOrder, error)
	RepairReferralFlags(ctx context.Context, agentID uuid.UUID) (int64, error)
	RepairOrderFlags(ctx context.Context, agentID uuid.UUID) (int64, error)
	SetReferralsPaid(ctx context.Context, ids []uuid.UUID, paid bool) error
	SetOrdersPaid(ctx context.Context, ids []uuid.UUID, paid bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a commissions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListUnpaidReferrals(ctx context.Context, agentID uuid.UUID) ([]models.Referral, error) {
	var referrals []models.Referral
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where("agent_id = ? AND status = ? AND commission_paid = ?", agentID, enums.ReferralStatusCompleted, false).
		Order("created_at ASC").
		Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

func (r *repository) ListUnpaidOrders(ctx context.Context, agentID uuid.UUID) ([]models.DataOrder, error) {
	var orders []models.DataOrder
	if err := r.db.WithContext(ctx).
		Where("agent_id = ? AND status = ? AND commission_paid = ?", agentID, enums.DataOrderStatusCompleted, false).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// RepairReferralFlags normalizes NULL commission_paid values to an explicit false.
// The column is not defaulted at the database level for rows migrated from the
// legacy system, so the tracker repairs before it counts.
func (r *repository) RepairReferralFlags(ctx context.Context, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("agent_id = ? AND commission_paid IS NULL", agentID).
		Update("commission_paid", false)
	return res.RowsAffected, res.Error
}

func (r *repository) RepairOrderFlags(ctx context.Context, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DataOrder{}).
		Where("agent_id = ? AND commission_paid IS NULL", agentID).
		Update("commission_paid", false)
	return res.RowsAffected, res.Error
}

func (r *repository) SetReferralsPaid(ctx context.Context, ids []uuid.UUID, paid bool) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("id IN ?", ids).
		Update("commission_paid", paid).Error
}

func (r *repository) SetOrdersPaid(ctx context.Context, ids []uuid.UUID, paid bool) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.DataOrder{}).
		Where("id IN ?", ids).
		Update("commission_paid", paid).Error
}
