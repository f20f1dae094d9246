package referrals

import (
	"context"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists client referrals.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, referral *models.Referral) (*models.Referral, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Referral, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Referral, error)
	List(ctx context.Context, status *enums.ReferralStatus, limit int, cursor *pagination.Cursor) ([]models.Referral, error)
	SaveStatus(ctx context.Context, referral *models.Referral) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a referrals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, referral *models.Referral) (*models.Referral, error) {
	if err := r.db.WithContext(ctx).Create(referral).Error; err != nil {
		return nil, err
	}
	return referral, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	var referral models.Referral
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("id = ?", id).
		First(&referral).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Referral, error) {
	query := r.db.WithContext(ctx).
		Preload("Service").
		Where("agent_id = ?", agentID)
	return listPage(query, limit, cursor)
}

func (r *repository) List(ctx context.Context, status *enums.ReferralStatus, limit int, cursor *pagination.Cursor) ([]models.Referral, error) {
	query := r.db.WithContext(ctx).
		Preload("Service").
		Model(&models.Referral{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return listPage(query, limit, cursor)
}

func listPage(query *gorm.DB, limit int, cursor *pagination.Cursor) ([]models.Referral, error) {
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}
	var referrals []models.Referral
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&referrals).Error
	if err != nil {
		return nil, err
	}
	return referrals, nil
}

// SaveStatus writes the status and the commission flag together so a
// transition can never leave a stale paid marker behind.
func (r *repository) SaveStatus(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).
		Model(referral).
		Select("status", "commission_paid").
		Updates(map[string]any{
			"status":          referral.Status,
			"commission_paid": referral.CommissionPaid,
		}).Error
}
