package orders

import (
	"context"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists data bundle orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.DataOrder) (*models.DataOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DataOrder, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.DataOrder, error)
	List(ctx context.Context, status *enums.DataOrderStatus, limit int, cursor *pagination.Cursor) ([]models.DataOrder, error)
	SaveStatus(ctx context.Context, order *models.DataOrder) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.DataOrder) (*models.DataOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DataOrder, error) {
	var order models.DataOrder
	err := r.db.WithContext(ctx).
		Preload("Bundle").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.DataOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("Bundle").
		Where("agent_id = ?", agentID)
	return listPage(query, limit, cursor)
}

func (r *repository) List(ctx context.Context, status *enums.DataOrderStatus, limit int, cursor *pagination.Cursor) ([]models.DataOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("Bundle").
		Model(&models.DataOrder{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return listPage(query, limit, cursor)
}

func listPage(query *gorm.DB, limit int, cursor *pagination.Cursor) ([]models.DataOrder, error) {
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}
	var orders []models.DataOrder
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveStatus writes the status and the commission flag together.
func (r *repository) SaveStatus(ctx context.Context, order *models.DataOrder) error {
	return r.db.WithContext(ctx).
		Model(order).
		Select("status", "commission_paid").
		Updates(map[string]any{
			"status":          order.Status,
			"commission_paid": order.CommissionPaid,
		}).Error
}
