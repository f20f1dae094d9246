package catalog

import (
	"context"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists the referable services and data bundle catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateService(ctx context.Context, svc *models.Service) (*models.Service, error)
	FindServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	UpdateService(ctx context.Context, svc *models.Service) error
	DeleteService(ctx context.Context, id uuid.UUID) error

	CreateBundle(ctx context.Context, bundle *models.DataBundle) (*models.DataBundle, error)
	FindBundleByID(ctx context.Context, id uuid.UUID) (*models.DataBundle, error)
	ListBundles(ctx context.Context, activeOnly bool) ([]models.DataBundle, error)
	UpdateBundle(ctx context.Context, bundle *models.DataBundle) error
	DeleteBundle(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateService(ctx context.Context, svc *models.Service) (*models.Service, error) {
	if err := r.db.WithContext(ctx).Create(svc).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

func (r *repository) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	query := r.db.WithContext(ctx).Model(&models.Service{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var services []models.Service
	if err := query.Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *repository) UpdateService(ctx context.Context, svc *models.Service) error {
	return r.db.WithContext(ctx).
		Model(svc).
		Select("name", "description", "commission_amount", "active").
		Updates(map[string]any{
			"name":              svc.Name,
			"description":       svc.Description,
			"commission_amount": svc.CommissionAmount,
			"active":            svc.Active,
		}).Error
}

func (r *repository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Service{}).Error
}

func (r *repository) CreateBundle(ctx context.Context, bundle *models.DataBundle) (*models.DataBundle, error) {
	if err := r.db.WithContext(ctx).Create(bundle).Error; err != nil {
		return nil, err
	}
	return bundle, nil
}

func (r *repository) FindBundleByID(ctx context.Context, id uuid.UUID) (*models.DataBundle, error) {
	var bundle models.DataBundle
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&bundle).Error
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (r *repository) ListBundles(ctx context.Context, activeOnly bool) ([]models.DataBundle, error) {
	query := r.db.WithContext(ctx).Model(&models.DataBundle{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var bundles []models.DataBundle
	if err := query.Order("network ASC, volume_mb ASC").Find(&bundles).Error; err != nil {
		return nil, err
	}
	return bundles, nil
}

func (r *repository) UpdateBundle(ctx context.Context, bundle *models.DataBundle) error {
	return r.db.WithContext(ctx).
		Model(bundle).
		Select("network", "name", "volume_mb", "price", "commission_rate", "active").
		Updates(map[string]any{
			"network":         bundle.Network,
			"name":            bundle.Name,
			"volume_mb":       bundle.VolumeMB,
			"price":           bundle.Price,
			"commission_rate": bundle.CommissionRate,
			"active":          bundle.Active,
		}).Error
}

func (r *repository) DeleteBundle(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.DataBundle{}).Error
}
