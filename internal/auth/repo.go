package auth

import (
	"context"

	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"gorm.io/gorm"
)

// AdminRepository looks up back office operator accounts.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository builds an admin user repository bound to the provided DB.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
