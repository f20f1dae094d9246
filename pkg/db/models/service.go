package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a referable offering with a fixed commission per completed referral.
type Service struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name             string          `gorm:"column:name;not null" json:"name"`
	Description      *string         `gorm:"column:description" json:"description,omitempty"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount;type:numeric(14,2);not null" json:"commission_amount"`
	Active           bool            `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
