package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DataBundle is a purchasable mobile data package.
type DataBundle struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Network        string          `gorm:"column:network;not null" json:"network"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	VolumeMB       int             `gorm:"column:volume_mb;not null" json:"volume_mb"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null" json:"price"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(6,4);not null" json:"commission_rate"`
	Active         bool            `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
