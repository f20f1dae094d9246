package models

import (
	"time"

	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DataOrder records a bundle purchase an agent placed for a client number.
// CommissionAmount is fixed at placement time (price times the bundle's rate);
// CommissionPaid follows the same nullable convention as Referral.
type DataOrder struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AgentID          uuid.UUID             `gorm:"column:agent_id;type:uuid;not null;index" json:"agent_id"`
	BundleID         uuid.UUID             `gorm:"column:bundle_id;type:uuid;not null" json:"bundle_id"`
	RecipientPhone   string                `gorm:"column:recipient_phone;not null" json:"recipient_phone"`
	Price            decimal.Decimal       `gorm:"column:price;type:numeric(14,2);not null" json:"price"`
	CommissionAmount decimal.Decimal       `gorm:"column:commission_amount;type:numeric(14,2);not null" json:"commission_amount"`
	Status           enums.DataOrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	CommissionPaid   *bool                 `gorm:"column:commission_paid" json:"commission_paid"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Bundle *DataBundle `gorm:"foreignKey:BundleID" json:"bundle,omitempty"`
}
