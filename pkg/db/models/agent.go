package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Agent represents a commission-earning reseller account. Phone doubles as the
// login identity; WalletBalance is the cached running total maintained by the
// wallet ledger.
type Agent struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName      string          `gorm:"column:full_name;not null" json:"full_name"`
	Phone         string          `gorm:"column:phone;type:text;not null;uniqueIndex" json:"phone"`
	PasswordHash  string          `gorm:"column:password_hash;not null" json:"-"`
	MomoNumber    string          `gorm:"column:momo_number;not null" json:"momo_number"`
	Region        *string         `gorm:"column:region" json:"region,omitempty"`
	Approved      bool            `gorm:"column:approved;not null;default:false" json:"approved"`
	Banned        bool            `gorm:"column:banned;not null;default:false" json:"banned"`
	WalletBalance decimal.Decimal `gorm:"column:wallet_balance;type:numeric(14,2);not null;default:0" json:"wallet_balance"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
