package models

import (
	"time"

	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletTransaction is an append-only wallet ledger entry. Top-ups go through
// the pending/approved/rejected admin review; deductions are written already
// approved in the same transaction that moved the balance.
type WalletTransaction struct {
	ID            uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AgentID       uuid.UUID                     `gorm:"column:agent_id;type:uuid;not null;index" json:"agent_id"`
	Type          enums.WalletTransactionType   `gorm:"column:type;type:text;not null" json:"type"`
	Amount        decimal.Decimal               `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Description   string                        `gorm:"column:description;not null" json:"description"`
	Reference     string                        `gorm:"column:reference;not null" json:"reference"`
	Status        enums.WalletTransactionStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	PaymentMethod enums.PaymentMethod           `gorm:"column:payment_method;type:text;not null" json:"payment_method"`
	AdminNotes    *string                       `gorm:"column:admin_notes" json:"admin_notes,omitempty"`
	ReviewedBy    *uuid.UUID                    `gorm:"column:reviewed_by;type:uuid" json:"reviewed_by,omitempty"`
	CreatedAt     time.Time                     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ReviewedAt    *time.Time                    `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
}
