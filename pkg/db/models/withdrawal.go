package models

import (
	"time"

	dbtypes "github.com/dataflexhq/dataflex-backend/pkg/db/types"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Withdrawal is an immutable snapshot of unpaid commission items plus a
// mutable settlement status. CommissionItems is fixed at request time and
// never rewritten; only the status and its timestamps change afterwards.
type Withdrawal struct {
	ID              uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AgentID         uuid.UUID                  `gorm:"column:agent_id;type:uuid;not null;index" json:"agent_id"`
	Amount          decimal.Decimal            `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	MomoNumber      string                     `gorm:"column:momo_number;not null" json:"momo_number"`
	Status          enums.WithdrawalStatus     `gorm:"column:status;type:text;not null;default:'requested'" json:"status"`
	CommissionItems dbtypes.CommissionItemList `gorm:"column:commission_items;type:jsonb;not null" json:"commission_items"`
	RequestedAt     time.Time                  `gorm:"column:requested_at;autoCreateTime" json:"requested_at"`
	ProcessingAt    *time.Time                 `gorm:"column:processing_at" json:"processing_at,omitempty"`
	PaidAt          *time.Time                 `gorm:"column:paid_at" json:"paid_at,omitempty"`
	RejectedAt      *time.Time                 `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
}
