package models

import (
	"time"

	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/google/uuid"
)

// Referral is a client the agent sent to a service. CommissionPaid is nullable
// on purpose: rows written before the flag existed carry NULL, which the
// accrual tracker repairs to false before it counts anything.
type Referral struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AgentID        uuid.UUID            `gorm:"column:agent_id;type:uuid;not null;index" json:"agent_id"`
	ServiceID      uuid.UUID            `gorm:"column:service_id;type:uuid;not null" json:"service_id"`
	ClientName     string               `gorm:"column:client_name;not null" json:"client_name"`
	ClientPhone    string               `gorm:"column:client_phone;not null" json:"client_phone"`
	Status         enums.ReferralStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	CommissionPaid *bool                `gorm:"column:commission_paid" json:"commission_paid"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}
