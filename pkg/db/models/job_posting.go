package models

import (
	"time"

	"github.com/google/uuid"
)

// JobPosting is an admin-published opening on the job board.
type JobPosting struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Company     string    `gorm:"column:company;not null" json:"company"`
	Location    *string   `gorm:"column:location" json:"location,omitempty"`
	Description string    `gorm:"column:description;not null" json:"description"`
	SalaryRange *string   `gorm:"column:salary_range" json:"salary_range,omitempty"`
	Active      bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// JobApplication links an agent to a posting they applied for.
type JobApplication struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID     uuid.UUID `gorm:"column:job_id;type:uuid;not null;index" json:"job_id"`
	AgentID   uuid.UUID `gorm:"column:agent_id;type:uuid;not null;index" json:"agent_id"`
	CoverNote *string   `gorm:"column:cover_note" json:"cover_note,omitempty"`
	Status    string    `gorm:"column:status;type:text;not null;default:'submitted'" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
