package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project statuses
const (
	ProjectStatusPlanning   = "planning"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusTesting    = "testing"
	ProjectStatusCompleted  = "completed"
	ProjectStatusOnHold     = "on_hold"
)

// Project groups tasks for an organization
type Project struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	OrganizationID string     `json:"organization_id" gorm:"index"`
	OwnerID        string     `json:"owner_id" gorm:"index"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Status         string     `json:"status" gorm:"default:planning"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProjectMember links a user to a project they do not own
type ProjectMember struct {
	ProjectID string    `json:"project_id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	Role      string    `json:"role" gorm:"default:member"`
	CreatedAt time.Time `json:"created_at"`
}
