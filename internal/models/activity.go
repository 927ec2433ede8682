package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is an entry of a project activity feed
type Activity struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID   string    `json:"project_id" gorm:"index"`
	TaskID      string    `json:"task_id"`
	UserID      string    `json:"user_id"`
	Action      string    `json:"action"` // created_task, completed_task, commented, ...
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
