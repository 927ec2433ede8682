package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a member of an organization that can log into the chatbot.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	OrganizationID string    `json:"organization_id" gorm:"index"`
	Username       string    `json:"username" gorm:"uniqueIndex"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone" gorm:"index"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role" gorm:"default:member"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
