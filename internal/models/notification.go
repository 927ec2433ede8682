package models

import "time"

// NotificationPreference controls what the scheduler sends to a user over WhatsApp
type NotificationPreference struct {
	UserID         string    `json:"user_id" gorm:"primaryKey;size:36"`
	Phone          string    `json:"phone"`
	Enabled        bool      `json:"enabled"`
	ActivityAlerts bool      `json:"activity_alerts"`
	DailyDigest    bool      `json:"daily_digest"`
	DigestHour     int       `json:"digest_hour"` // local hour, 0-23
	UpdatedAt      time.Time `json:"updated_at"`
}
