package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rodrigopasa/launchajato/internal/models"
)

// ErrNotFound is returned by single-record lookups that match nothing
var ErrNotFound = errors.New("record not found")

// Store defines the interface for storage operations. List queries return
// empty slices, never ErrNotFound.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// Project operations. Project lists are ordered by creation time.
	CreateProject(ctx context.Context, project *models.Project) error
	AddProjectMember(ctx context.Context, projectID, userID, role string) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectsByUser(ctx context.Context, userID string) ([]*models.Project, error)

	// Task operations. Task lists are ordered by creation time.
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	GetTasksByUser(ctx context.Context, userID string) ([]*models.Task, error)
	GetTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error)

	// Checklist operations, ordered by position
	CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	GetChecklistItems(ctx context.Context, taskID string) ([]*models.ChecklistItem, error)

	// Activity operations
	CreateActivity(ctx context.Context, activity *models.Activity) error
	// GetActivitiesByProject returns the newest activities first
	GetActivitiesByProject(ctx context.Context, projectID string, limit int) ([]*models.Activity, error)
	// GetActivitiesSince returns activities created after since, oldest first
	GetActivitiesSince(ctx context.Context, since time.Time) ([]*models.Activity, error)

	// Notification preference operations
	UpsertNotificationPreference(ctx context.Context, pref *models.NotificationPreference) error
	GetNotificationPreferences(ctx context.Context) ([]*models.NotificationPreference, error)
}
