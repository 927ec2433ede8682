package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rodrigopasa/launchajato/internal/models"
)

// DatabaseStore implements Store on top of gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a gorm backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// AutoMigrate creates or updates the tables used by the store
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.ChecklistItem{},
		&models.Activity{},
		&models.NotificationPreference{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// User operations
func (s *DatabaseStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *DatabaseStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// Project operations
func (s *DatabaseStore) CreateProject(ctx context.Context, project *models.Project) error {
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *DatabaseStore) AddProjectMember(ctx context.Context, projectID, userID, role string) error {
	member := &models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(member).Error
	if err != nil {
		return fmt.Errorf("add project member: %w", err)
	}
	return nil
}

func (s *DatabaseStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &project, nil
}

func (s *DatabaseStore) GetProjectsByUser(ctx context.Context, userID string) ([]*models.Project, error) {
	db := s.db.WithContext(ctx)
	memberOf := db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)

	projects := []*models.Project{}
	err := db.Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("created_at ASC, id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("projects by user: %w", err)
	}
	return projects, nil
}

// Task operations
func (s *DatabaseStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *DatabaseStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (s *DatabaseStore) GetTasksByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks := []*models.Task{}
	err := s.db.WithContext(ctx).
		Where("assignee_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("tasks by user: %w", err)
	}
	return tasks, nil
}

func (s *DatabaseStore) GetTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	tasks := []*models.Task{}
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("tasks by project: %w", err)
	}
	return tasks, nil
}

// Checklist operations
func (s *DatabaseStore) CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create checklist item: %w", err)
	}
	return nil
}

func (s *DatabaseStore) GetChecklistItems(ctx context.Context, taskID string) ([]*models.ChecklistItem, error) {
	items := []*models.ChecklistItem{}
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("position ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("checklist items: %w", err)
	}
	return items, nil
}

// Activity operations
func (s *DatabaseStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func (s *DatabaseStore) GetActivitiesByProject(ctx context.Context, projectID string, limit int) ([]*models.Activity, error) {
	activities := []*models.Activity{}
	query := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("activities by project: %w", err)
	}
	return activities, nil
}

func (s *DatabaseStore) GetActivitiesSince(ctx context.Context, since time.Time) ([]*models.Activity, error) {
	activities := []*models.Activity{}
	err := s.db.WithContext(ctx).
		Where("created_at > ?", since).
		Order("created_at ASC, id ASC").
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("activities since: %w", err)
	}
	return activities, nil
}

// Notification preference operations
func (s *DatabaseStore) UpsertNotificationPreference(ctx context.Context, pref *models.NotificationPreference) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(pref).Error
	if err != nil {
		return fmt.Errorf("upsert notification preference: %w", err)
	}
	return nil
}

func (s *DatabaseStore) GetNotificationPreferences(ctx context.Context) ([]*models.NotificationPreference, error) {
	prefs := []*models.NotificationPreference{}
	err := s.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("user_id ASC").
		Find(&prefs).Error
	if err != nil {
		return nil, fmt.Errorf("notification preferences: %w", err)
	}
	return prefs, nil
}
