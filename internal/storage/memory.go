package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rodrigopasa/launchajato/internal/models"
)

// MemoryStore holds all data in memory, for development and tests
type MemoryStore struct {
	users       map[string]*models.User
	projects    map[string]*models.Project
	members     map[string]map[string]string // projectID -> userID -> role
	tasks       map[string]*models.Task
	checklists  map[string]*models.ChecklistItem
	activities  map[string]*models.Activity
	preferences map[string]*models.NotificationPreference

	// insertion order, used to break CreatedAt ties
	order map[string]int
	seq   int

	mu  sync.RWMutex
	now func() time.Time
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*models.User),
		projects:    make(map[string]*models.Project),
		members:     make(map[string]map[string]string),
		tasks:       make(map[string]*models.Task),
		checklists:  make(map[string]*models.ChecklistItem),
		activities:  make(map[string]*models.Activity),
		preferences: make(map[string]*models.NotificationPreference),
		order:       make(map[string]int),
		now:         time.Now,
	}
}

// track registers a new record id and fills missing id/timestamp fields.
// Caller holds m.mu.
func (m *MemoryStore) track(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = m.now()
	}
	m.seq++
	m.order[*id] = m.seq
}

func (m *MemoryStore) before(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.Before(bAt)
	}
	return m.order[aID] < m.order[bID]
}

// User operations
func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) {
			return fmt.Errorf("username %q already taken", user.Username)
		}
	}

	m.track(&user.ID, &user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	out := *user
	return &out, nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			out := *user
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Project operations
func (m *MemoryStore) CreateProject(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.track(&project.ID, &project.CreatedAt)
	if project.Status == "" {
		project.Status = models.ProjectStatusPlanning
	}
	project.UpdatedAt = project.CreatedAt
	m.projects[project.ID] = copyProject(project)
	return nil
}

func (m *MemoryStore) AddProjectMember(ctx context.Context, projectID, userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[projectID]; !exists {
		return ErrNotFound
	}
	if m.members[projectID] == nil {
		m.members[projectID] = make(map[string]string)
	}
	m.members[projectID][userID] = role
	return nil
}

func (m *MemoryStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	project, exists := m.projects[id]
	if !exists {
		return nil, ErrNotFound
	}
	return copyProject(project), nil
}

func (m *MemoryStore) GetProjectsByUser(ctx context.Context, userID string) ([]*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	projects := []*models.Project{}
	for _, project := range m.projects {
		_, member := m.members[project.ID][userID]
		if project.OwnerID == userID || member {
			projects = append(projects, copyProject(project))
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return m.before(projects[i].ID, projects[i].CreatedAt, projects[j].ID, projects[j].CreatedAt)
	})
	return projects, nil
}

// Task operations
func (m *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.track(&task.ID, &task.CreatedAt)
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	task.UpdatedAt = task.CreatedAt
	m.tasks[task.ID] = copyTask(task)
	return nil
}

func (m *MemoryStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, exists := m.tasks[id]
	if !exists {
		return nil, ErrNotFound
	}
	return copyTask(task), nil
}

func (m *MemoryStore) GetTasksByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	return m.filterTasks(func(t *models.Task) bool { return t.AssigneeID == userID }), nil
}

func (m *MemoryStore) GetTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	return m.filterTasks(func(t *models.Task) bool { return t.ProjectID == projectID }), nil
}

func (m *MemoryStore) filterTasks(match func(*models.Task) bool) []*models.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := []*models.Task{}
	for _, task := range m.tasks {
		if match(task) {
			tasks = append(tasks, copyTask(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return m.before(tasks[i].ID, tasks[i].CreatedAt, tasks[j].ID, tasks[j].CreatedAt)
	})
	return tasks
}

// Checklist operations
func (m *MemoryStore) CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.track(&item.ID, &item.CreatedAt)
	stored := *item
	m.checklists[item.ID] = &stored
	return nil
}

func (m *MemoryStore) GetChecklistItems(ctx context.Context, taskID string) ([]*models.ChecklistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := []*models.ChecklistItem{}
	for _, item := range m.checklists {
		if item.TaskID == taskID {
			out := *item
			items = append(items, &out)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return m.order[items[i].ID] < m.order[items[j].ID]
	})
	return items, nil
}

// Activity operations
func (m *MemoryStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.track(&activity.ID, &activity.CreatedAt)
	stored := *activity
	m.activities[activity.ID] = &stored
	return nil
}

func (m *MemoryStore) GetActivitiesByProject(ctx context.Context, projectID string, limit int) ([]*models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	activities := []*models.Activity{}
	for _, activity := range m.activities {
		if activity.ProjectID == projectID {
			out := *activity
			activities = append(activities, &out)
		}
	}
	sort.Slice(activities, func(i, j int) bool {
		return m.before(activities[j].ID, activities[j].CreatedAt, activities[i].ID, activities[i].CreatedAt)
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func (m *MemoryStore) GetActivitiesSince(ctx context.Context, since time.Time) ([]*models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	activities := []*models.Activity{}
	for _, activity := range m.activities {
		if activity.CreatedAt.After(since) {
			out := *activity
			activities = append(activities, &out)
		}
	}
	sort.Slice(activities, func(i, j int) bool {
		return m.before(activities[i].ID, activities[i].CreatedAt, activities[j].ID, activities[j].CreatedAt)
	})
	return activities, nil
}

// Notification preference operations
func (m *MemoryStore) UpsertNotificationPreference(ctx context.Context, pref *models.NotificationPreference) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pref.UpdatedAt = m.now()
	stored := *pref
	m.preferences[pref.UserID] = &stored
	return nil
}

func (m *MemoryStore) GetNotificationPreferences(ctx context.Context) ([]*models.NotificationPreference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefs := []*models.NotificationPreference{}
	for _, pref := range m.preferences {
		if pref.Enabled {
			out := *pref
			prefs = append(prefs, &out)
		}
	}
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].UserID < prefs[j].UserID })
	return prefs, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}

// copyProject also copies the optional dates so callers never share them
func copyProject(p *models.Project) *models.Project {
	out := *p
	out.StartDate = copyTime(p.StartDate)
	out.EndDate = copyTime(p.EndDate)
	return &out
}

func copyTask(t *models.Task) *models.Task {
	out := *t
	out.DueDate = copyTime(t.DueDate)
	return &out
}
