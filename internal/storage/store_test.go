package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rodrigopasa/launchajato/internal/models"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewDatabaseStore(db)
}

// forEachStore runs the same contract against every Store implementation
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("gorm", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
}

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

func TestStore_Users(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		user := &models.User{Username: "Maria", Name: "Maria Silva", PasswordHash: "x"}
		require.NoError(t, s.CreateUser(ctx, user))
		require.NotEmpty(t, user.ID)

		got, err := s.GetUserByUsername(ctx, "maria")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		got, err = s.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Maria Silva", got.Name)

		_, err = s.GetUserByUsername(ctx, "joao")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUser(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_ProjectsByUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		owned := &models.Project{OwnerID: "u1", Name: "Owned", CreatedAt: at(2)}
		member := &models.Project{OwnerID: "u2", Name: "Member", CreatedAt: at(1)}
		other := &models.Project{OwnerID: "u2", Name: "Other", CreatedAt: at(0)}
		for _, p := range []*models.Project{owned, member, other} {
			require.NoError(t, s.CreateProject(ctx, p))
		}
		require.NoError(t, s.AddProjectMember(ctx, member.ID, "u1", "member"))

		projects, err := s.GetProjectsByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "Member", projects[0].Name)
		assert.Equal(t, "Owned", projects[1].Name)

		none, err := s.GetProjectsByUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestStore_Tasks(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		t1 := &models.Task{ProjectID: "p1", AssigneeID: "u1", Title: "first", CreatedAt: at(0)}
		t2 := &models.Task{ProjectID: "p2", AssigneeID: "u1", Title: "second", Status: models.TaskStatusCompleted, CreatedAt: at(1)}
		t3 := &models.Task{ProjectID: "p1", AssigneeID: "u2", Title: "third", CreatedAt: at(2)}
		for _, task := range []*models.Task{t1, t2, t3} {
			require.NoError(t, s.CreateTask(ctx, task))
		}

		mine, err := s.GetTasksByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "first", mine[0].Title)
		assert.Equal(t, models.TaskStatusTodo, mine[0].Status)
		assert.Equal(t, models.PriorityMedium, mine[0].Priority)

		p1, err := s.GetTasksByProject(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, p1, 2)
		assert.Equal(t, "third", p1[1].Title)

		got, err := s.GetTask(ctx, t2.ID)
		require.NoError(t, err)
		assert.True(t, got.IsCompleted())
	})
}

func TestStore_ChecklistOrderedByPosition(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateChecklistItem(ctx, &models.ChecklistItem{TaskID: "t1", Content: "b", Position: 2}))
		require.NoError(t, s.CreateChecklistItem(ctx, &models.ChecklistItem{TaskID: "t1", Content: "a", Position: 1, Completed: true}))
		require.NoError(t, s.CreateChecklistItem(ctx, &models.ChecklistItem{TaskID: "t2", Content: "z"}))

		items, err := s.GetChecklistItems(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].Content)
		assert.True(t, items[0].Completed)
	})
}

func TestStore_Activities(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < 4; i++ {
			require.NoError(t, s.CreateActivity(ctx, &models.Activity{
				ProjectID:   "p1",
				Description: fmt.Sprintf("a%d", i),
				CreatedAt:   at(i),
			}))
		}
		require.NoError(t, s.CreateActivity(ctx, &models.Activity{ProjectID: "p2", Description: "other", CreatedAt: at(10)}))

		recent, err := s.GetActivitiesByProject(ctx, "p1", 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "a3", recent[0].Description)
		assert.Equal(t, "a2", recent[1].Description)

		since, err := s.GetActivitiesSince(ctx, at(2))
		require.NoError(t, err)
		require.Len(t, since, 2)
		assert.Equal(t, "a3", since[0].Description)
		assert.Equal(t, "other", since[1].Description)
	})
}

func TestStore_NotificationPreferences(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.UpsertNotificationPreference(ctx, &models.NotificationPreference{UserID: "u1", Phone: "551", Enabled: true, DigestHour: 0}))
		require.NoError(t, s.UpsertNotificationPreference(ctx, &models.NotificationPreference{UserID: "u2", Phone: "552", Enabled: false}))

		prefs, err := s.GetNotificationPreferences(ctx)
		require.NoError(t, err)
		require.Len(t, prefs, 1)
		assert.Equal(t, "u1", prefs[0].UserID)
		assert.Equal(t, 0, prefs[0].DigestHour)

		require.NoError(t, s.UpsertNotificationPreference(ctx, &models.NotificationPreference{UserID: "u1", Phone: "551", Enabled: false}))
		prefs, err = s.GetNotificationPreferences(ctx)
		require.NoError(t, err)
		assert.Empty(t, prefs)
	})
}

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, SeedDemoData(ctx, s))

	ana, err := s.GetUserByUsername(ctx, "ana")
	require.NoError(t, err)

	projects, err := s.GetProjectsByUser(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	bruno, err := s.GetUserByUsername(ctx, "bruno")
	require.NoError(t, err)
	projects, err = s.GetProjectsByUser(ctx, bruno.ID)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestMemoryStore_DatesAreNotShared(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	start, due := at(0), at(60)
	project := &models.Project{OwnerID: "u1", Name: "Site", StartDate: &start}
	require.NoError(t, s.CreateProject(ctx, project))
	task := &models.Task{ProjectID: project.ID, AssigneeID: "u1", Title: "Layout", DueDate: &due}
	require.NoError(t, s.CreateTask(ctx, task))

	// mutating the caller's value after create
	due = at(999)
	start = at(999)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, at(60), *got.DueDate)

	// mutating a returned value
	*got.DueDate = at(500)
	tasks, err := s.GetTasksByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, at(60), *tasks[0].DueDate)

	projects, err := s.GetProjectsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, at(0), *projects[0].StartDate)
	*projects[0].StartDate = at(500)

	p, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, at(0), *p.StartDate)
}
