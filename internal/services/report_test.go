package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigopasa/launchajato/internal/models"
	"github.com/rodrigopasa/launchajato/internal/storage"
)

func day(n int) *time.Time {
	d := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return &d
}

func TestCountTasks(t *testing.T) {
	tasks := []*models.Task{
		{Status: models.TaskStatusTodo},
		{Status: models.TaskStatusInProgress},
		{Status: models.TaskStatusCompleted},
		{Status: models.TaskStatusCompleted},
		{Status: models.TaskStatusReview},
	}

	c := CountTasks(tasks)
	assert.Equal(t, StatusCounts{Total: 5, Todo: 1, InProgress: 1, Review: 1, Completed: 2}, c)
	assert.Equal(t, 3, c.Pending())
	assert.Equal(t, 40, c.Progress())
	assert.Equal(t, 0, CountTasks(nil).Progress())
}

func TestUpcomingDeadlines(t *testing.T) {
	tasks := []*models.Task{
		{Title: "c", Status: models.TaskStatusTodo, DueDate: day(3)},
		{Title: "none", Status: models.TaskStatusTodo},
		{Title: "a", Status: models.TaskStatusReview, DueDate: day(1)},
		{Title: "done", Status: models.TaskStatusCompleted, DueDate: day(0)},
		{Title: "b", Status: models.TaskStatusInProgress, DueDate: day(2)},
		{Title: "d", Status: models.TaskStatusTodo, DueDate: day(4)},
	}

	got := UpcomingDeadlines(tasks, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
	assert.Equal(t, "c", got[2].Title)

	assert.Empty(t, UpcomingDeadlines(tasks[1:2], 3))
}

func TestFormatDeadlines(t *testing.T) {
	now := *day(2)
	out := formatDeadlines([]*models.Task{
		{Title: "late", Status: models.TaskStatusTodo, DueDate: day(1)},
		{Title: "soon", Status: models.TaskStatusTodo, DueDate: day(5)},
	}, now)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "📅 11/06/2024 - *late* ⚠️ atrasada", lines[0])
	assert.Equal(t, "📅 15/06/2024 - *soon*", lines[1])

	assert.Contains(t, formatDeadlines(nil, now), "Nenhum prazo")
}

func TestBuildDigest(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	user := &models.User{Username: "ana", Name: "Ana"}
	require.NoError(t, store.CreateUser(ctx, user))
	project := &models.Project{OwnerID: user.ID, Name: "Site"}
	require.NoError(t, store.CreateProject(ctx, project))
	for _, task := range []*models.Task{
		{ProjectID: project.ID, AssigneeID: user.ID, Title: "atrasada", Status: models.TaskStatusTodo, DueDate: day(-1)},
		{ProjectID: project.ID, AssigneeID: user.ID, Title: "futura", Status: models.TaskStatusInProgress, DueDate: day(3)},
		{ProjectID: project.ID, AssigneeID: user.ID, Title: "feita", Status: models.TaskStatusCompleted, DueDate: day(-2)},
	} {
		require.NoError(t, store.CreateTask(ctx, task))
	}

	digest, err := BuildDigest(ctx, store, user, *day(0))
	require.NoError(t, err)

	assert.Contains(t, digest, "*Resumo diário* - 10/06/2024")
	assert.Contains(t, digest, "Olá, *Ana*!")
	assert.Contains(t, digest, "Tarefas pendentes: 2")
	assert.Contains(t, digest, "Tarefas atrasadas: 1")
	assert.Contains(t, digest, "*atrasada* ⚠️ atrasada")
	assert.Contains(t, digest, "*futura*")
	assert.NotContains(t, digest, "*feita*")
}
