package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rodrigopasa/launchajato/internal/models"
	"github.com/rodrigopasa/launchajato/internal/storage"
)

// StatusCounts aggregates tasks by status
type StatusCounts struct {
	Total      int
	Todo       int
	InProgress int
	Review     int
	Completed  int
}

// CountTasks aggregates a task list by status
func CountTasks(tasks []*models.Task) StatusCounts {
	var c StatusCounts
	for _, t := range tasks {
		c.Total++
		switch t.Status {
		case models.TaskStatusTodo:
			c.Todo++
		case models.TaskStatusInProgress:
			c.InProgress++
		case models.TaskStatusReview:
			c.Review++
		case models.TaskStatusCompleted:
			c.Completed++
		}
	}
	return c
}

// Pending is the number of tasks not completed
func (c StatusCounts) Pending() int { return c.Total - c.Completed }

// Progress is the completed share in whole percent
func (c StatusCounts) Progress() int {
	if c.Total == 0 {
		return 0
	}
	return c.Completed * 100 / c.Total
}

func (c StatusCounts) lines() string {
	return fmt.Sprintf("⚪ %s: %d\n🔵 %s: %d\n🟡 %s: %d\n✅ %s: %d",
		TaskStatusLabel(models.TaskStatusTodo), c.Todo,
		TaskStatusLabel(models.TaskStatusInProgress), c.InProgress,
		TaskStatusLabel(models.TaskStatusReview), c.Review,
		TaskStatusLabel(models.TaskStatusCompleted), c.Completed)
}

// UpcomingDeadlines returns up to limit open tasks that have a due date,
// earliest first.
func UpcomingDeadlines(tasks []*models.Task, limit int) []*models.Task {
	dated := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate != nil && !t.IsCompleted() {
			dated = append(dated, t)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool { return dated[i].DueDate.Before(*dated[j].DueDate) })
	if len(dated) > limit {
		dated = dated[:limit]
	}
	return dated
}

func formatDeadlines(tasks []*models.Task, now time.Time) string {
	if len(tasks) == 0 {
		return "Nenhum prazo próximo. 🎉"
	}
	var b strings.Builder
	for i, t := range tasks {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "📅 %s - *%s*", FormatDate(t.DueDate), t.Title)
		if t.IsOverdue(now) {
			b.WriteString(" ⚠️ atrasada")
		}
	}
	return b.String()
}

// BuildDigest composes the daily summary sent by the notification scheduler
func BuildDigest(ctx context.Context, store storage.Store, user *models.User, now time.Time) (string, error) {
	tasks, err := store.GetTasksByUser(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("digest tasks: %w", err)
	}

	counts := CountTasks(tasks)
	overdue := 0
	for _, t := range tasks {
		if t.IsOverdue(now) {
			overdue++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "☀️ *Resumo diário* - %s\n\nOlá, *%s*!\n\n", now.Format("02/01/2006"), user.Name)
	fmt.Fprintf(&b, "📋 Tarefas pendentes: %d\n", counts.Pending())
	fmt.Fprintf(&b, "⚠️ Tarefas atrasadas: %d\n\n", overdue)
	b.WriteString("*Próximos prazos:*\n")
	b.WriteString(formatDeadlines(UpcomingDeadlines(tasks, 3), now))
	return b.String(), nil
}
