package services

import (
	"time"

	"github.com/rodrigopasa/launchajato/internal/models"
)

var taskStatusLabels = map[string]string{
	models.TaskStatusTodo:       "A Fazer",
	models.TaskStatusInProgress: "Em Andamento",
	models.TaskStatusReview:     "Em Revisão",
	models.TaskStatusCompleted:  "Concluída",
}

var taskStatusIcons = map[string]string{
	models.TaskStatusTodo:       "⚪",
	models.TaskStatusInProgress: "🔵",
	models.TaskStatusReview:     "🟡",
	models.TaskStatusCompleted:  "✅",
}

var priorityLabels = map[string]string{
	models.PriorityLow:    "Baixa",
	models.PriorityMedium: "Média",
	models.PriorityHigh:   "Alta",
}

var projectStatusLabels = map[string]string{
	models.ProjectStatusPlanning:   "Planejamento",
	models.ProjectStatusInProgress: "Em Andamento",
	models.ProjectStatusTesting:    "Em Teste",
	models.ProjectStatusCompleted:  "Concluído",
	models.ProjectStatusOnHold:     "Em Espera",
}

func lookupLabel(table map[string]string, value string) string {
	if label, ok := table[value]; ok {
		return label
	}
	return value
}

// TaskStatusLabel returns the display label of a task status
func TaskStatusLabel(status string) string { return lookupLabel(taskStatusLabels, status) }

// TaskStatusIcon returns the emoji used in task lists
func TaskStatusIcon(status string) string {
	if icon, ok := taskStatusIcons[status]; ok {
		return icon
	}
	return "•"
}

// PriorityLabel returns the display label of a task priority
func PriorityLabel(priority string) string { return lookupLabel(priorityLabels, priority) }

// ProjectStatusLabel returns the display label of a project status
func ProjectStatusLabel(status string) string { return lookupLabel(projectStatusLabels, status) }

// FormatDate renders a date as dd/mm/yyyy, or "-" when absent
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// FormatDateTime renders a timestamp as dd/mm hh:mm
func FormatDateTime(t time.Time) string {
	return t.Format("02/01 15:04")
}
