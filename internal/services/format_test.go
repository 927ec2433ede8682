package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rodrigopasa/launchajato/internal/models"
)

func TestLabels(t *testing.T) {
	assert.Equal(t, "A Fazer", TaskStatusLabel(models.TaskStatusTodo))
	assert.Equal(t, "Em Revisão", TaskStatusLabel(models.TaskStatusReview))
	assert.Equal(t, "archived", TaskStatusLabel("archived"))

	assert.Equal(t, "✅", TaskStatusIcon(models.TaskStatusCompleted))
	assert.Equal(t, "•", TaskStatusIcon("archived"))

	assert.Equal(t, "Alta", PriorityLabel(models.PriorityHigh))
	assert.Equal(t, "Em Espera", ProjectStatusLabel(models.ProjectStatusOnHold))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "05/03/2024", FormatDate(&d))
	assert.Equal(t, "-", FormatDate(nil))
	assert.Equal(t, "-", FormatDate(&time.Time{}))
	assert.Equal(t, "05/03 14:30", FormatDateTime(d))
}
