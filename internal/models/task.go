package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task statuses
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusCompleted  = "completed"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a unit of work inside a project
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	ProjectID   string     `json:"project_id" gorm:"index"`
	AssigneeID  string     `json:"assignee_id" gorm:"index"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status" gorm:"default:todo"`
	Priority    string     `json:"priority" gorm:"default:medium"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsCompleted reports whether the task is done
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// IsOverdue reports whether an open task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.IsCompleted() && t.DueDate.Before(now)
}

// ChecklistItem is one line of a task checklist
type ChecklistItem struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	TaskID    string    `json:"task_id" gorm:"index"`
	Content   string    `json:"content"`
	Completed bool      `json:"completed" gorm:"default:false"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (c *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
