package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rodrigopasa/launchajato/internal/models"
	"github.com/rodrigopasa/launchajato/internal/utils"
)

// DemoPassword is the password of every seeded user
const DemoPassword = "demo123"

// SeedDemoData fills a store with a small organization for manual testing
// through /test/whatsapp.
func SeedDemoData(ctx context.Context, store Store) error {
	hash, err := utils.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	day := 24 * time.Hour

	ana := &models.User{OrganizationID: "org-demo", Username: "ana", Name: "Ana Souza", Phone: "5511900000001", PasswordHash: hash, Role: "admin"}
	bruno := &models.User{OrganizationID: "org-demo", Username: "bruno", Name: "Bruno Lima", Phone: "5511900000002", PasswordHash: hash}
	for _, u := range []*models.User{ana, bruno} {
		if err := store.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	site := &models.Project{OrganizationID: "org-demo", OwnerID: ana.ID, Name: "Novo site institucional", Description: "Redesign do site com blog", Status: models.ProjectStatusInProgress}
	app := &models.Project{OrganizationID: "org-demo", OwnerID: ana.ID, Name: "App mobile", Description: "MVP do aplicativo de pedidos", Status: models.ProjectStatusPlanning}
	for _, p := range []*models.Project{site, app} {
		if err := store.CreateProject(ctx, p); err != nil {
			return fmt.Errorf("seed project %s: %w", p.Name, err)
		}
	}
	if err := store.AddProjectMember(ctx, site.ID, bruno.ID, "member"); err != nil {
		return err
	}

	due := func(d time.Duration) *time.Time { t := now.Add(d); return &t }
	tasks := []*models.Task{
		{ProjectID: site.ID, AssigneeID: ana.ID, Title: "Aprovar layout da home", Status: models.TaskStatusReview, Priority: models.PriorityHigh, DueDate: due(2 * day)},
		{ProjectID: site.ID, AssigneeID: bruno.ID, Title: "Migrar posts do blog", Status: models.TaskStatusInProgress, Priority: models.PriorityMedium, DueDate: due(5 * day)},
		{ProjectID: site.ID, AssigneeID: ana.ID, Title: "Configurar domínio", Status: models.TaskStatusCompleted, Priority: models.PriorityLow},
		{ProjectID: app.ID, AssigneeID: ana.ID, Title: "Levantar requisitos", Status: models.TaskStatusTodo, Priority: models.PriorityHigh, DueDate: due(-1 * day)},
	}
	for _, t := range tasks {
		if err := store.CreateTask(ctx, t); err != nil {
			return fmt.Errorf("seed task %s: %w", t.Title, err)
		}
	}

	for i, content := range []string{"Revisar cores", "Validar responsividade", "Enviar para o cliente"} {
		item := &models.ChecklistItem{TaskID: tasks[0].ID, Content: content, Completed: i == 0, Position: i}
		if err := store.CreateChecklistItem(ctx, item); err != nil {
			return err
		}
	}

	activities := []*models.Activity{
		{ProjectID: site.ID, TaskID: tasks[2].ID, UserID: ana.ID, Action: "completed_task", Description: "Ana concluiu a tarefa Configurar domínio"},
		{ProjectID: site.ID, TaskID: tasks[1].ID, UserID: bruno.ID, Action: "updated_task", Description: "Bruno iniciou a tarefa Migrar posts do blog"},
	}
	for _, a := range activities {
		if err := store.CreateActivity(ctx, a); err != nil {
			return err
		}
	}

	return store.UpsertNotificationPreference(ctx, &models.NotificationPreference{
		UserID:         ana.ID,
		Phone:          ana.Phone,
		Enabled:        true,
		ActivityAlerts: true,
		DailyDigest:    true,
		DigestHour:     8,
	})
}
