package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rodrigopasa/launchajato/internal/metrics"
	"github.com/rodrigopasa/launchajato/internal/models"
	"github.com/rodrigopasa/launchajato/internal/storage"
)

// recentActivityLimit is how many feed entries a project report shows
const recentActivityLimit = 5

// Chatbot turns inbound WhatsApp text into replies, driving the per-phone
// login and navigation state machine.
type Chatbot struct {
	store    storage.Store
	auth     Authenticator
	sessions SessionStore
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// ChatbotOption configures a Chatbot
type ChatbotOption func(*Chatbot)

// WithChatbotClock overrides the clock used for deadlines
func WithChatbotClock(now func() time.Time) ChatbotOption {
	return func(b *Chatbot) { b.now = now }
}

// WithChatbotMetrics attaches a metrics collector
func WithChatbotMetrics(m *metrics.Metrics) ChatbotOption {
	return func(b *Chatbot) { b.metrics = m }
}

// NewChatbot creates a new chatbot
func NewChatbot(store storage.Store, auth Authenticator, sessions SessionStore, logger zerolog.Logger, opts ...ChatbotOption) *Chatbot {
	b := &Chatbot{
		store:    store,
		auth:     auth,
		sessions: sessions,
		logger:   logger.With().Str("component", "chatbot").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HandleMessage loads the sender's session, processes the text and stores
// the updated session. It always produces a reply.
func (b *Chatbot) HandleMessage(ctx context.Context, phone, text string) string {
	start := time.Now()

	session := b.sessions.GetOrCreate(phone)
	b.metrics.RecordMessage(string(session.State))

	reply := b.Process(ctx, session, text)

	b.sessions.Save(session)
	b.metrics.SetActiveSessions(b.sessions.Count())
	b.metrics.ObserveProcessing(time.Since(start).Seconds())
	return reply
}

// Process applies one message to session in place and returns the reply
func (b *Chatbot) Process(ctx context.Context, session *models.ChatSession, text string) string {
	cmd := ParseCommand(text)

	if !session.Authenticated || session.UserID == "" {
		if session.Authenticated {
			b.logger.Warn().Str("phone", session.PhoneNumber).Msg("authenticated session without user, resetting")
			session.Logout()
		}
		return b.processLogin(ctx, session, cmd)
	}

	handler := lookupHandler(session.State, cmd.Kind)
	if handler == nil {
		b.metrics.RecordCommand(cmd.Kind.String(), "unrecognized")
		return msgUnknownCommand
	}

	before := *session
	reply, err := handler(b, ctx, session, cmd)
	if err != nil {
		*session = before
		b.logger.Error().Err(err).
			Str("phone", session.PhoneNumber).
			Str("command", cmd.Kind.String()).
			Msg("command failed")
		b.metrics.RecordCommand(cmd.Kind.String(), "error")
		return msgGenericError
	}

	b.metrics.RecordCommand(cmd.Kind.String(), "ok")
	return reply
}

// processLogin drives the initial -> awaiting_username -> awaiting_password flow
func (b *Chatbot) processLogin(ctx context.Context, session *models.ChatSession, cmd Command) string {
	switch {
	case cmd.Kind == CmdLogin || session.State == models.StateInitial:
		session.State = models.StateAwaitingUsername
		session.PendingUsername = ""
		return msgAskUsername

	case session.State == models.StateAwaitingUsername:
		if cmd.Raw == "" {
			return msgAskUsername
		}
		session.PendingUsername = cmd.Raw
		session.State = models.StateAwaitingPassword
		return msgAskPassword

	case session.State == models.StateAwaitingPassword:
		if cmd.Raw == "" {
			return msgAskPassword
		}
		if session.PendingUsername == "" {
			session.State = models.StateAwaitingUsername
			return msgAskUsername
		}
		return b.verifyLogin(ctx, session, cmd.Raw)
	}

	return msgTypeLogin
}

func (b *Chatbot) verifyLogin(ctx context.Context, session *models.ChatSession, password string) string {
	username := session.PendingUsername
	user, err := b.auth.VerifyCredentials(ctx, username, password)

	switch {
	case errors.Is(err, ErrUserNotFound):
		b.metrics.RecordLogin("user_not_found")
		session.PendingUsername = ""
		session.State = models.StateAwaitingUsername
		return userNotFoundMessage(username)

	case errors.Is(err, ErrInvalidPassword):
		b.metrics.RecordLogin("invalid_password")
		session.FailedAttempts++
		b.logger.Warn().
			Str("phone", session.PhoneNumber).
			Str("username", username).
			Int("failed_attempts", session.FailedAttempts).
			Msg("chat login with wrong password")
		return msgInvalidPassword

	case err != nil:
		b.metrics.RecordLogin("error")
		b.logger.Error().Err(err).Str("phone", session.PhoneNumber).Msg("credential verification failed")
		return msgGenericError
	}

	b.metrics.RecordLogin("success")
	session.UserID = user.ID
	session.Authenticated = true
	session.State = models.StateAuthenticated
	session.PendingUsername = ""
	session.FailedAttempts = 0
	session.ClearFocus()

	b.logger.Info().Str("phone", session.PhoneNumber).Str("user_id", user.ID).Msg("chat login succeeded")
	return welcomeMessage(user.Name)
}

// commandHandler handles one command for an authenticated session. A
// returned error discards every change made to the session.
type commandHandler func(b *Chatbot, ctx context.Context, session *models.ChatSession, cmd Command) (string, error)

// globalCommands work from every post-login state
var globalCommands = map[CommandKind]commandHandler{
	CmdLogin:    (*Chatbot).alreadyLoggedIn,
	CmdLogout:   (*Chatbot).logout,
	CmdHelp:     (*Chatbot).help,
	CmdProjects: (*Chatbot).listProjects,
	CmdTasks:    (*Chatbot).listTasks,
	CmdPending:  (*Chatbot).listPending,
	CmdProject:  (*Chatbot).showProject,
	CmdTask:     (*Chatbot).showTask,
	CmdReport:   (*Chatbot).projectReport,
	CmdStatus:   (*Chatbot).status,
}

// stateCommands only exist inside a focused view
var stateCommands = map[models.ConversationState]map[CommandKind]commandHandler{
	models.StateViewingProject: {
		CmdBack:         (*Chatbot).back,
		CmdProjectTasks: (*Chatbot).listProjectTasks,
	},
	models.StateViewingTask: {
		CmdBack: (*Chatbot).back,
	},
}

func lookupHandler(state models.ConversationState, kind CommandKind) commandHandler {
	if h, ok := stateCommands[state][kind]; ok {
		return h
	}
	return globalCommands[kind]
}

// pick resolves a 1-based position argument against a list of n items.
// On failure it returns the reply to send instead.
func pick(cmd Command, n int, notFound string) (int, string) {
	i, err := strconv.Atoi(strings.TrimSpace(cmd.Arg))
	if err != nil {
		return 0, invalidNumberMessage(cmd.Kind.String())
	}
	if i < 1 || i > n {
		return 0, notFound
	}
	return i - 1, ""
}

func (b *Chatbot) alreadyLoggedIn(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	return msgAlreadyLoggedIn, nil
}

func (b *Chatbot) logout(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	b.logger.Info().Str("phone", session.PhoneNumber).Str("user_id", session.UserID).Msg("chat logout")
	session.Logout()
	return msgLoggedOut, nil
}

func (b *Chatbot) help(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	return helpText, nil
}

func (b *Chatbot) back(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	session.ClearFocus()
	session.State = models.StateAuthenticated
	return msgBack, nil
}

func (b *Chatbot) listProjects(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	projects, err := b.store.GetProjectsByUser(ctx, session.UserID)
	if err != nil {
		return "", err
	}
	if len(projects) == 0 {
		return msgNoProjects, nil
	}

	var sb strings.Builder
	sb.WriteString("📁 *Seus projetos:*\n")
	for i, p := range projects {
		fmt.Fprintf(&sb, "\n%d. *%s* - %s", i+1, p.Name, ProjectStatusLabel(p.Status))
	}
	sb.WriteString("\n\nDigite *projeto N* para ver detalhes ou *relatorio N* para o relatório.")
	return sb.String(), nil
}

func writeTaskLine(sb *strings.Builder, position int, t *models.Task) {
	fmt.Fprintf(sb, "\n%d. %s *%s* - %s", position, TaskStatusIcon(t.Status), t.Title, TaskStatusLabel(t.Status))
	if t.DueDate != nil {
		fmt.Fprintf(sb, " (até %s)", FormatDate(t.DueDate))
	}
}

func (b *Chatbot) listTasks(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	tasks, err := b.store.GetTasksByUser(ctx, session.UserID)
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return msgNoTasks, nil
	}

	var sb strings.Builder
	sb.WriteString("📋 *Suas tarefas:*\n")
	for i, t := range tasks {
		writeTaskLine(&sb, i+1, t)
	}
	sb.WriteString("\n\nDigite *tarefa N* para ver detalhes.")
	return sb.String(), nil
}

// listPending keeps each task's position from the full list so "tarefa N"
// still resolves to the task shown.
func (b *Chatbot) listPending(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	tasks, err := b.store.GetTasksByUser(ctx, session.UserID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	pending := 0
	for i, t := range tasks {
		if t.IsCompleted() {
			continue
		}
		if pending == 0 {
			sb.WriteString("⏳ *Tarefas pendentes:*\n")
		}
		pending++
		writeTaskLine(&sb, i+1, t)
	}
	if pending == 0 {
		return msgNoPendingTasks, nil
	}
	fmt.Fprintf(&sb, "\n\nTotal: %d pendente(s). Digite *tarefa N* para ver detalhes.", pending)
	return sb.String(), nil
}

func (b *Chatbot) showProject(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	projects, err := b.store.GetProjectsByUser(ctx, session.UserID)
	if err != nil {
		return "", err
	}
	idx, reply := pick(cmd, len(projects), msgProjectNotFound)
	if reply != "" {
		return reply, nil
	}
	project := projects[idx]

	tasks, err := b.store.GetTasksByProject(ctx, project.ID)
	if err != nil {
		return "", err
	}
	counts := CountTasks(tasks)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📁 *%s*\n", project.Name)
	if project.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", project.Description)
	}
	fmt.Fprintf(&sb, "\n*Status:* %s", ProjectStatusLabel(project.Status))
	fmt.Fprintf(&sb, "\n*Início:* %s", FormatDate(project.StartDate))
	fmt.Fprintf(&sb, "\n*Término:* %s", FormatDate(project.EndDate))
	fmt.Fprintf(&sb, "\n*Tarefas:* %d de %d concluídas (%d%%)", counts.Completed, counts.Total, counts.Progress())
	sb.WriteString(msgProjectNavigation)

	session.CurrentProjectID = project.ID
	session.CurrentTaskID = ""
	session.State = models.StateViewingProject
	return sb.String(), nil
}

func (b *Chatbot) listProjectTasks(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	project, err := b.store.GetProject(ctx, session.CurrentProjectID)
	if errors.Is(err, storage.ErrNotFound) {
		session.ClearFocus()
		session.State = models.StateAuthenticated
		return msgProjectNotFound, nil
	}
	if err != nil {
		return "", err
	}

	tasks, err := b.store.GetTasksByProject(ctx, project.ID)
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return msgNoProjectTasks, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 *Tarefas de %s:*\n", project.Name)
	for _, t := range tasks {
		fmt.Fprintf(&sb, "\n%s *%s* - %s | Prioridade %s", TaskStatusIcon(t.Status), t.Title, TaskStatusLabel(t.Status), PriorityLabel(t.Priority))
	}
	sb.WriteString(msgProjectNavigation)
	return sb.String(), nil
}

func (b *Chatbot) showTask(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	tasks, err := b.store.GetTasksByUser(ctx, session.UserID)
	if err != nil {
		return "", err
	}
	idx, reply := pick(cmd, len(tasks), msgTaskNotFound)
	if reply != "" {
		return reply, nil
	}
	task := tasks[idx]

	var (
		project *models.Project
		items   []*models.ChecklistItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := b.store.GetProject(gctx, task.ProjectID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		project = p
		return err
	})
	g.Go(func() error {
		var err error
		items, err = b.store.GetChecklistItems(gctx, task.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *%s*\n", TaskStatusIcon(task.Status), task.Title)
	if project != nil {
		fmt.Fprintf(&sb, "\n*Projeto:* %s", project.Name)
	}
	fmt.Fprintf(&sb, "\n*Status:* %s", TaskStatusLabel(task.Status))
	fmt.Fprintf(&sb, "\n*Prioridade:* %s", PriorityLabel(task.Priority))
	fmt.Fprintf(&sb, "\n*Prazo:* %s", FormatDate(task.DueDate))
	if task.IsOverdue(b.now()) {
		sb.WriteString(" ⚠️ atrasada")
	}
	if task.Description != "" {
		fmt.Fprintf(&sb, "\n\n%s", task.Description)
	}

	if len(items) > 0 {
		done := 0
		for _, item := range items {
			if item.Completed {
				done++
			}
		}
		fmt.Fprintf(&sb, "\n\n*Checklist (%d/%d):*", done, len(items))
		for _, item := range items {
			mark := "⬜"
			if item.Completed {
				mark = "✅"
			}
			fmt.Fprintf(&sb, "\n%s %s", mark, item.Content)
		}
	}
	sb.WriteString(msgTaskNavigation)

	session.CurrentTaskID = task.ID
	session.CurrentProjectID = ""
	session.State = models.StateViewingTask
	return sb.String(), nil
}

func (b *Chatbot) projectReport(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	projects, err := b.store.GetProjectsByUser(ctx, session.UserID)
	if err != nil {
		return "", err
	}
	idx, reply := pick(cmd, len(projects), msgProjectNotFound)
	if reply != "" {
		return reply, nil
	}
	project := projects[idx]

	var (
		tasks      []*models.Task
		activities []*models.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = b.store.GetTasksByProject(gctx, project.ID)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = b.store.GetActivitiesByProject(gctx, project.ID, recentActivityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	counts := CountTasks(tasks)
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Relatório: %s*\n", project.Name)
	fmt.Fprintf(&sb, "\n*Status:* %s", ProjectStatusLabel(project.Status))
	fmt.Fprintf(&sb, "\n*Progresso:* %d%% (%d de %d tarefas)\n\n", counts.Progress(), counts.Completed, counts.Total)
	sb.WriteString(counts.lines())

	sb.WriteString("\n\n*Atividades recentes:*")
	if len(activities) == 0 {
		sb.WriteString("\nNenhuma atividade registrada.")
	}
	for _, a := range activities {
		fmt.Fprintf(&sb, "\n• %s - %s", FormatDateTime(a.CreatedAt), a.Description)
	}
	return sb.String(), nil
}

func (b *Chatbot) status(ctx context.Context, session *models.ChatSession, cmd Command) (string, error) {
	var (
		projects []*models.Project
		tasks    []*models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = b.store.GetProjectsByUser(gctx, session.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = b.store.GetTasksByUser(gctx, session.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	now := b.now()
	counts := CountTasks(tasks)
	var sb strings.Builder
	sb.WriteString("📈 *Seu status:*\n")
	fmt.Fprintf(&sb, "\n📁 Projetos: %d", len(projects))
	fmt.Fprintf(&sb, "\n📋 Tarefas: %d\n\n", counts.Total)
	sb.WriteString(counts.lines())
	sb.WriteString("\n\n*Próximos prazos:*\n")
	sb.WriteString(formatDeadlines(UpcomingDeadlines(tasks, 3), now))
	return sb.String(), nil
}
