package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rodrigopasa/launchajato/internal/metrics"
	"github.com/rodrigopasa/launchajato/internal/models"
	"github.com/rodrigopasa/launchajato/internal/services"
	"github.com/rodrigopasa/launchajato/internal/storage"
	"github.com/rodrigopasa/launchajato/internal/utils"
)

// Options configures the notification scheduler
type Options struct {
	SweepInterval time.Duration
	PollInterval  time.Duration
	Lookback      time.Duration
	// Notify disables activity alerts and digests when false; the session
	// sweep always runs.
	Notify bool
}

// NotificationJob runs the session sweep, activity alerts and daily digests
type NotificationJob struct {
	store    storage.Store
	sender   services.MessageSender
	sessions services.SessionStore
	metrics  *metrics.Metrics
	opts     Options
	cron     *cron.Cron
	seen     *SeenSet
	logger   zerolog.Logger
	now      func() time.Time

	mu         sync.Mutex
	lastDigest map[string]string // user id -> local date of the last digest
	running    bool
}

// JobOption configures a NotificationJob
type JobOption func(*NotificationJob)

// WithJobClock overrides the clock
func WithJobClock(now func() time.Time) JobOption {
	return func(n *NotificationJob) { n.now = now }
}

// WithJobMetrics attaches a metrics collector
func WithJobMetrics(m *metrics.Metrics) JobOption {
	return func(n *NotificationJob) { n.metrics = m }
}

// NewNotificationJob creates a new notification job scheduler
func NewNotificationJob(store storage.Store, sender services.MessageSender, sessions services.SessionStore,
	opts Options, logger zerolog.Logger, jobOpts ...JobOption) *NotificationJob {
	logger = logger.With().Str("component", "jobs").Logger()
	cl := cronLogger{logger: logger}

	n := &NotificationJob{
		store:      store,
		sender:     sender,
		sessions:   sessions,
		opts:       opts,
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		seen:       NewSeenSet(),
		logger:     logger,
		now:        time.Now,
		lastDigest: make(map[string]string),
	}
	for _, opt := range jobOpts {
		opt(n)
	}
	return n
}

// Start registers and starts all scheduled jobs
func (n *NotificationJob) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		n.logger.Warn().Msg("notification jobs already running")
		return nil
	}

	if _, err := n.cron.AddFunc(every(n.opts.SweepInterval), n.sweepSessions); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	if n.opts.Notify {
		if _, err := n.cron.AddFunc(every(n.opts.PollInterval), n.poll); err != nil {
			return fmt.Errorf("schedule notification poll: %w", err)
		}
	}

	n.cron.Start()
	n.running = true
	n.logger.Info().
		Dur("sweep_interval", n.opts.SweepInterval).
		Dur("poll_interval", n.opts.PollInterval).
		Bool("notifications", n.opts.Notify).
		Msg("⏰ scheduled jobs started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish
func (n *NotificationJob) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	n.mu.Unlock()

	<-n.cron.Stop().Done()
	n.logger.Info().Msg("scheduled jobs stopped")
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

func (n *NotificationJob) sweepSessions() {
	n.sessions.Sweep()
	n.metrics.SetActiveSessions(n.sessions.Count())
}

func (n *NotificationJob) poll() {
	ctx := context.Background()
	if err := n.CheckActivities(ctx); err != nil {
		n.logger.Error().Err(err).Msg("activity alerts failed")
	}
	if err := n.CheckDigests(ctx); err != nil {
		n.logger.Error().Err(err).Msg("daily digests failed")
	}
}

// CheckActivities sends one alert per recent activity to every other member
// of the activity's project that opted in.
func (n *NotificationJob) CheckActivities(ctx context.Context) error {
	since := n.now().Add(-n.opts.Lookback)
	defer n.seen.Prune(since)

	prefs, err := n.store.GetNotificationPreferences(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	activities, err := n.store.GetActivitiesSince(ctx, since)
	if err != nil {
		return fmt.Errorf("load activities: %w", err)
	}
	if len(activities) == 0 {
		return nil
	}

	var errs []error
	for _, pref := range prefs {
		if !pref.ActivityAlerts || pref.Phone == "" {
			continue
		}
		if err := n.alertUser(ctx, pref, activities); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *NotificationJob) alertUser(ctx context.Context, pref *models.NotificationPreference, activities []*models.Activity) error {
	projects, err := n.store.GetProjectsByUser(ctx, pref.UserID)
	if err != nil {
		return fmt.Errorf("projects of %s: %w", pref.UserID, err)
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	phone := utils.NormalizePhone(pref.Phone)
	for _, a := range activities {
		name, member := names[a.ProjectID]
		if !member || a.UserID == pref.UserID {
			continue
		}
		key := a.ID + ":" + pref.UserID
		if n.seen.Has(key) {
			continue
		}

		if err := n.sender.SendText(ctx, phone, activityAlert(name, a)); err != nil {
			n.metrics.RecordNotification("activity", "error")
			n.logger.Error().Err(err).Str("user_id", pref.UserID).Str("activity_id", a.ID).Msg("❌ failed to send activity alert")
			continue
		}
		n.seen.Add(key, a.CreatedAt)
		n.metrics.RecordNotification("activity", "sent")
	}
	return nil
}

func activityAlert(projectName string, a *models.Activity) string {
	return fmt.Sprintf("🔔 *%s*\n\n%s\n\n%s", projectName, a.Description, services.FormatDateTime(a.CreatedAt))
}

// CheckDigests sends the daily summary to users whose digest hour is now,
// at most once per local calendar day.
func (n *NotificationJob) CheckDigests(ctx context.Context) error {
	now := n.now()
	today := now.Format("2006-01-02")

	prefs, err := n.store.GetNotificationPreferences(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	var errs []error
	for _, pref := range prefs {
		if !pref.DailyDigest || pref.Phone == "" || pref.DigestHour != now.Hour() {
			continue
		}
		if n.digestSent(pref.UserID, today) {
			continue
		}

		user, err := n.store.GetUser(ctx, pref.UserID)
		if err != nil {
			errs = append(errs, fmt.Errorf("digest user %s: %w", pref.UserID, err))
			continue
		}
		body, err := services.BuildDigest(ctx, n.store, user, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := n.sender.SendText(ctx, utils.NormalizePhone(pref.Phone), body); err != nil {
			n.metrics.RecordNotification("digest", "error")
			n.logger.Error().Err(err).Str("user_id", pref.UserID).Msg("❌ failed to send daily digest")
			continue
		}
		n.markDigest(pref.UserID, today)
		n.metrics.RecordNotification("digest", "sent")
		n.logger.Info().Str("user_id", pref.UserID).Msg("☀️ daily digest sent")
	}
	return errors.Join(errs...)
}

func (n *NotificationJob) digestSent(userID, day string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastDigest[userID] == day
}

func (n *NotificationJob) markDigest(userID, day string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastDigest[userID] = day
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
