package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	authdomain "timesync-backend/internal/auth/domain"
	"timesync-backend/internal/task/domain"
	"timesync-backend/internal/task/repository"
	"timesync-backend/pkg/fcm"

	"github.com/robfig/cron/v3"
)

// Sender delivers push notifications and reports the tokens FCM rejected
type Sender interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]string, error)
}

// DeviceTokens is the part of the FCM token store the dispatcher needs
type DeviceTokens interface {
	GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.FCMToken, error)
	DeleteToken(ctx context.Context, token string) error
}

// Store reads the reminder queue and the tasks it points at
type Store interface {
	repository.ReminderQueue
	FindByID(ctx context.Context, userID, taskID string) (*domain.Task, error)
}

// TaskReminderScheduler sends FCM reminders for due queue entries
type TaskReminderScheduler struct {
	store    Store
	tokens   DeviceTokens
	sender   Sender
	interval time.Duration
	location *time.Location
	cron     *cron.Cron
	now      func() time.Time
}

// NewTaskReminderScheduler creates a new scheduler
func NewTaskReminderScheduler(
	store Store,
	tokens DeviceTokens,
	sender Sender,
	interval time.Duration,
	loc *time.Location,
) *TaskReminderScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TaskReminderScheduler{
		store:    store,
		tokens:   tokens,
		sender:   sender,
		interval: interval,
		location: loc,
		cron:     cron.New(cron.WithLocation(loc)),
		now:      time.Now,
	}
}

// Start registers the dispatch job and starts the cron runner
func (s *TaskReminderScheduler) Start() error {
	if s.sender == nil {
		log.Println("[TaskScheduler] FCM client not available, scheduler disabled")
		return nil
	}

	every := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(every, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			log.Printf("[TaskScheduler] Dispatch failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", every, err)
	}

	log.Printf("[TaskScheduler] Starting task reminder scheduler (interval: %s)", s.interval)
	s.cron.Start()
	return nil
}

// Stop waits for a running dispatch to finish
func (s *TaskReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[TaskScheduler] Scheduler stopped")
}

// RunOnce dispatches every due entry and returns how many were processed.
// Entries are marked processed whether or not delivery succeeded.
func (s *TaskReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	entries, err := s.store.FindDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("find due reminders: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	log.Printf("[TaskScheduler] Found %d due reminders", len(entries))
	for _, entry := range entries {
		s.dispatch(ctx, entry)
		if err := s.store.MarkProcessed(ctx, entry.ID); err != nil {
			log.Printf("[TaskScheduler] Error marking reminder %s as processed: %v", entry.ID, err)
		}
	}
	return len(entries), nil
}

func (s *TaskReminderScheduler) dispatch(ctx context.Context, entry *domain.ReminderEntry) {
	task, err := s.store.FindByID(ctx, entry.UserID, entry.TaskID)
	if err != nil {
		log.Printf("[TaskScheduler] Error loading task %s: %v", entry.TaskID, err)
		return
	}
	if task == nil || task.Completed || task.Reminder == nil || !task.Reminder.Active {
		return
	}

	tokens, err := s.tokens.GetTokensByUserID(ctx, entry.UserID)
	if err != nil {
		log.Printf("[TaskScheduler] Error getting FCM tokens for user %s: %v", entry.UserID, err)
		return
	}
	if len(tokens) == 0 {
		log.Printf("[TaskScheduler] No FCM tokens for user %s", entry.UserID)
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	failedTokens, err := s.sender.SendToDevices(ctx, tokenStrings, s.notification(task))
	if err != nil {
		log.Printf("[TaskScheduler] Error sending reminder for task %s: %v", task.ID, err)
		return
	}
	log.Printf("[TaskScheduler] Sent reminder for task '%s' to %d devices", task.Description, len(tokenStrings)-len(failedTokens))

	for _, token := range failedTokens {
		if err := s.tokens.DeleteToken(ctx, token); err != nil {
			log.Printf("[TaskScheduler] Error deleting stale token: %v", err)
		}
	}
}

func (s *TaskReminderScheduler) notification(task *domain.Task) fcm.NotificationData {
	badge := "🟢"
	switch {
	case task.Priority >= domain.PriorityHigh:
		badge = "🔴"
	case task.Priority == domain.PriorityMedium:
		badge = "🟡"
	}

	body := "You have a task to finish"
	if task.DueDate != nil {
		body = "Due " + task.DueDate.In(s.location).Format("02/01/2006 15:04")
	}

	return fcm.NotificationData{
		Title: badge + " Reminder: " + task.Description,
		Body:  body,
		Data: map[string]string{
			"type":     "task_reminder",
			"task_id":  task.ID,
			"priority": task.Priority.Label(),
			"category": task.Category,
		},
		ClickAction: "/dashboard",
	}
}
