package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	authdomain "timesync-backend/internal/auth/domain"
	"timesync-backend/internal/task/domain"
	"timesync-backend/internal/task/repository"
	"timesync-backend/pkg/fcm"
)

type MockSender struct {
	SendToDevicesFunc func(ctx context.Context, tokens []string, n fcm.NotificationData) ([]string, error)
}

func (m *MockSender) SendToDevices(ctx context.Context, tokens []string, n fcm.NotificationData) ([]string, error) {
	return m.SendToDevicesFunc(ctx, tokens, n)
}

type MockDeviceTokens struct {
	GetTokensByUserIDFunc func(ctx context.Context, userID string) ([]authdomain.FCMToken, error)
	DeleteTokenFunc       func(ctx context.Context, token string) error
}

func (m *MockDeviceTokens) GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.FCMToken, error) {
	return m.GetTokensByUserIDFunc(ctx, userID)
}

func (m *MockDeviceTokens) DeleteToken(ctx context.Context, token string) error {
	return m.DeleteTokenFunc(ctx, token)
}

var base = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func addTask(t *testing.T, store repository.MemoryStore, userID, description string, remindAt time.Time) *domain.Task {
	t.Helper()
	ctx := context.Background()
	task := &domain.Task{Description: description, Priority: domain.PriorityHigh, Category: "work", CreatedAt: base}
	if err := store.Create(ctx, userID, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.SetReminder(ctx, userID, task.ID, remindAt); err != nil {
		t.Fatalf("SetReminder: %v", err)
	}
	return task
}

func TestRunOnceDispatchesDueReminders(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	due := addTask(t, store, "u1", "pay rent", base.Add(-time.Minute))
	addTask(t, store, "u1", "later", base.Add(time.Hour))
	done := addTask(t, store, "u1", "already done", base.Add(-time.Minute))
	done.SetCompleted(true, base)
	_ = store.Update(ctx, "u1", done)
	cleared := addTask(t, store, "u1", "cleared", base.Add(-time.Minute))
	// Deactivated on the task while the queue entry is still pending.
	cleared, _ = store.FindByID(ctx, "u1", cleared.ID)
	cleared.Reminder.Active = false
	_ = store.Update(ctx, "u1", cleared)

	var sent []fcm.NotificationData
	sender := &MockSender{SendToDevicesFunc: func(ctx context.Context, tokens []string, n fcm.NotificationData) ([]string, error) {
		if len(tokens) != 2 {
			t.Errorf("tokens = %v", tokens)
		}
		sent = append(sent, n)
		return []string{"stale"}, nil
	}}
	var deleted []string
	tokens := &MockDeviceTokens{
		GetTokensByUserIDFunc: func(ctx context.Context, userID string) ([]authdomain.FCMToken, error) {
			return []authdomain.FCMToken{{UserID: userID, Token: "ok"}, {UserID: userID, Token: "stale"}}, nil
		},
		DeleteTokenFunc: func(ctx context.Context, token string) error {
			deleted = append(deleted, token)
			return nil
		},
	}

	s := NewTaskReminderScheduler(store, tokens, sender, time.Minute, time.UTC)
	s.now = func() time.Time { return base }

	processed, err := s.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if processed != 3 {
		t.Errorf("processed = %d, want 3", processed)
	}
	if len(sent) != 1 || !strings.Contains(sent[0].Title, due.Description) || sent[0].Data["task_id"] != due.ID {
		t.Fatalf("sent = %+v", sent)
	}
	if sent[0].ClickAction != "/dashboard" {
		t.Errorf("click action = %q", sent[0].ClickAction)
	}
	if len(deleted) != 1 || deleted[0] != "stale" {
		t.Errorf("deleted = %v", deleted)
	}

	// Processed entries never fire twice.
	processed, _ = s.RunOnce(ctx)
	if processed != 0 || len(sent) != 1 {
		t.Errorf("second run processed %d, sent %d", processed, len(sent))
	}
}

func TestRunOnceMarksProcessedOnSendFailure(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	addTask(t, store, "u1", "call mom", base.Add(-time.Second))

	calls := 0
	sender := &MockSender{SendToDevicesFunc: func(ctx context.Context, tokens []string, n fcm.NotificationData) ([]string, error) {
		calls++
		return nil, errors.New("fcm unavailable")
	}}
	tokens := &MockDeviceTokens{
		GetTokensByUserIDFunc: func(ctx context.Context, userID string) ([]authdomain.FCMToken, error) {
			return []authdomain.FCMToken{{Token: "t"}}, nil
		},
		DeleteTokenFunc: func(ctx context.Context, token string) error {
			t.Fatal("no token should be deleted")
			return nil
		},
	}

	s := NewTaskReminderScheduler(store, tokens, sender, 0, nil)
	s.now = func() time.Time { return base }
	if s.interval != time.Minute {
		t.Errorf("interval = %s, want default 1m", s.interval)
	}

	_, _ = s.RunOnce(ctx)
	_, _ = s.RunOnce(ctx)
	if calls != 1 {
		t.Errorf("send calls = %d, want 1", calls)
	}
}

func TestNotificationBadge(t *testing.T) {
	s := NewTaskReminderScheduler(nil, nil, nil, time.Minute, time.UTC)
	due := base
	tests := []struct {
		priority domain.Priority
		badge    string
	}{
		{domain.PriorityHighest, "🔴"},
		{domain.PriorityHigh, "🔴"},
		{domain.PriorityMedium, "🟡"},
		{domain.PriorityLowest, "🟢"},
	}
	for _, tt := range tests {
		n := s.notification(&domain.Task{ID: "t", Description: "x", Priority: tt.priority, DueDate: &due})
		if !strings.HasPrefix(n.Title, tt.badge) {
			t.Errorf("priority %d: title = %q", tt.priority, n.Title)
		}
		if n.Body != "Due 10/05/2024 09:00" {
			t.Errorf("body = %q", n.Body)
		}
	}
}

func TestStartWithoutSenderIsDisabled(t *testing.T) {
	s := NewTaskReminderScheduler(repository.NewMemoryStore(), nil, nil, time.Minute, time.UTC)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(s.cron.Entries()) != 0 {
		t.Error("no job should be registered without a sender")
	}
}
