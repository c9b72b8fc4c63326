package usecase

import (
	"context"
	"testing"
	"time"

	authrepo "timesync-backend/internal/auth/repository"
	"timesync-backend/internal/events"
	"timesync-backend/internal/session"
	"timesync-backend/internal/task/repository"
	"timesync-backend/pkg/config"
)

// applyingPublisher applies events to the store and reports each one
type applyingPublisher struct {
	direct  *events.DirectPublisher
	applied chan error
}

func (p *applyingPublisher) Publish(ctx context.Context, event events.TaskEvent) error {
	err := p.direct.Publish(ctx, event)
	p.applied <- err
	return err
}

func (p *applyingPublisher) wait(t *testing.T) {
	t.Helper()
	select {
	case err := <-p.applied:
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was not applied")
	}
}

func TestAnalyticsTrendUsesConfiguredTimezone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ctx := context.Background()
	store := repository.NewMemoryStore()
	publisher := &applyingPublisher{
		direct:  events.NewDirectPublisher(events.NewApplier(store, la)),
		applied: make(chan error, 4),
	}
	cfg := &config.Config{CalendarEventMode: "hour", Timezone: "America/Los_Angeles"}
	uc := NewTaskUsecase(store, authrepo.NewMemoryProfileRepository(), publisher, nil, session.NewProvider(), cfg).(*taskUsecase)
	// Still May 9 in Los Angeles.
	uc.now = func() time.Time { return time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC) }

	task, err := uc.CreateTask(ctx, "u1", TaskInput{Description: "late night fix"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	publisher.wait(t)
	if _, err := uc.ToggleCompletion(ctx, "u1", task.ID, true); err != nil {
		t.Fatalf("complete: %v", err)
	}
	publisher.wait(t)

	analytics, err := uc.Analytics(ctx, "u1")
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	today := analytics.Trend[len(analytics.Trend)-1]
	if today.Date != "2024-5-9" || today.Completed != 1 || today.Total != 1 {
		t.Fatalf("today = %+v", today)
	}
}
