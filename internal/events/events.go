package events

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Kind names a task lifecycle change that affects the stats record
type Kind string

const (
	KindCreated   Kind = "task.created"
	KindCompleted Kind = "task.completed"
	KindReopened  Kind = "task.reopened"
)

// TaskEvent is published after a task write. At is the moment the change
// counts against: creation time, completion time, or for a reopened task
// the time it had been completed.
type TaskEvent struct {
	Kind   Kind      `json:"kind"`
	UserID string    `json:"userId"`
	TaskID string    `json:"taskId"`
	At     time.Time `json:"at"`
}

// Deltas returns the completed and total adjustments for the event.
func (e TaskEvent) Deltas() (completed, total int) {
	switch e.Kind {
	case KindCreated:
		return 0, 1
	case KindCompleted:
		return 1, 0
	case KindReopened:
		return -1, 0
	}
	return 0, 0
}

// Publisher hands task events to whatever applies them
type Publisher interface {
	Publish(ctx context.Context, event TaskEvent) error
}

// StatsRecorder is the stats store the applier writes to
type StatsRecorder interface {
	Record(ctx context.Context, userID string, day time.Time, completedDelta, totalDelta int) error
}

// Applier turns events into stats increments. Days are counted in loc,
// the zone the dashboard reads the trend in.
type Applier struct {
	stats    StatsRecorder
	location *time.Location
}

func NewApplier(stats StatsRecorder, loc *time.Location) *Applier {
	if loc == nil {
		loc = time.UTC
	}
	return &Applier{stats: stats, location: loc}
}

func (a *Applier) Apply(ctx context.Context, event TaskEvent) error {
	completed, total := event.Deltas()
	if completed == 0 && total == 0 {
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	if err := a.stats.Record(ctx, event.UserID, event.At.In(a.location), completed, total); err != nil {
		return fmt.Errorf("record stats for %s: %w", event.UserID, err)
	}
	return nil
}

// DirectPublisher applies events in-process, used when Pub/Sub is not
// configured.
type DirectPublisher struct {
	applier *Applier
}

func NewDirectPublisher(applier *Applier) *DirectPublisher {
	return &DirectPublisher{applier: applier}
}

func (p *DirectPublisher) Publish(ctx context.Context, event TaskEvent) error {
	return p.applier.Apply(ctx, event)
}

// PublishAsync publishes on a detached goroutine. Failures are logged and
// dropped; the task write that produced the event stays as it is.
func PublishAsync(publisher Publisher, event TaskEvent) {
	if publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := publisher.Publish(ctx, event); err != nil {
			log.Printf("[Events] failed to publish %s for task %s: %v", event.Kind, event.TaskID, err)
		}
	}()
}
