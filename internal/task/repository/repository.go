package repository

import (
	"context"
	"time"

	"timesync-backend/internal/task/domain"
)

// TaskRepository defines data access for tasks under users/{uid}/tasks
type TaskRepository interface {
	// Create assigns an ID and stores the task in the user's namespace
	Create(ctx context.Context, userID string, task *domain.Task) error

	// FindByID returns nil, nil when the task does not exist
	FindByID(ctx context.Context, userID, taskID string) (*domain.Task, error)

	// FindByUserID returns every task of the user in store order
	FindByUserID(ctx context.Context, userID string) ([]*domain.Task, error)

	Update(ctx context.Context, userID string, task *domain.Task) error

	// Delete succeeds when the task is already gone
	Delete(ctx context.Context, userID, taskID string) error

	// SetReminder writes the task's reminder and its queue entry atomically.
	// Returns domain.ErrTaskNotFound when the task does not exist.
	SetReminder(ctx context.Context, userID, taskID string, at time.Time) error

	// ClearReminder deactivates the reminder and removes its queue entry
	ClearReminder(ctx context.Context, userID, taskID string) error
}

// LegacyRepository moves records out of the flat tasks collection
type LegacyRepository interface {
	// CountLegacy returns how many legacy records belong to the user
	CountLegacy(ctx context.Context, userID string) (int, error)

	// MoveLegacyTasks copies each legacy record into the user's namespace,
	// keeping its ID, and deletes the original in the same transaction.
	// Returns the number of records moved.
	MoveLegacyTasks(ctx context.Context, userID string) (int, error)
}

// ShareRepository manages users/{uid}/incomingSharedTasks inboxes
type ShareRepository interface {
	Send(ctx context.Context, recipientID string, shared *domain.SharedTask) error
	ListIncoming(ctx context.Context, userID string) ([]*domain.SharedTask, error)

	// Accept copies the share into the user's tasks and removes it from the
	// inbox atomically
	Accept(ctx context.Context, userID, shareID string) (*domain.Task, error)

	Decline(ctx context.Context, userID, shareID string) error

	// TransferInbox moves every pending share from one user to another
	TransferInbox(ctx context.Context, fromUserID, toUserID string) (int, error)
}

// CategoryRepository is the per-user category registry
type CategoryRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Category, error)

	// Register creates the category unless one with the same key exists.
	// The boolean reports whether a new record was written.
	Register(ctx context.Context, userID, name string) (*domain.Category, bool, error)
}

// StatsRepository reads and increments users/{uid}/stats/taskStats
type StatsRepository interface {
	Get(ctx context.Context, userID string) (*domain.Stats, error)
	Record(ctx context.Context, userID string, day time.Time, completedDelta, totalDelta int) error
}

// ReminderQueue is the consumer side of the global reminders collection
type ReminderQueue interface {
	FindDue(ctx context.Context, now time.Time) ([]*domain.ReminderEntry, error)
	MarkProcessed(ctx context.Context, entryID string) error
}

// Store groups every repository backed by the same document store
type Store interface {
	TaskRepository
	LegacyRepository
	ShareRepository
	CategoryRepository
	StatsRepository
	ReminderQueue
}
