package usecase

import (
	"context"
	"time"

	authdomain "timesync-backend/internal/auth/domain"
	"timesync-backend/internal/task/domain"
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// FetchTasks returns the user's active tasks, highest priority first,
	// narrowed by filter, plus the tags known across all active tasks
	FetchTasks(ctx context.Context, userID string, filter Filter) (*TaskList, error)

	// FetchArchived returns archived tasks, most recently completed first
	FetchArchived(ctx context.Context, userID string) ([]*domain.Task, error)

	GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error)
	CreateTask(ctx context.Context, userID string, input TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, updates TaskUpdateRequest) (*domain.Task, error)

	// ToggleCompletion completes (and archives) or reopens a task
	ToggleCompletion(ctx context.Context, userID, taskID string, completed bool) (*domain.Task, error)
	SetArchived(ctx context.Context, userID, taskID string, archived bool) (*domain.Task, error)

	// DeleteTask succeeds when the task is already gone
	DeleteTask(ctx context.Context, userID, taskID string) error

	// ShareTask drops a copy of the task into the recipient's inbox
	ShareTask(ctx context.Context, userID, taskID, recipientEmail string) (*domain.SharedTask, error)
	ListIncoming(ctx context.Context, userID string) ([]*domain.SharedTask, error)
	AcceptShare(ctx context.Context, userID, shareID string) (*domain.Task, error)
	DeclineShare(ctx context.Context, userID, shareID string) error

	SetReminder(ctx context.Context, userID, taskID string, at time.Time) (*domain.Task, error)
	ClearReminder(ctx context.Context, userID, taskID string) error

	ListCategories(ctx context.Context, userID string) ([]*domain.Category, error)
	RegisterCategory(ctx context.Context, userID, name string) (*domain.Category, error)

	Analytics(ctx context.Context, userID string) (*domain.Analytics, error)
	Calendar(ctx context.Context, userID string) ([]domain.CalendarEvent, error)
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)

	// MigrateLegacy moves the user's records out of the flat legacy
	// collection. With dryRun it only counts them.
	MigrateLegacy(ctx context.Context, userID string, dryRun bool) (*MigrationResult, error)

	// SuggestSchedule asks the text generator to plan the active tasks
	SuggestSchedule(ctx context.Context, userID string) (string, error)
}

// ProfileDirectory resolves share recipients and senders
type ProfileDirectory interface {
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	EnsurePlaceholder(ctx context.Context, email string) (*authdomain.User, error)
}

// Filter narrows the active task list. Empty fields match everything.
type Filter struct {
	Category string
	Tag      string
	Search   string
}

type TaskList struct {
	Tasks []*domain.Task `json:"tasks"`
	Tags  []string       `json:"tags"`
}

// TaskInput is the body of the task-entry form
type TaskInput struct {
	Description string   `json:"task"`
	Priority    *int     `json:"priority"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	DueDate     string   `json:"due_date"`
	ReminderAt  string   `json:"reminder_at"`
}

// TaskUpdateRequest represents the fields that can be updated.
// An empty DueDate clears the due time.
type TaskUpdateRequest struct {
	Description *string   `json:"task,omitempty"`
	Priority    *int      `json:"priority,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
}

type Dashboard struct {
	Tasks         []*domain.Task         `json:"tasks"`
	Tags          []string               `json:"tags"`
	Categories    []string               `json:"categories"`
	Events        []domain.CalendarEvent `json:"events"`
	PendingShares int                    `json:"pending_shares"`
}

type MigrationResult struct {
	Found  int  `json:"found"`
	Moved  int  `json:"moved"`
	DryRun bool `json:"dry_run"`
}
