package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	authdomain "timesync-backend/internal/auth/domain"
	"timesync-backend/internal/events"
	"timesync-backend/internal/session"
	"timesync-backend/internal/task/domain"
	"timesync-backend/internal/task/repository"
	"timesync-backend/pkg/ai"
	"timesync-backend/pkg/config"
	"timesync-backend/pkg/fuzzy"
)

// migrationTimeout bounds the sign-in migration, which runs outside any
// request context.
const migrationTimeout = 30 * time.Second

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	store        repository.Store
	profiles     ProfileDirectory
	publisher    events.Publisher
	schedule     *ai.ScheduleService
	calendarMode domain.CalendarMode
	location     *time.Location
	now          func() time.Time
}

// NewTaskUsecase creates a new instance of taskUsecase. When sessions is
// not nil, every sign-in migrates the user's legacy tasks.
func NewTaskUsecase(
	store repository.Store,
	profiles ProfileDirectory,
	publisher events.Publisher,
	schedule *ai.ScheduleService,
	sessions *session.Provider,
	cfg *config.Config,
) TaskUsecase {
	u := &taskUsecase{
		store:        store,
		profiles:     profiles,
		publisher:    publisher,
		schedule:     schedule,
		calendarMode: domain.ParseCalendarMode(cfg.CalendarEventMode),
		location:     cfg.Location(),
		now:          time.Now,
	}
	if sessions != nil {
		sessions.Subscribe(u.onSessionChange)
	}
	return u
}

func (u *taskUsecase) onSessionChange(identity *session.Identity) {
	if identity == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	moved, err := u.store.MoveLegacyTasks(ctx, identity.UserID)
	if err != nil {
		log.Printf("[TaskUsecase] Legacy migration for %s failed: %v", identity.UserID, err)
		return
	}
	if moved > 0 {
		log.Printf("[TaskUsecase] Migrated %d legacy tasks for %s", moved, identity.UserID)
	}
}

func (u *taskUsecase) activeTasks(ctx context.Context, userID string) ([]*domain.Task, error) {
	all, err := u.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks := make([]*domain.Task, 0, len(all))
	for _, t := range all {
		if !t.Archived {
			tasks = append(tasks, t)
		}
	}
	domain.SortByPriority(tasks)
	return tasks, nil
}

func (u *taskUsecase) FetchTasks(ctx context.Context, userID string, filter Filter) (*TaskList, error) {
	tasks, err := u.activeTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TaskList{
		Tasks: applyFilter(tasks, filter),
		Tags:  domain.KnownTags(tasks),
	}, nil
}

func applyFilter(tasks []*domain.Task, filter Filter) []*domain.Task {
	category := strings.TrimSpace(filter.Category)
	tag := strings.TrimSpace(filter.Tag)
	search := strings.TrimSpace(filter.Search)

	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		if tag != "" && !t.HasTag(tag) {
			continue
		}
		if search != "" && !fuzzy.MatchTask(search, t.Description, t.Category, t.Tags) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (u *taskUsecase) FetchArchived(ctx context.Context, userID string) ([]*domain.Task, error) {
	all, err := u.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	archived := make([]*domain.Task, 0)
	for _, t := range all {
		if t.Archived {
			archived = append(archived, t)
		}
	}
	sort.SliceStable(archived, func(i, j int) bool {
		a, b := archived[i].CompletedAt, archived[j].CompletedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return archived, nil
}

func (u *taskUsecase) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := u.store.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func parsePriority(p *int) (domain.Priority, error) {
	if p == nil {
		return domain.PriorityLowest, nil
	}
	priority := domain.Priority(*p)
	if !priority.Valid() {
		return 0, domain.ErrInvalidPriority
	}
	return priority, nil
}

func (u *taskUsecase) CreateTask(ctx context.Context, userID string, input TaskInput) (*domain.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.ErrEmptyDescription
	}
	priority, err := parsePriority(input.Priority)
	if err != nil {
		return nil, err
	}
	dueDate, ok := domain.ParseTimeInput(input.DueDate, u.location)
	if !ok {
		return nil, domain.ErrInvalidDueDate
	}
	reminderAt, ok := domain.ParseTimeInput(input.ReminderAt, u.location)
	if !ok {
		return nil, domain.ErrInvalidDueDate
	}
	now := u.now()
	if reminderAt != nil && !reminderAt.After(now) {
		return nil, domain.ErrReminderInPast
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	task := &domain.Task{
		UserID:      userID,
		Description: description,
		Priority:    priority,
		Category:    category,
		Tags:        domain.NormalizeTags(input.Tags),
		DueDate:     dueDate,
		CreatedAt:   now,
	}
	if err := u.store.Create(ctx, userID, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	u.registerCategory(ctx, userID, category)

	if reminderAt != nil {
		if err := u.store.SetReminder(ctx, userID, task.ID, *reminderAt); err != nil {
			return nil, fmt.Errorf("set reminder: %w", err)
		}
		task.Reminder = &domain.Reminder{Time: reminderAt, Active: true}
	}

	events.PublishAsync(u.publisher, events.TaskEvent{
		Kind:   events.KindCreated,
		UserID: userID,
		TaskID: task.ID,
		At:     now,
	})
	return task, nil
}

// registerCategory records a category on first use. Failures are logged;
// the task write already succeeded.
func (u *taskUsecase) registerCategory(ctx context.Context, userID, name string) {
	category, created, err := u.store.Register(ctx, userID, name)
	if err != nil {
		log.Printf("[TaskUsecase] Registering category %q for %s failed: %v", name, userID, err)
		return
	}
	if created {
		log.Printf("[TaskUsecase] New category %q for %s", category.Name, userID)
	}
}

func (u *taskUsecase) UpdateTask(ctx context.Context, userID, taskID string, updates TaskUpdateRequest) (*domain.Task, error) {
	task, err := u.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if updates.Description != nil {
		description := strings.TrimSpace(*updates.Description)
		if description == "" {
			return nil, domain.ErrEmptyDescription
		}
		task.Description = description
	}
	if updates.Priority != nil {
		priority, err := parsePriority(updates.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if updates.Tags != nil {
		task.Tags = domain.NormalizeTags(*updates.Tags)
	}
	if updates.DueDate != nil {
		dueDate, ok := domain.ParseTimeInput(*updates.DueDate, u.location)
		if !ok {
			return nil, domain.ErrInvalidDueDate
		}
		task.DueDate = dueDate
	}
	newCategory := false
	if updates.Category != nil {
		category := strings.TrimSpace(*updates.Category)
		if category == "" {
			category = domain.DefaultCategory
		}
		newCategory = domain.CategoryKey(category) != domain.CategoryKey(task.Category)
		task.Category = category
	}

	if err := u.store.Update(ctx, userID, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if newCategory {
		u.registerCategory(ctx, userID, task.Category)
	}
	return task, nil
}

func (u *taskUsecase) ToggleCompletion(ctx context.Context, userID, taskID string, completed bool) (*domain.Task, error) {
	task, err := u.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Completed == completed {
		return task, nil
	}

	previous := task.CompletedAt
	task.SetCompleted(completed, u.now())
	if err := u.store.Update(ctx, userID, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	event := events.TaskEvent{UserID: userID, TaskID: task.ID}
	switch {
	case completed:
		event.Kind, event.At = events.KindCompleted, *task.CompletedAt
	case previous != nil:
		event.Kind, event.At = events.KindReopened, *previous
	default:
		// Completed without a timestamp: nothing to take back.
		return task, nil
	}
	events.PublishAsync(u.publisher, event)
	return task, nil
}

func (u *taskUsecase) SetArchived(ctx context.Context, userID, taskID string, archived bool) (*domain.Task, error) {
	task, err := u.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Archived = archived
	if err := u.store.Update(ctx, userID, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID, taskID string) error {
	// Drop the queue entry along with the task.
	if err := u.store.ClearReminder(ctx, userID, taskID); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
		log.Printf("[TaskUsecase] Clearing reminder of %s failed: %v", taskID, err)
	}
	return u.store.Delete(ctx, userID, taskID)
}

func (u *taskUsecase) ShareTask(ctx context.Context, userID, taskID, recipientEmail string) (*domain.SharedTask, error) {
	email := authdomain.NormalizeEmail(recipientEmail)
	if email == "" {
		return nil, domain.ErrRecipientRequired
	}

	task, err := u.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	senderEmail := ""
	sender, err := u.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load sender profile: %w", err)
	}
	if sender != nil {
		senderEmail = sender.Email
	}
	if senderEmail == email {
		return nil, domain.ErrSelfShare
	}

	recipient, err := u.profiles.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find recipient: %w", err)
	}
	if recipient != nil && recipient.ID == userID {
		return nil, domain.ErrSelfShare
	}
	if recipient == nil {
		recipient, err = u.profiles.EnsurePlaceholder(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("create placeholder profile: %w", err)
		}
		log.Printf("[TaskUsecase] Created placeholder profile %s for a share", recipient.ID)
	}

	shared := domain.NewSharedTask(task, userID, senderEmail, u.now())
	if err := u.store.Send(ctx, recipient.ID, shared); err != nil {
		return nil, fmt.Errorf("send shared task: %w", err)
	}
	return shared, nil
}

func (u *taskUsecase) ListIncoming(ctx context.Context, userID string) ([]*domain.SharedTask, error) {
	return u.store.ListIncoming(ctx, userID)
}

func (u *taskUsecase) AcceptShare(ctx context.Context, userID, shareID string) (*domain.Task, error) {
	task, err := u.store.Accept(ctx, userID, shareID)
	if err != nil {
		return nil, err
	}
	u.registerCategory(ctx, userID, task.Category)
	events.PublishAsync(u.publisher, events.TaskEvent{
		Kind:   events.KindCreated,
		UserID: userID,
		TaskID: task.ID,
		At:     task.CreatedAt,
	})
	return task, nil
}

func (u *taskUsecase) DeclineShare(ctx context.Context, userID, shareID string) error {
	return u.store.Decline(ctx, userID, shareID)
}

func (u *taskUsecase) SetReminder(ctx context.Context, userID, taskID string, at time.Time) (*domain.Task, error) {
	if !at.After(u.now()) {
		return nil, domain.ErrReminderInPast
	}
	if err := u.store.SetReminder(ctx, userID, taskID, at); err != nil {
		return nil, err
	}
	return u.GetTask(ctx, userID, taskID)
}

func (u *taskUsecase) ClearReminder(ctx context.Context, userID, taskID string) error {
	return u.store.ClearReminder(ctx, userID, taskID)
}

func (u *taskUsecase) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	return u.store.ListByUser(ctx, userID)
}

func (u *taskUsecase) RegisterCategory(ctx context.Context, userID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyCategory
	}
	category, _, err := u.store.Register(ctx, userID, name)
	return category, err
}

func (u *taskUsecase) MigrateLegacy(ctx context.Context, userID string, dryRun bool) (*MigrationResult, error) {
	found, err := u.store.CountLegacy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count legacy tasks: %w", err)
	}
	result := &MigrationResult{Found: found, DryRun: dryRun}
	if dryRun || found == 0 {
		return result, nil
	}

	moved, err := u.store.MoveLegacyTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("move legacy tasks: %w", err)
	}
	result.Moved = moved
	log.Printf("[TaskUsecase] Migrated %d/%d legacy tasks for %s", moved, found, userID)
	return result, nil
}
