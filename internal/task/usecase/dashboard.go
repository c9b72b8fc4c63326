package usecase

import (
	"context"
	"sort"
	"strings"

	"timesync-backend/internal/task/domain"
	"timesync-backend/pkg/ai"
)

func (u *taskUsecase) Analytics(ctx context.Context, userID string) (*domain.Analytics, error) {
	tasks, err := u.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := u.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.ComputeAnalytics(tasks, stats, u.now().In(u.location)), nil
}

func (u *taskUsecase) Calendar(ctx context.Context, userID string) ([]domain.CalendarEvent, error) {
	tasks, err := u.activeTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.ProjectCalendar(tasks, u.calendarMode, u.location), nil
}

func (u *taskUsecase) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	tasks, err := u.activeTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	registered, err := u.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	inbox, err := u.store.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Tasks:         tasks,
		Tags:          domain.KnownTags(tasks),
		Categories:    categoryNames(registered, tasks),
		Events:        domain.ProjectCalendar(tasks, u.calendarMode, u.location),
		PendingShares: len(inbox),
	}, nil
}

// categoryNames merges the registry with categories only seen on tasks,
// one entry per key, sorted.
func categoryNames(registered []*domain.Category, tasks []*domain.Task) []string {
	seen := make(map[string]bool)
	names := []string{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		key := domain.CategoryKey(name)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		names = append(names, name)
	}
	for _, c := range registered {
		add(c.Name)
	}
	for _, t := range tasks {
		add(t.Category)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

func (u *taskUsecase) SuggestSchedule(ctx context.Context, userID string) (string, error) {
	if u.schedule == nil {
		return "", domain.ErrScheduleUnavailable
	}
	tasks, err := u.activeTasks(ctx, userID)
	if err != nil {
		return "", err
	}

	items := make([]ai.ScheduleTask, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, ai.ScheduleTask{
			Name:     t.Description,
			DueDate:  t.DueDate,
			Priority: t.Priority.Label(),
		})
	}
	return u.schedule.SuggestSchedule(ctx, items, u.location)
}
