package domain

import "time"

// CalendarMode selects how a due time becomes a calendar window
type CalendarMode string

const (
	// CalendarModeHour spans one hour starting at the due time.
	CalendarModeHour CalendarMode = "hour"
	// CalendarModeDay spans from the start of the due day to the due time.
	CalendarModeDay CalendarMode = "day"
)

// ParseCalendarMode falls back to CalendarModeHour for unknown values.
func ParseCalendarMode(s string) CalendarMode {
	if CalendarMode(s) == CalendarModeDay {
		return CalendarModeDay
	}
	return CalendarModeHour
}

// CalendarEvent is the calendar projection of a task
type CalendarEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Priority  Priority  `json:"priority"`
	Category  string    `json:"category"`
	Completed bool      `json:"completed"`
}

// ProjectCalendar turns every task with a due time into an event. Tasks
// without one are skipped.
func ProjectCalendar(tasks []*Task, mode CalendarMode, loc *time.Location) []CalendarEvent {
	if loc == nil {
		loc = time.UTC
	}
	events := make([]CalendarEvent, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := t.DueDate.In(loc)
		start, end := due, due.Add(time.Hour)
		if mode == CalendarModeDay {
			start = time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc)
			end = due
		}
		events = append(events, CalendarEvent{
			ID:        t.ID,
			Title:     t.Description,
			Start:     start,
			End:       end,
			Priority:  t.Priority,
			Category:  t.Category,
			Completed: t.Completed,
		})
	}
	return events
}
