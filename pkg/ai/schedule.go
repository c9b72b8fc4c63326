package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// ScheduleService turns a task list into a suggested schedule
type ScheduleService struct {
	generator TextGenerator
}

func NewScheduleService(generator TextGenerator) *ScheduleService {
	return &ScheduleService{generator: generator}
}

// BuildSchedulePrompt renders one numbered line per task. Due dates are
// written as wall-clock time in loc (UTC when nil).
func BuildSchedulePrompt(tasks []ScheduleTask, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var sb strings.Builder
	sb.WriteString("You are a productivity assistant. Suggest an efficient schedule for the following tasks, ")
	sb.WriteString("considering their due dates and priorities. Keep the answer short and ordered.\n\n")
	sb.WriteString("Tasks:\n")
	for i, t := range tasks {
		due := "no due date"
		if t.DueDate != nil {
			due = "due " + t.DueDate.In(loc).Format("2006-01-02 15:04")
		}
		priority := t.Priority
		if priority == "" {
			priority = "unspecified"
		}
		fmt.Fprintf(&sb, "%d. %s (%s, priority %s)\n", i+1, t.Name, due, priority)
	}
	return sb.String()
}

// SuggestSchedule sends the tasks to the generator. Every failure is
// returned wrapped in ErrScheduleFetch; the cause stays reachable with
// errors.Is.
func (s *ScheduleService) SuggestSchedule(ctx context.Context, tasks []ScheduleTask, loc *time.Location) (string, error) {
	text, err := s.generator.Generate(ctx, BuildSchedulePrompt(tasks, loc))
	if err != nil {
		log.Printf("[AI] schedule suggestion failed: %v", err)
		return "", fmt.Errorf("%w: %w", ErrScheduleFetch, err)
	}
	return text, nil
}
