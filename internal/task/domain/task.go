package domain

import (
	"sort"
	"strings"
	"time"
)

// DefaultCategory is assigned to tasks created or migrated without one.
const DefaultCategory = "work"

// SharedDefaultCategory is assigned to shared tasks that carry no category.
const SharedDefaultCategory = "General"

// ShareStatus tracks a shared task through the recipient's inbox
type ShareStatus string

const (
	ShareStatusPending  ShareStatus = "pending"
	ShareStatusAccepted ShareStatus = "accepted"
	ShareStatusDeclined ShareStatus = "declined"
)

// Reminder is the per-task reminder sub-record
type Reminder struct {
	Time   *time.Time `json:"time,omitempty"`
	Active bool       `json:"active"`
}

// Task is a to-do item stored under users/{uid}/tasks
type Task struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Description string      `json:"task"`
	Priority    Priority    `json:"priority"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	Completed   bool        `json:"completed"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Archived    bool        `json:"archived"`
	Reminder    *Reminder   `json:"reminder,omitempty"`
	SharedFrom  string      `json:"shared_from,omitempty"`
	SharedBy    string      `json:"shared_by,omitempty"`
	ShareStatus ShareStatus `json:"share_status,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// SetCompleted applies the completion toggle. Completing archives the task;
// reopening clears the completion time but keeps the archived flag as is.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	t.Completed = completed
	if completed {
		t.CompletedAt = &now
		t.Archived = true
		return
	}
	t.CompletedAt = nil
}

// IsOverdue reports whether an open task is past its due time.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// HasTag reports tag membership, ignoring case.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// ApplyMigrationDefaults backfills fields the legacy flat layout lacked.
func (t *Task) ApplyMigrationDefaults() {
	if strings.TrimSpace(t.Category) == "" {
		t.Category = DefaultCategory
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if !t.Priority.Valid() {
		t.Priority = PriorityLowest
	}
	t.Completed = false
	t.CompletedAt = nil
	t.Archived = false
}

// NormalizeTags trims, drops empties and de-duplicates case-insensitively,
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

// SortByPriority orders tasks highest priority first. Ties keep their
// incoming order.
func SortByPriority(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority > tasks[j].Priority
	})
}

// KnownTags is the sorted union of all tags on the given tasks.
func KnownTags(tasks []*Task) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// SharedTask is an entry in users/{uid}/incomingSharedTasks awaiting a decision
type SharedTask struct {
	ID          string      `json:"id"`
	Description string      `json:"task"`
	Priority    Priority    `json:"priority"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	SharedFrom  string      `json:"shared_from"`
	SharedBy    string      `json:"shared_by"`
	Status      ShareStatus `json:"status"`
	SharedAt    time.Time   `json:"shared_at"`
}

// NewSharedTask builds the inbox record sent to a recipient.
func NewSharedTask(src *Task, senderID, senderEmail string, now time.Time) *SharedTask {
	priority := src.Priority
	if !priority.Valid() {
		priority = PriorityMedium
	}
	category := strings.TrimSpace(src.Category)
	if category == "" {
		category = SharedDefaultCategory
	}
	tags := src.Tags
	if tags == nil {
		tags = []string{}
	}
	return &SharedTask{
		Description: src.Description,
		Priority:    priority,
		Category:    category,
		Tags:        append([]string{}, tags...),
		DueDate:     src.DueDate,
		SharedFrom:  senderID,
		SharedBy:    senderEmail,
		Status:      ShareStatusPending,
		SharedAt:    now,
	}
}

// ToTask converts an accepted share into a task in the recipient namespace.
func (s *SharedTask) ToTask(recipientID string, now time.Time) *Task {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Task{
		UserID:      recipientID,
		Description: s.Description,
		Priority:    s.Priority,
		Category:    s.Category,
		Tags:        append([]string{}, tags...),
		DueDate:     s.DueDate,
		SharedFrom:  s.SharedFrom,
		SharedBy:    s.SharedBy,
		ShareStatus: ShareStatusAccepted,
		CreatedAt:   now,
	}
}

// ReminderEntry is a record in the global reminders queue
type ReminderEntry struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	TaskID        string    `json:"task_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Processed     bool      `json:"processed"`
}

// ReminderEntryID is the queue key for a user's task.
func ReminderEntryID(userID, taskID string) string {
	return userID + "_" + taskID
}
