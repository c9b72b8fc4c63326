package repository

import (
	"sort"
	"strings"
	"time"

	"timesync-backend/internal/task/domain"
)

// Paths and field names are the ones the web client reads and writes:
// users/{uid}/incomingSharedTasks, users/{uid}/stats/taskStats and the
// global reminders collection.
const (
	collectionUsers         = "users"
	collectionTasks         = "tasks"
	collectionIncomingTasks = "incomingSharedTasks"
	collectionCategories    = "categories"
	collectionStats         = "stats"
	collectionReminders     = "reminders"

	statsDocID = "taskStats"
)

const (
	fieldTask            = "task"
	fieldPriority        = "priority"
	fieldCategory        = "category"
	fieldTags            = "tags"
	fieldTimestamp       = "timestamp"
	fieldDueDate         = "dueDate"
	fieldCompleted       = "completed"
	fieldCompletedAt     = "completedAt"
	fieldArchived        = "archived"
	fieldReminder        = "reminder"
	fieldReminderTime    = "time"
	fieldReminderActive  = "isActive"
	fieldIsShared        = "isShared"
	fieldOriginalOwnerID = "originalOwnerId"
	fieldSharedBy        = "sharedBy"
	fieldShareStatus     = "shareStatus"
	fieldSharedAt        = "sharedAt"
	fieldCreatedAt       = "createdAt"
	fieldUserID          = "userId"
	fieldTaskID          = "taskId"
	fieldTaskTitle       = "taskTitle"
	fieldReminderAt      = "reminderTime"
	fieldIsProcessed     = "isProcessed"
	fieldName            = "name"
	fieldDaily           = "daily"
	fieldMonthly         = "monthly"
)

// Names written by earlier versions of this service. Read only.
const (
	legacyFieldSharedFrom     = "sharedFrom"
	legacyFieldStatus         = "status"
	legacyFieldActive         = "active"
	legacyFieldScheduledTime  = "scheduledTime"
	legacyFieldProcessed      = "processed"
	legacyFieldSharedDueStamp = "timestamp"
)

func timeValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func encodeTask(t *domain.Task) map[string]interface{} {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	data := map[string]interface{}{
		fieldTask:        t.Description,
		fieldPriority:    int64(t.Priority),
		fieldCategory:    t.Category,
		fieldTags:        tags,
		fieldTimestamp:   timeValue(t.DueDate),
		fieldCompleted:   t.Completed,
		fieldCompletedAt: timeValue(t.CompletedAt),
		fieldArchived:    t.Archived,
		fieldCreatedAt:   t.CreatedAt,
	}
	if t.Reminder != nil {
		data[fieldReminder] = encodeReminder(t.Reminder.Time, t.Reminder.Active)
	}
	if t.SharedFrom != "" {
		data[fieldIsShared] = true
		data[fieldOriginalOwnerID] = t.SharedFrom
		data[fieldSharedBy] = t.SharedBy
		data[fieldShareStatus] = string(t.ShareStatus)
	}
	return data
}

func encodeReminder(at *time.Time, active bool) map[string]interface{} {
	return map[string]interface{}{
		fieldReminderTime:   timeValue(at),
		fieldReminderActive: active,
	}
}

// decodeTask builds a task from raw document data. Due dates go through
// domain.NormalizeTimestamp since older documents stored them in several
// shapes.
func decodeTask(id, userID string, data map[string]interface{}) *domain.Task {
	t := &domain.Task{
		ID:          id,
		UserID:      userID,
		Description: stringField(data, fieldTask),
		Category:    stringField(data, fieldCategory),
		Tags:        stringsField(data[fieldTags]),
		Completed:   boolField(data, fieldCompleted),
		CompletedAt: domain.NormalizeTimestamp(data[fieldCompletedAt]),
		Archived:    boolField(data, fieldArchived),
		SharedFrom:  stringField(data, fieldOriginalOwnerID, legacyFieldSharedFrom),
		SharedBy:    stringField(data, fieldSharedBy),
		ShareStatus: domain.ShareStatus(stringField(data, fieldShareStatus)),
	}
	if p, ok := domain.ParsePriority(data[fieldPriority]); ok {
		t.Priority = p
	}
	t.DueDate = domain.NormalizeTimestamp(data[fieldTimestamp])
	if t.DueDate == nil {
		// accepted shares copied by the web client keep the due date here
		t.DueDate = domain.NormalizeTimestamp(data[fieldDueDate])
	}
	if created := domain.NormalizeTimestamp(data[fieldCreatedAt]); created != nil {
		t.CreatedAt = *created
	}
	if r, ok := data[fieldReminder].(map[string]interface{}); ok {
		active, ok := r[fieldReminderActive].(bool)
		if !ok {
			active, _ = r[legacyFieldActive].(bool)
		}
		t.Reminder = &domain.Reminder{
			Time:   domain.NormalizeTimestamp(r[fieldReminderTime]),
			Active: active,
		}
	}
	return t
}

// encodeSharedTask writes the web client's shape: the due date under
// dueDate and the share time under timestamp.
func encodeSharedTask(s *domain.SharedTask) map[string]interface{} {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]interface{}{
		fieldTask:            s.Description,
		fieldPriority:        int64(s.Priority),
		fieldCategory:        s.Category,
		fieldTags:            tags,
		fieldDueDate:         timeValue(s.DueDate),
		fieldTimestamp:       s.SharedAt,
		fieldCompleted:       false,
		fieldArchived:        false,
		fieldIsShared:        true,
		fieldOriginalOwnerID: s.SharedFrom,
		fieldSharedBy:        s.SharedBy,
		fieldShareStatus:     string(s.Status),
		fieldSharedAt:        s.SharedAt,
	}
}

func decodeSharedTask(id string, data map[string]interface{}) *domain.SharedTask {
	s := &domain.SharedTask{
		ID:          id,
		Description: stringField(data, fieldTask),
		Category:    stringField(data, fieldCategory),
		Tags:        stringsField(data[fieldTags]),
		SharedFrom:  stringField(data, fieldOriginalOwnerID, legacyFieldSharedFrom),
		SharedBy:    stringField(data, fieldSharedBy),
		Status:      domain.ShareStatus(stringField(data, fieldShareStatus, legacyFieldStatus)),
	}
	s.Priority = domain.PriorityMedium
	if p, ok := domain.ParsePriority(data[fieldPriority]); ok {
		s.Priority = p
	}
	if s.Category == "" {
		s.Category = domain.SharedDefaultCategory
	}

	// Documents that carry dueDate (or sharedAt) use timestamp for the
	// share time. Only the oldest ones, with neither, kept the due date
	// in timestamp.
	_, hasDue := data[fieldDueDate]
	_, hasSharedAt := data[fieldSharedAt]
	if hasDue || hasSharedAt {
		s.DueDate = domain.NormalizeTimestamp(data[fieldDueDate])
	} else {
		s.DueDate = domain.NormalizeTimestamp(data[legacyFieldSharedDueStamp])
	}
	if at := domain.NormalizeTimestamp(data[fieldSharedAt]); at != nil {
		s.SharedAt = *at
	} else if hasDue {
		if at := domain.NormalizeTimestamp(data[fieldTimestamp]); at != nil {
			s.SharedAt = *at
		}
	}
	return s
}

func encodeReminderEntry(userID, taskID, title string, at, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		fieldUserID:      userID,
		fieldTaskID:      taskID,
		fieldTaskTitle:   title,
		fieldReminderAt:  at,
		fieldIsProcessed: false,
		fieldCreatedAt:   now,
	}
}

func decodeReminderEntry(id string, data map[string]interface{}) *domain.ReminderEntry {
	processed, ok := data[fieldIsProcessed].(bool)
	if !ok {
		processed, _ = data[legacyFieldProcessed].(bool)
	}
	e := &domain.ReminderEntry{
		ID:        id,
		UserID:    stringField(data, fieldUserID),
		TaskID:    stringField(data, fieldTaskID),
		Processed: processed,
	}
	at := domain.NormalizeTimestamp(data[fieldReminderAt])
	if at == nil {
		at = domain.NormalizeTimestamp(data[legacyFieldScheduledTime])
	}
	if at != nil {
		e.ScheduledTime = *at
	}
	return e
}

func decodeCategory(id string, data map[string]interface{}) *domain.Category {
	c := &domain.Category{ID: id, Name: stringField(data, fieldName)}
	if at := domain.NormalizeTimestamp(data[fieldCreatedAt]); at != nil {
		c.CreatedAt = *at
	}
	return c
}

func sortCategories(categories []*domain.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
}

func decodeStats(data map[string]interface{}) *domain.Stats {
	stats := domain.NewStats()
	decodeCounts(data[fieldDaily], stats.Daily, domain.CanonicalDayKey)
	decodeCounts(data[fieldMonthly], stats.Monthly, domain.CanonicalMonthKey)
	return stats
}

// decodeCounts merges entries whose keys differ only in zero padding.
func decodeCounts(v interface{}, into map[string]domain.Counts, canonical func(string) (string, bool)) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return
	}
	for key, raw := range m {
		fields, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		key, ok = canonical(key)
		if !ok {
			continue
		}
		c := into[key]
		c.Completed += intField(fields, "completed")
		c.Total += intField(fields, "total")
		into[key] = c
	}
}

func stringField(data map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func boolField(data map[string]interface{}, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func intField(data map[string]interface{}, key string) int {
	switch n := data[key].(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func stringsField(v interface{}) []string {
	out := []string{}
	switch vals := v.(type) {
	case []string:
		out = append(out, vals...)
	case []interface{}:
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
