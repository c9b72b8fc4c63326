package repository

import (
	"testing"
	"time"

	"timesync-backend/internal/task/domain"
)

func TestDecodeTaskHeterogeneousDueDates(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	cases := map[string]interface{}{
		"native":  want,
		"seconds": map[string]interface{}{"seconds": want.Unix(), "nanoseconds": int64(0)},
		"iso":     "2025-05-01T08:00:00Z",
	}
	for name, raw := range cases {
		task := decodeTask("id", "u1", map[string]interface{}{"task": name, "timestamp": raw})
		if task.DueDate == nil || !task.DueDate.Equal(want) {
			t.Errorf("%s: DueDate = %v, want %v", name, task.DueDate, want)
		}
	}

	if task := decodeTask("id", "u1", map[string]interface{}{"task": "none"}); task.DueDate != nil {
		t.Errorf("absent due date decoded as %v", task.DueDate)
	}
	shared := decodeTask("id", "u1", map[string]interface{}{"dueDate": "2025-05-01T08:00:00Z"})
	if shared.DueDate == nil || !shared.DueDate.Equal(want) {
		t.Errorf("dueDate fallback = %v", shared.DueDate)
	}
}

func TestDecodeTaskPriorityAndReminder(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC)
	task := decodeTask("id", "u1", map[string]interface{}{
		"priority": "high",
		"tags":     []interface{}{"a", 3, "b"},
		"reminder": map[string]interface{}{"time": at, "isActive": true},
	})

	if task.Priority != domain.PriorityHigh {
		t.Errorf("Priority = %v", task.Priority)
	}
	if len(task.Tags) != 2 || task.Tags[1] != "b" {
		t.Errorf("Tags = %v", task.Tags)
	}
	if task.Reminder == nil || !task.Reminder.Active || !task.Reminder.Time.Equal(at) {
		t.Errorf("Reminder = %+v", task.Reminder)
	}
}

func TestEncodeDecodeSharedTaskDefaults(t *testing.T) {
	t.Parallel()

	s := decodeSharedTask("s1", map[string]interface{}{"task": "x", "priority": "not a priority"})
	if s.Priority != domain.PriorityMedium || s.Category != domain.SharedDefaultCategory || s.Tags == nil {
		t.Fatalf("defaults = %+v", s)
	}
}

func TestDecodeStats(t *testing.T) {
	t.Parallel()

	stats := decodeStats(map[string]interface{}{
		"daily": map[string]interface{}{
			"2025-1-1":   map[string]interface{}{"completed": int64(2), "total": int64(5)},
			"2025-01-01": map[string]interface{}{"completed": int64(1)},
			"bad":        "value",
			"not-a-date": map[string]interface{}{"total": int64(3)},
		},
		"monthly": map[string]interface{}{
			"2025-01": map[string]interface{}{"completed": float64(2)},
		},
	})
	if got := stats.Daily["2025-1-1"]; got.Completed != 3 || got.Total != 5 {
		t.Fatalf("daily = %+v", got)
	}
	if len(stats.Daily) != 1 {
		t.Fatalf("malformed entries should be skipped, got %v", stats.Daily)
	}
	if stats.Monthly["2025-1"].Completed != 2 {
		t.Fatalf("monthly = %+v", stats.Monthly)
	}
}

// Documents below are shaped the way the web client writes them.

func TestDecodeWebClientSharedTask(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	sharedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := decodeSharedTask("s1", map[string]interface{}{
		"task":            "review deck",
		"priority":        "High",
		"dueDate":         due,
		"category":        "General",
		"tags":            []interface{}{"q3"},
		"timestamp":       sharedAt,
		"completed":       false,
		"archived":        false,
		"isShared":        true,
		"sharedBy":        "boss@example.com",
		"originalOwnerId": "boss",
		"sharedAt":        sharedAt,
		"shareStatus":     "pending",
	})

	if s.DueDate == nil || !s.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", s.DueDate, due)
	}
	if !s.SharedAt.Equal(sharedAt) {
		t.Errorf("SharedAt = %v", s.SharedAt)
	}
	if s.SharedFrom != "boss" || s.SharedBy != "boss@example.com" || s.Status != domain.ShareStatusPending {
		t.Errorf("share metadata = %+v", s)
	}
	if s.Priority != domain.PriorityHigh {
		t.Errorf("Priority = %v", s.Priority)
	}

	noDue := decodeSharedTask("s2", map[string]interface{}{
		"task":      "x",
		"dueDate":   nil,
		"timestamp": sharedAt,
	})
	if noDue.DueDate != nil {
		t.Errorf("share time leaked into DueDate: %v", noDue.DueDate)
	}
	if !noDue.SharedAt.Equal(sharedAt) {
		t.Errorf("SharedAt from timestamp = %v", noDue.SharedAt)
	}
}

func TestSharedTaskEncodingMatchesWebClient(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	sharedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	data := encodeSharedTask(&domain.SharedTask{
		Description: "review deck",
		Priority:    domain.PriorityHigh,
		DueDate:     &due,
		SharedFrom:  "boss",
		SharedBy:    "boss@example.com",
		Status:      domain.ShareStatusPending,
		SharedAt:    sharedAt,
	})

	if data["dueDate"] != due || data["timestamp"] != sharedAt {
		t.Errorf("dueDate = %v, timestamp = %v", data["dueDate"], data["timestamp"])
	}
	if data["originalOwnerId"] != "boss" || data["shareStatus"] != "pending" || data["isShared"] != true {
		t.Errorf("share fields = %v", data)
	}

	back := decodeSharedTask("s1", data)
	if back.DueDate == nil || !back.DueDate.Equal(due) || back.SharedFrom != "boss" {
		t.Errorf("decoded = %+v", back)
	}
}

func TestDecodeWebClientReminderEntry(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 3, 16, 45, 0, 0, time.UTC)
	e := decodeReminderEntry("r1", map[string]interface{}{
		"userId":       "u1",
		"taskId":       "t1",
		"taskTitle":    "review deck",
		"reminderTime": at,
		"isProcessed":  true,
		"createdAt":    at.Add(-time.Hour),
	})
	if e.UserID != "u1" || e.TaskID != "t1" || !e.Processed || !e.ScheduledTime.Equal(at) {
		t.Errorf("entry = %+v", e)
	}

	written := encodeReminderEntry("u1", "t1", "review deck", at, at.Add(-time.Hour))
	if written["reminderTime"] != at || written["isProcessed"] != false || written["taskTitle"] != "review deck" {
		t.Errorf("encoded = %v", written)
	}

	older := decodeReminderEntry("r2", map[string]interface{}{"scheduledTime": at, "processed": true})
	if !older.Processed || !older.ScheduledTime.Equal(at) {
		t.Errorf("older names = %+v", older)
	}
}

func TestDecodeWebClientStats(t *testing.T) {
	t.Parallel()

	stats := decodeStats(map[string]interface{}{
		"daily": map[string]interface{}{
			"2025-6-3": map[string]interface{}{"completed": int64(1), "total": int64(4)},
		},
		"monthly": map[string]interface{}{
			"2025-6": map[string]interface{}{"completed": int64(1), "total": int64(4)},
		},
		"lastUpdated": time.Now(),
	})
	day := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	if got := stats.Daily[domain.DayKey(day)]; got.Total != 4 {
		t.Errorf("daily = %v", stats.Daily)
	}
	if got := stats.Monthly[domain.MonthKey(day)]; got.Completed != 1 {
		t.Errorf("monthly = %v", stats.Monthly)
	}
}

func TestTaskReminderEncoding(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 3, 16, 45, 0, 0, time.UTC)
	data := encodeTask(&domain.Task{Description: "x", Reminder: &domain.Reminder{Time: &at, Active: true}})
	r, ok := data["reminder"].(map[string]interface{})
	if !ok || r["isActive"] != true || r["time"] != at {
		t.Fatalf("reminder = %v", data["reminder"])
	}
}
