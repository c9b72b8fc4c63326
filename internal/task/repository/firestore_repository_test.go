package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"timesync-backend/internal/task/domain"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// newEmulatorStore connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST and skips the test when it is unset.
func newEmulatorStore(t *testing.T) (*firestoreStore, *firestore.Client) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "demo-timesync")
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewFirestoreStore(client).(*firestoreStore), client
}

func emulatorUser() string {
	return "user-" + uuid.NewString()
}

func TestFirestoreMoveLegacyTasksAcrossChunks(t *testing.T) {
	store, client := newEmulatorStore(t)
	ctx := context.Background()
	userID := emulatorUser()
	other := emulatorUser()

	const count = 2*moveChunkSize + 17
	bw := client.BulkWriter(ctx)
	for i := 0; i < count; i++ {
		ref := client.Collection(collectionTasks).Doc(fmt.Sprintf("%s-%03d", userID, i))
		if _, err := bw.Create(ref, map[string]interface{}{
			fieldTask:   fmt.Sprintf("legacy %d", i),
			fieldUserID: userID,
		}); err != nil {
			t.Fatalf("queue legacy task: %v", err)
		}
	}
	if _, err := bw.Create(client.Collection(collectionTasks).Doc(other), map[string]interface{}{
		fieldTask:   "someone else",
		fieldUserID: other,
	}); err != nil {
		t.Fatalf("queue foreign task: %v", err)
	}
	bw.End()

	if n, err := store.CountLegacy(ctx, userID); err != nil || n != count {
		t.Fatalf("CountLegacy = %d, %v", n, err)
	}

	moved, err := store.MoveLegacyTasks(ctx, userID)
	if err != nil || moved != count {
		t.Fatalf("MoveLegacyTasks = %d, %v", moved, err)
	}

	tasks, err := store.FindByUserID(ctx, userID)
	if err != nil || len(tasks) != count {
		t.Fatalf("FindByUserID = %d tasks, %v", len(tasks), err)
	}
	kept, _ := store.FindByID(ctx, userID, userID+"-000")
	if kept == nil || kept.Description != "legacy 0" || kept.Priority != domain.PriorityLowest || kept.Category != domain.DefaultCategory {
		t.Fatalf("moved task = %+v", kept)
	}

	if n, _ := store.CountLegacy(ctx, userID); n != 0 {
		t.Fatalf("%d legacy records left", n)
	}
	if n, _ := store.CountLegacy(ctx, other); n != 1 {
		t.Fatalf("foreign legacy record moved")
	}

	// A rerun has nothing left to move.
	if moved, err := store.MoveLegacyTasks(ctx, userID); err != nil || moved != 0 {
		t.Fatalf("rerun = %d, %v", moved, err)
	}
}

func TestFirestoreAcceptShare(t *testing.T) {
	store, _ := newEmulatorStore(t)
	ctx := context.Background()
	userID := emulatorUser()

	due := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	src := &domain.Task{Description: "review PR", Priority: domain.PriorityHigh, DueDate: &due}
	shared := domain.NewSharedTask(src, "sender", "me@example.com", time.Now())
	if err := store.Send(ctx, userID, shared); err != nil {
		t.Fatalf("Send: %v", err)
	}

	inbox, err := store.ListIncoming(ctx, userID)
	if err != nil || len(inbox) != 1 {
		t.Fatalf("ListIncoming = %+v, %v", inbox, err)
	}
	if inbox[0].DueDate == nil || !inbox[0].DueDate.Equal(due) {
		t.Fatalf("inbox due date = %v", inbox[0].DueDate)
	}

	accepted, err := store.Accept(ctx, userID, inbox[0].ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if accepted.ShareStatus != domain.ShareStatusAccepted || accepted.SharedFrom != "sender" {
		t.Errorf("accepted = %+v", accepted)
	}

	stored, _ := store.FindByID(ctx, userID, accepted.ID)
	if stored == nil || stored.Description != "review PR" || stored.SharedBy != "me@example.com" {
		t.Fatalf("stored = %+v", stored)
	}
	if left, _ := store.ListIncoming(ctx, userID); len(left) != 0 {
		t.Fatalf("inbox after accept = %+v", left)
	}
	if _, err := store.Accept(ctx, userID, inbox[0].ID); !errors.Is(err, domain.ErrShareNotFound) {
		t.Fatalf("second accept: err = %v", err)
	}
}

func TestFirestoreSetReminder(t *testing.T) {
	store, client := newEmulatorStore(t)
	ctx := context.Background()
	userID := emulatorUser()

	task := &domain.Task{Description: "call dentist", Priority: domain.PriorityMedium, CreatedAt: time.Now()}
	if err := store.Create(ctx, userID, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if err := store.SetReminder(ctx, userID, task.ID, at); err != nil {
		t.Fatalf("SetReminder: %v", err)
	}

	stored, _ := store.FindByID(ctx, userID, task.ID)
	if stored.Reminder == nil || !stored.Reminder.Active || !stored.Reminder.Time.Equal(at) {
		t.Fatalf("reminder = %+v", stored.Reminder)
	}
	if stored.Description != "call dentist" {
		t.Fatalf("merge dropped fields: %+v", stored)
	}

	snap, err := store.reminderRef(userID, task.ID).Get(ctx)
	if err != nil {
		t.Fatalf("reminder entry: %v", err)
	}
	data := snap.Data()
	if data[fieldTaskTitle] != "call dentist" || data[fieldIsProcessed] != false {
		t.Fatalf("entry = %+v", data)
	}

	due, err := store.FindDue(ctx, at)
	if err != nil {
		t.Fatalf("FindDue: %v", err)
	}
	found := false
	for _, e := range due {
		found = found || e.ID == domain.ReminderEntryID(userID, task.ID)
	}
	if !found {
		t.Fatalf("entry not due at its scheduled time")
	}

	if err := store.SetReminder(ctx, userID, "missing", at); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("missing task: err = %v", err)
	}
	if _, err := client.Collection(collectionReminders).Doc(domain.ReminderEntryID(userID, "missing")).Get(ctx); !isNotFound(err) {
		t.Fatalf("entry written for a missing task: %v", err)
	}
}

func TestFirestoreRegisterCategory(t *testing.T) {
	store, _ := newEmulatorStore(t)
	ctx := context.Background()
	userID := emulatorUser()

	first, created, err := store.Register(ctx, userID, "Work")
	if err != nil || !created {
		t.Fatalf("first Register = %+v, %v, %v", first, created, err)
	}
	second, created, err := store.Register(ctx, userID, " Work ")
	if err != nil || created {
		t.Fatalf("second Register = %+v, %v, %v", second, created, err)
	}
	if second.ID != first.ID || second.Name != "Work" {
		t.Fatalf("second = %+v, want %+v", second, first)
	}

	categories, _ := store.ListByUser(ctx, userID)
	if len(categories) != 1 {
		t.Fatalf("categories = %+v", categories)
	}
}
