package repository

import (
	"context"
	"fmt"
	"time"

	"timesync-backend/internal/task/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// moveChunkSize bounds documents per transaction; each move is two writes
// and Firestore caps a transaction at 500.
const moveChunkSize = 200

// firestoreStore implements Store on Cloud Firestore
type firestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreStore creates a Firestore-backed Store
func NewFirestoreStore(client *firestore.Client) Store {
	return &firestoreStore{client: client, now: time.Now}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (r *firestoreStore) tasksCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection(collectionUsers).Doc(userID).Collection(collectionTasks)
}

func (r *firestoreStore) reminderRef(userID, taskID string) *firestore.DocumentRef {
	return r.client.Collection(collectionReminders).Doc(domain.ReminderEntryID(userID, taskID))
}

func (r *firestoreStore) Create(ctx context.Context, userID string, task *domain.Task) error {
	ref := r.tasksCollection(userID).NewDoc()
	if task.ID != "" {
		ref = r.tasksCollection(userID).Doc(task.ID)
	}
	task.ID = ref.ID
	task.UserID = userID
	if _, err := ref.Set(ctx, encodeTask(task)); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *firestoreStore) FindByID(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	snap, err := r.tasksCollection(userID).Doc(taskID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task %s: %w", taskID, err)
	}
	return decodeTask(snap.Ref.ID, userID, snap.Data()), nil
}

func (r *firestoreStore) FindByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	iter := r.tasksCollection(userID).Documents(ctx)
	defer iter.Stop()

	tasks := []*domain.Task{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, decodeTask(doc.Ref.ID, userID, doc.Data()))
	}
	return tasks, nil
}

func (r *firestoreStore) Update(ctx context.Context, userID string, task *domain.Task) error {
	ref := r.tasksCollection(userID).Doc(task.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return domain.ErrTaskNotFound
			}
			return err
		}
		return tx.Set(ref, encodeTask(task))
	})
}

func (r *firestoreStore) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := r.tasksCollection(userID).Doc(taskID).Delete(ctx); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	return nil
}

func (r *firestoreStore) SetReminder(ctx context.Context, userID, taskID string, at time.Time) error {
	taskRef := r.tasksCollection(userID).Doc(taskID)
	entryRef := r.reminderRef(userID, taskID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(taskRef)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrTaskNotFound
			}
			return err
		}
		reminder := map[string]interface{}{
			fieldReminder: encodeReminder(&at, true),
		}
		if err := tx.Set(taskRef, reminder, firestore.MergeAll); err != nil {
			return err
		}
		title, _ := snap.Data()[fieldTask].(string)
		return tx.Set(entryRef, encodeReminderEntry(userID, taskID, title, at, r.now()))
	})
}

func (r *firestoreStore) ClearReminder(ctx context.Context, userID, taskID string) error {
	taskRef := r.tasksCollection(userID).Doc(taskID)
	entryRef := r.reminderRef(userID, taskID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(taskRef); err != nil {
			if isNotFound(err) {
				return domain.ErrTaskNotFound
			}
			return err
		}
		inactive := map[string]interface{}{
			fieldReminder: map[string]interface{}{fieldReminderActive: false},
		}
		if err := tx.Set(taskRef, inactive, firestore.MergeAll); err != nil {
			return err
		}
		return tx.Delete(entryRef)
	})
}

func (r *firestoreStore) FindDue(ctx context.Context, now time.Time) ([]*domain.ReminderEntry, error) {
	// Filtering on reminderTime in code avoids a composite index.
	iter := r.client.Collection(collectionReminders).Where(fieldIsProcessed, "==", false).Documents(ctx)
	defer iter.Stop()

	var due []*domain.ReminderEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list reminders: %w", err)
		}
		entry := decodeReminderEntry(doc.Ref.ID, doc.Data())
		if !entry.ScheduledTime.After(now) {
			due = append(due, entry)
		}
	}
	return due, nil
}

func (r *firestoreStore) MarkProcessed(ctx context.Context, entryID string) error {
	_, err := r.client.Collection(collectionReminders).Doc(entryID).Set(ctx, map[string]interface{}{
		fieldIsProcessed: true,
		"processedAt":    r.now(),
	}, firestore.MergeAll)
	return err
}

// moveDocuments copies each source document to target(id) and deletes the
// source, one transaction per chunk. Sources that are already gone are
// skipped, so a rerun after a partial failure only moves what is left.
func (r *firestoreStore) moveDocuments(
	ctx context.Context,
	refs []*firestore.DocumentRef,
	target func(id string) *firestore.DocumentRef,
	convert func(id string, data map[string]interface{}) map[string]interface{},
) (int, error) {
	moved := 0
	for start := 0; start < len(refs); start += moveChunkSize {
		chunk := refs[start:min(start+moveChunkSize, len(refs))]

		var n int
		err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			n = 0
			snaps, err := tx.GetAll(chunk)
			if err != nil {
				return err
			}
			for _, snap := range snaps {
				if !snap.Exists() {
					continue
				}
				if err := tx.Set(target(snap.Ref.ID), convert(snap.Ref.ID, snap.Data())); err != nil {
					return err
				}
				if err := tx.Delete(snap.Ref); err != nil {
					return err
				}
				n++
			}
			return nil
		})
		if err != nil {
			return moved, err
		}
		moved += n
	}
	return moved, nil
}

func (r *firestoreStore) legacyRefs(ctx context.Context, userID string) ([]*firestore.DocumentRef, error) {
	docs, err := r.client.Collection(collectionTasks).Where(fieldUserID, "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query legacy tasks: %w", err)
	}
	refs := make([]*firestore.DocumentRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, doc.Ref)
	}
	return refs, nil
}

func (r *firestoreStore) CountLegacy(ctx context.Context, userID string) (int, error) {
	refs, err := r.legacyRefs(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(refs), nil
}

func (r *firestoreStore) MoveLegacyTasks(ctx context.Context, userID string) (int, error) {
	refs, err := r.legacyRefs(ctx, userID)
	if err != nil || len(refs) == 0 {
		return 0, err
	}

	target := r.tasksCollection(userID)
	moved, err := r.moveDocuments(ctx, refs, target.Doc, func(id string, data map[string]interface{}) map[string]interface{} {
		task := decodeTask(id, userID, data)
		task.ApplyMigrationDefaults()
		return encodeTask(task)
	})
	if err != nil {
		return moved, fmt.Errorf("move legacy tasks: %w", err)
	}
	return moved, nil
}
