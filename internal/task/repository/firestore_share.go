package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"timesync-backend/internal/task/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (r *firestoreStore) inbox(userID string) *firestore.CollectionRef {
	return r.client.Collection(collectionUsers).Doc(userID).Collection(collectionIncomingTasks)
}

func (r *firestoreStore) Send(ctx context.Context, recipientID string, shared *domain.SharedTask) error {
	ref := r.inbox(recipientID).NewDoc()
	shared.ID = ref.ID
	if _, err := ref.Set(ctx, encodeSharedTask(shared)); err != nil {
		return fmt.Errorf("send shared task: %w", err)
	}
	return nil
}

func (r *firestoreStore) ListIncoming(ctx context.Context, userID string) ([]*domain.SharedTask, error) {
	iter := r.inbox(userID).Documents(ctx)
	defer iter.Stop()

	shares := []*domain.SharedTask{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list shared tasks: %w", err)
		}
		shares = append(shares, decodeSharedTask(doc.Ref.ID, doc.Data()))
	}
	return shares, nil
}

func (r *firestoreStore) Accept(ctx context.Context, userID, shareID string) (*domain.Task, error) {
	shareRef := r.inbox(userID).Doc(shareID)
	taskRef := r.tasksCollection(userID).NewDoc()

	var accepted *domain.Task
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(shareRef)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrShareNotFound
			}
			return err
		}
		accepted = decodeSharedTask(shareID, snap.Data()).ToTask(userID, r.now())
		accepted.ID = taskRef.ID
		if err := tx.Create(taskRef, encodeTask(accepted)); err != nil {
			return err
		}
		return tx.Delete(shareRef)
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (r *firestoreStore) Decline(ctx context.Context, userID, shareID string) error {
	_, err := r.inbox(userID).Doc(shareID).Delete(ctx, firestore.Exists)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrShareNotFound
		}
		return fmt.Errorf("decline shared task: %w", err)
	}
	return nil
}

func (r *firestoreStore) TransferInbox(ctx context.Context, fromUserID, toUserID string) (int, error) {
	docs, err := r.inbox(fromUserID).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("list inbox: %w", err)
	}
	refs := make([]*firestore.DocumentRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, doc.Ref)
	}
	return r.moveDocuments(ctx, refs, r.inbox(toUserID).Doc, func(_ string, data map[string]interface{}) map[string]interface{} {
		return data
	})
}

func (r *firestoreStore) categories(userID string) *firestore.CollectionRef {
	return r.client.Collection(collectionUsers).Doc(userID).Collection(collectionCategories)
}

func (r *firestoreStore) ListByUser(ctx context.Context, userID string) ([]*domain.Category, error) {
	iter := r.categories(userID).Documents(ctx)
	defer iter.Stop()

	categories := []*domain.Category{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		categories = append(categories, decodeCategory(doc.Ref.ID, doc.Data()))
	}
	sortCategories(categories)
	return categories, nil
}

func (r *firestoreStore) Register(ctx context.Context, userID, name string) (*domain.Category, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, domain.ErrEmptyCategory
	}
	ref := r.categories(userID).Doc(domain.CategoryKey(name))
	category := &domain.Category{ID: ref.ID, Name: name, CreatedAt: r.now()}

	_, err := ref.Create(ctx, map[string]interface{}{
		fieldName:      name,
		fieldCreatedAt: category.CreatedAt,
	})
	if err == nil {
		return category, true, nil
	}
	if status.Code(err) != codes.AlreadyExists {
		return nil, false, fmt.Errorf("register category: %w", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("get category: %w", err)
	}
	return decodeCategory(snap.Ref.ID, snap.Data()), false, nil
}

func (r *firestoreStore) statsRef(userID string) *firestore.DocumentRef {
	return r.client.Collection(collectionUsers).Doc(userID).Collection(collectionStats).Doc(statsDocID)
}

func (r *firestoreStore) Get(ctx context.Context, userID string) (*domain.Stats, error) {
	snap, err := r.statsRef(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return domain.NewStats(), nil
		}
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return decodeStats(snap.Data()), nil
}

func (r *firestoreStore) Record(ctx context.Context, userID string, day time.Time, completedDelta, totalDelta int) error {
	increments := func() map[string]interface{} {
		m := map[string]interface{}{}
		if completedDelta != 0 {
			m["completed"] = firestore.Increment(completedDelta)
		}
		if totalDelta != 0 {
			m["total"] = firestore.Increment(totalDelta)
		}
		return m
	}
	if completedDelta == 0 && totalDelta == 0 {
		return nil
	}

	_, err := r.statsRef(userID).Set(ctx, map[string]interface{}{
		fieldDaily:    map[string]interface{}{domain.DayKey(day): increments()},
		fieldMonthly:  map[string]interface{}{domain.MonthKey(day): increments()},
		"lastUpdated": r.now(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("record stats: %w", err)
	}
	return nil
}
