package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	authdomain "timesync-backend/internal/auth/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProfileRepository stores user profiles. Finders return nil, nil when the
// profile does not exist.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	Create(ctx context.Context, user *authdomain.User) error
	EnsurePlaceholder(ctx context.Context, email string) (*authdomain.User, error)
	Delete(ctx context.Context, id string) error
}

const collectionUsers = "users"

// firestoreProfileRepository keeps profiles in the users collection
type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) ProfileRepository {
	return &firestoreProfileRepository{client: client}
}

func profileData(user *authdomain.User) map[string]interface{} {
	data := map[string]interface{}{
		"email":     user.Email,
		"createdAt": user.CreatedAt,
	}
	if user.IsTempAccount {
		data["isTempAccount"] = true
	}
	return data
}

func decodeProfile(id string, data map[string]interface{}) *authdomain.User {
	user := &authdomain.User{ID: id}
	user.Email, _ = data["email"].(string)
	user.CreatedAt, _ = data["createdAt"].(time.Time)
	user.IsTempAccount, _ = data["isTempAccount"].(bool)
	if !user.IsTempAccount {
		// profiles written by the web client used tempAccount
		user.IsTempAccount, _ = data["tempAccount"].(bool)
	}
	return user
}

func (r *firestoreProfileRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	snap, err := r.client.Collection(collectionUsers).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return decodeProfile(snap.Ref.ID, snap.Data()), nil
}

// FindByEmail prefers a real account over a placeholder for the same email.
func (r *firestoreProfileRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	docs, err := r.client.Collection(collectionUsers).
		Where("email", "==", authdomain.NormalizeEmail(email)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("find profile by email: %w", err)
	}

	var found *authdomain.User
	for _, doc := range docs {
		user := decodeProfile(doc.Ref.ID, doc.Data())
		if found == nil || (found.IsTempAccount && !user.IsTempAccount) {
			found = user
		}
	}
	return found, nil
}

func (r *firestoreProfileRepository) Create(ctx context.Context, user *authdomain.User) error {
	user.Email = authdomain.NormalizeEmail(user.Email)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if _, err := r.client.Collection(collectionUsers).Doc(user.ID).Set(ctx, profileData(user), firestore.MergeAll); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// EnsurePlaceholder returns the placeholder for email, creating it when
// absent. Concurrent calls converge on one document.
func (r *firestoreProfileRepository) EnsurePlaceholder(ctx context.Context, email string) (*authdomain.User, error) {
	user := &authdomain.User{
		ID:            authdomain.PlaceholderID(email),
		Email:         authdomain.NormalizeEmail(email),
		CreatedAt:     time.Now(),
		IsTempAccount: true,
	}
	ref := r.client.Collection(collectionUsers).Doc(user.ID)
	_, err := ref.Create(ctx, profileData(user))
	if err == nil {
		return user, nil
	}
	if status.Code(err) != codes.AlreadyExists {
		return nil, fmt.Errorf("create placeholder profile: %w", err)
	}
	return r.FindByID(ctx, user.ID)
}

func (r *firestoreProfileRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(collectionUsers).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}

// memoryProfileRepository implements ProfileRepository in process memory
type memoryProfileRepository struct {
	mu    sync.Mutex
	users map[string]authdomain.User
}

func NewMemoryProfileRepository() ProfileRepository {
	return &memoryProfileRepository{users: map[string]authdomain.User{}}
}

func (r *memoryProfileRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *memoryProfileRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = authdomain.NormalizeEmail(email)
	var found *authdomain.User
	for _, user := range r.users {
		if user.Email != email {
			continue
		}
		user := user
		if found == nil || (found.IsTempAccount && !user.IsTempAccount) {
			found = &user
		}
	}
	return found, nil
}

func (r *memoryProfileRepository) Create(ctx context.Context, user *authdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = authdomain.NormalizeEmail(user.Email)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryProfileRepository) EnsurePlaceholder(ctx context.Context, email string) (*authdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := authdomain.PlaceholderID(email)
	if existing, ok := r.users[id]; ok {
		return &existing, nil
	}
	user := authdomain.User{
		ID:            id,
		Email:         authdomain.NormalizeEmail(email),
		CreatedAt:     time.Now(),
		IsTempAccount: true,
	}
	r.users[id] = user
	return &user, nil
}

func (r *memoryProfileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}
