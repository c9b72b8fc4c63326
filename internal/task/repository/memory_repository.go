package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"timesync-backend/internal/task/domain"

	"github.com/google/uuid"
)

// collection keeps documents in insertion order, like a store listing.
type collection struct {
	ids  []string
	docs map[string]map[string]interface{}
}

func newCollection() *collection {
	return &collection{docs: map[string]map[string]interface{}{}}
}

func (c *collection) set(id string, data map[string]interface{}) {
	if _, ok := c.docs[id]; !ok {
		c.ids = append(c.ids, id)
	}
	c.docs[id] = data
}

func (c *collection) get(id string) (map[string]interface{}, bool) {
	data, ok := c.docs[id]
	return data, ok
}

func (c *collection) delete(id string) {
	if _, ok := c.docs[id]; !ok {
		return
	}
	delete(c.docs, id)
	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
}

// memoryStore implements Store in process memory. Documents are held in
// their encoded form so reads go through the same decoding as Firestore.
type memoryStore struct {
	mu         sync.Mutex
	tasks      map[string]*collection
	shares     map[string]*collection
	categories map[string]*collection
	stats      map[string]*domain.Stats
	legacy     *collection
	reminders  *collection
	now        func() time.Time
}

// MemoryStore is the in-process Store. It also exposes AddLegacyTask for
// seeding the flat legacy collection.
type MemoryStore interface {
	Store
	AddLegacyTask(id, userID string, data map[string]interface{})
}

// NewMemoryStore creates an empty in-process Store
func NewMemoryStore() MemoryStore {
	return &memoryStore{
		tasks:      map[string]*collection{},
		shares:     map[string]*collection{},
		categories: map[string]*collection{},
		stats:      map[string]*domain.Stats{},
		legacy:     newCollection(),
		reminders:  newCollection(),
		now:        time.Now,
	}
}

func (s *memoryStore) userCollection(m map[string]*collection, userID string) *collection {
	c, ok := m[userID]
	if !ok {
		c = newCollection()
		m[userID] = c
	}
	return c
}

func copyDoc(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (s *memoryStore) AddLegacyTask(id, userID string, data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := copyDoc(data)
	doc[fieldUserID] = userID
	s.legacy.set(id, doc)
}

func (s *memoryStore) Create(ctx context.Context, userID string, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.UserID = userID
	s.userCollection(s.tasks, userID).set(task.ID, encodeTask(task))
	return nil
}

func (s *memoryStore) FindByID(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.userCollection(s.tasks, userID).get(taskID)
	if !ok {
		return nil, nil
	}
	return decodeTask(taskID, userID, data), nil
}

func (s *memoryStore) FindByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.userCollection(s.tasks, userID)
	tasks := make([]*domain.Task, 0, len(c.ids))
	for _, id := range c.ids {
		tasks = append(tasks, decodeTask(id, userID, c.docs[id]))
	}
	return tasks, nil
}

func (s *memoryStore) Update(ctx context.Context, userID string, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.userCollection(s.tasks, userID)
	if _, ok := c.get(task.ID); !ok {
		return domain.ErrTaskNotFound
	}
	c.set(task.ID, encodeTask(task))
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCollection(s.tasks, userID).delete(taskID)
	return nil
}

func (s *memoryStore) SetReminder(ctx context.Context, userID, taskID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.userCollection(s.tasks, userID)
	data, ok := c.get(taskID)
	if !ok {
		return domain.ErrTaskNotFound
	}
	doc := copyDoc(data)
	doc[fieldReminder] = encodeReminder(&at, true)
	c.set(taskID, doc)
	title, _ := data[fieldTask].(string)
	s.reminders.set(domain.ReminderEntryID(userID, taskID), encodeReminderEntry(userID, taskID, title, at, s.now()))
	return nil
}

func (s *memoryStore) ClearReminder(ctx context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.userCollection(s.tasks, userID)
	data, ok := c.get(taskID)
	if !ok {
		return domain.ErrTaskNotFound
	}
	doc := copyDoc(data)
	if r, ok := doc[fieldReminder].(map[string]interface{}); ok {
		doc[fieldReminder] = map[string]interface{}{fieldReminderTime: r[fieldReminderTime], fieldReminderActive: false}
	}
	c.set(taskID, doc)
	s.reminders.delete(domain.ReminderEntryID(userID, taskID))
	return nil
}

func (s *memoryStore) CountLegacy(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.legacyIDs(userID)), nil
}

func (s *memoryStore) legacyIDs(userID string) []string {
	var ids []string
	for _, id := range s.legacy.ids {
		if owner, _ := s.legacy.docs[id][fieldUserID].(string); owner == userID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *memoryStore) MoveLegacyTasks(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.legacyIDs(userID)
	target := s.userCollection(s.tasks, userID)
	for _, id := range ids {
		task := decodeTask(id, userID, s.legacy.docs[id])
		task.ApplyMigrationDefaults()
		target.set(id, encodeTask(task))
		s.legacy.delete(id)
	}
	return len(ids), nil
}

func (s *memoryStore) Send(ctx context.Context, recipientID string, shared *domain.SharedTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if shared.ID == "" {
		shared.ID = uuid.New().String()
	}
	s.userCollection(s.shares, recipientID).set(shared.ID, encodeSharedTask(shared))
	return nil
}

func (s *memoryStore) ListIncoming(ctx context.Context, userID string) ([]*domain.SharedTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.userCollection(s.shares, userID)
	shares := make([]*domain.SharedTask, 0, len(c.ids))
	for _, id := range c.ids {
		shares = append(shares, decodeSharedTask(id, c.docs[id]))
	}
	return shares, nil
}

func (s *memoryStore) Accept(ctx context.Context, userID, shareID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inbox := s.userCollection(s.shares, userID)
	data, ok := inbox.get(shareID)
	if !ok {
		return nil, domain.ErrShareNotFound
	}
	task := decodeSharedTask(shareID, data).ToTask(userID, s.now())
	task.ID = uuid.New().String()
	s.userCollection(s.tasks, userID).set(task.ID, encodeTask(task))
	inbox.delete(shareID)
	return task, nil
}

func (s *memoryStore) Decline(ctx context.Context, userID, shareID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inbox := s.userCollection(s.shares, userID)
	if _, ok := inbox.get(shareID); !ok {
		return domain.ErrShareNotFound
	}
	inbox.delete(shareID)
	return nil
}

func (s *memoryStore) TransferInbox(ctx context.Context, fromUserID, toUserID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.userCollection(s.shares, fromUserID)
	to := s.userCollection(s.shares, toUserID)
	ids := append([]string(nil), from.ids...)
	for _, id := range ids {
		to.set(id, from.docs[id])
		from.delete(id)
	}
	return len(ids), nil
}

func (s *memoryStore) ListByUser(ctx context.Context, userID string) ([]*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.userCollection(s.categories, userID)
	categories := make([]*domain.Category, 0, len(c.ids))
	for _, id := range c.ids {
		categories = append(categories, decodeCategory(id, c.docs[id]))
	}
	sortCategories(categories)
	return categories, nil
}

func (s *memoryStore) Register(ctx context.Context, userID, name string) (*domain.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, domain.ErrEmptyCategory
	}
	key := domain.CategoryKey(name)
	c := s.userCollection(s.categories, userID)
	if data, ok := c.get(key); ok {
		return decodeCategory(key, data), false, nil
	}
	category := &domain.Category{ID: key, Name: name, CreatedAt: s.now()}
	c.set(key, map[string]interface{}{fieldName: name, fieldCreatedAt: category.CreatedAt})
	return category, true, nil
}

func (s *memoryStore) Get(ctx context.Context, userID string) (*domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := domain.NewStats()
	if existing, ok := s.stats[userID]; ok {
		for k, v := range existing.Daily {
			stats.Daily[k] = v
		}
		for k, v := range existing.Monthly {
			stats.Monthly[k] = v
		}
	}
	return stats, nil
}

func (s *memoryStore) Record(ctx context.Context, userID string, day time.Time, completedDelta, totalDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[userID]
	if !ok {
		stats = domain.NewStats()
		s.stats[userID] = stats
	}
	dayKey, monthKey := domain.DayKey(day), domain.MonthKey(day)

	d := stats.Daily[dayKey]
	d.Completed += completedDelta
	d.Total += totalDelta
	stats.Daily[dayKey] = d

	m := stats.Monthly[monthKey]
	m.Completed += completedDelta
	m.Total += totalDelta
	stats.Monthly[monthKey] = m
	return nil
}

func (s *memoryStore) FindDue(ctx context.Context, now time.Time) ([]*domain.ReminderEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*domain.ReminderEntry
	for _, id := range s.reminders.ids {
		entry := decodeReminderEntry(id, s.reminders.docs[id])
		if !entry.Processed && !entry.ScheduledTime.After(now) {
			due = append(due, entry)
		}
	}
	return due, nil
}

func (s *memoryStore) MarkProcessed(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.reminders.get(entryID)
	if !ok {
		return nil
	}
	doc := copyDoc(data)
	doc[fieldIsProcessed] = true
	s.reminders.set(entryID, doc)
	return nil
}
