package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
)

// notification records one NotifyUser call.
type notification struct {
	userID  uuid.UUID
	msgType string
	payload map[string]any
}

type spyNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (s *spyNotifier) NotifyUser(userID uuid.UUID, msgType string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, notification{userID: userID, msgType: msgType, payload: payload})
}

func (s *spyNotifier) notifications() []notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification(nil), s.calls...)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return nil, domain.ErrUserExists
		}
	}
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return domain.ErrUserExists
		}
	}
	stored.Username = user.Username
	stored.Email = user.Email
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ResetToken = &token
	user.ResetExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) GetByResetToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetExpiresAt = nil
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*domain.Event)}
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.New()
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, eventID uuid.UUID) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) ListByUser(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var events []*domain.Event
	for _, e := range r.events {
		if e.UserID != userID {
			continue
		}
		if from != nil && e.EndTime.Before(*from) {
			continue
		}
		if to != nil && e.StartTime.After(*to) {
			continue
		}
		copied := *e
		events = append(events, &copied)
	}
	return events, nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, eventID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[eventID]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.events, eventID)
	return nil
}

func (r *fakeEventRepo) CountOverlapping(_ context.Context, userID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.events {
		if e.UserID != userID || e.ID == excludeID {
			continue
		}
		if e.StartTime.Before(end) && e.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

type fakeInboxRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.InboxItem
}

func newFakeInboxRepo() *fakeInboxRepo {
	return &fakeInboxRepo{items: make(map[uuid.UUID]*domain.InboxItem)}
}

func (r *fakeInboxRepo) Create(_ context.Context, item *domain.InboxItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeInboxRepo) GetByID(_ context.Context, itemID uuid.UUID) (*domain.InboxItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeInboxRepo) ListByUser(_ context.Context, userID uuid.UUID, filter domain.InboxFilter) ([]*domain.InboxItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*domain.InboxItem
	for _, item := range r.items {
		if item.UserID != userID {
			continue
		}
		if filter.Category != nil && item.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && item.Priority != *filter.Priority {
			continue
		}
		copied := *item
		items = append(items, &copied)
	}
	return items, nil
}

func (r *fakeInboxRepo) Update(_ context.Context, item *domain.InboxItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeInboxRepo) Delete(_ context.Context, itemID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[itemID]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.items, itemID)
	return nil
}

type fakeReminderRepo struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*domain.Reminder
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[uuid.UUID]*domain.Reminder)}
}

func (r *fakeReminderRepo) Create(_ context.Context, reminder *domain.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder.ID = uuid.New()
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = time.Now()
	copied := *reminder
	r.reminders[reminder.ID] = &copied
	return nil
}

func (r *fakeReminderRepo) GetByID(_ context.Context, reminderID uuid.UUID) (*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder, ok := r.reminders[reminderID]
	if !ok {
		return nil, domain.ErrReminderNotFound
	}
	copied := *reminder
	return &copied, nil
}

func (r *fakeReminderRepo) ListByUser(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reminders []*domain.Reminder
	for _, rem := range r.reminders {
		if rem.UserID != userID {
			continue
		}
		if from != nil && rem.ReminderTime.Before(*from) {
			continue
		}
		if to != nil && rem.ReminderTime.After(*to) {
			continue
		}
		copied := *rem
		reminders = append(reminders, &copied)
	}
	return reminders, nil
}

func (r *fakeReminderRepo) Update(_ context.Context, reminder *domain.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reminders[reminder.ID]; !ok {
		return domain.ErrReminderNotFound
	}
	copied := *reminder
	r.reminders[reminder.ID] = &copied
	return nil
}

func (r *fakeReminderRepo) Delete(_ context.Context, reminderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reminders[reminderID]; !ok {
		return domain.ErrReminderNotFound
	}
	delete(r.reminders, reminderID)
	return nil
}

func (r *fakeReminderRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*domain.Reminder
	for _, rem := range r.reminders {
		if !rem.IsActive || rem.ReminderTime.After(now) {
			continue
		}
		copied := *rem
		due = append(due, &copied)
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (r *fakeReminderRepo) Deactivate(_ context.Context, reminderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder, ok := r.reminders[reminderID]
	if !ok {
		return domain.ErrReminderNotFound
	}
	reminder.IsActive = false
	return nil
}
