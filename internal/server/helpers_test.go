package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/app"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/auth"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/config"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/realtime"
)

const testSecret = "test-secret-key-that-is-long-enough!"

// In-memory repositories backing the handler tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return nil, domain.ErrUserExists
		}
	}
	user := &domain.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: passwordHash}
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetByUsernameOrEmail(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.Username = user.Username
	stored.Email = user.Email
	return nil
}

func (r *memUserRepo) SetResetToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
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

func (r *memUserRepo) GetByResetToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
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

type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*domain.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]*domain.Event)}
}

func (r *memEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.New()
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *memEventRepo) GetByID(_ context.Context, eventID uuid.UUID) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[eventID]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrEventNotFound
}

func (r *memEventRepo) ListByUser(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]*domain.Event, error) {
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

func (r *memEventRepo) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, eventID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[eventID]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.events, eventID)
	return nil
}

func (r *memEventRepo) CountOverlapping(_ context.Context, userID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.events {
		if e.UserID == userID && e.ID != excludeID && e.StartTime.Before(end) && e.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

type memInboxRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.InboxItem
}

func newMemInboxRepo() *memInboxRepo {
	return &memInboxRepo{items: make(map[uuid.UUID]*domain.InboxItem)}
}

func (r *memInboxRepo) Create(_ context.Context, item *domain.InboxItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = uuid.New()
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memInboxRepo) GetByID(_ context.Context, itemID uuid.UUID) (*domain.InboxItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[itemID]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, domain.ErrItemNotFound
}

func (r *memInboxRepo) ListByUser(_ context.Context, userID uuid.UUID, filter domain.InboxFilter) ([]*domain.InboxItem, error) {
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

func (r *memInboxRepo) Update(_ context.Context, item *domain.InboxItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memInboxRepo) Delete(_ context.Context, itemID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[itemID]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.items, itemID)
	return nil
}

type memReminderRepo struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*domain.Reminder
}

func newMemReminderRepo() *memReminderRepo {
	return &memReminderRepo{reminders: make(map[uuid.UUID]*domain.Reminder)}
}

func (r *memReminderRepo) Create(_ context.Context, reminder *domain.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder.ID = uuid.New()
	copied := *reminder
	r.reminders[reminder.ID] = &copied
	return nil
}

func (r *memReminderRepo) GetByID(_ context.Context, reminderID uuid.UUID) (*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reminder, ok := r.reminders[reminderID]; ok {
		copied := *reminder
		return &copied, nil
	}
	return nil, domain.ErrReminderNotFound
}

func (r *memReminderRepo) ListByUser(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reminders []*domain.Reminder
	for _, reminder := range r.reminders {
		if reminder.UserID != userID {
			continue
		}
		copied := *reminder
		reminders = append(reminders, &copied)
	}
	return reminders, nil
}

func (r *memReminderRepo) Update(_ context.Context, reminder *domain.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reminders[reminder.ID]; !ok {
		return domain.ErrReminderNotFound
	}
	copied := *reminder
	r.reminders[reminder.ID] = &copied
	return nil
}

func (r *memReminderRepo) Delete(_ context.Context, reminderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reminders[reminderID]; !ok {
		return domain.ErrReminderNotFound
	}
	delete(r.reminders, reminderID)
	return nil
}

func (r *memReminderRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*domain.Reminder
	for _, reminder := range r.reminders {
		if reminder.IsActive && !reminder.ReminderTime.After(now) {
			copied := *reminder
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (r *memReminderRepo) Deactivate(_ context.Context, reminderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder, ok := r.reminders[reminderID]
	if !ok {
		return domain.ErrReminderNotFound
	}
	reminder.IsActive = false
	return nil
}

// testServer wires a full server over in-memory repositories.
type testServer struct {
	srv    *Server
	http   *httptest.Server
	tokens *auth.TokenManager
	users  *memUserRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := clockwork.NewRealClock()
	tokens := auth.NewTokenManager(testSecret, 30*time.Minute, clock)

	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)
	sessions := realtime.NewSessionHandler(registry, tokens, clock, realtime.SessionConfig{
		PingInterval: 50 * time.Millisecond,
		PongTimeout:  time.Second,
	})

	userRepo := newMemUserRepo()
	eventRepo := newMemEventRepo()
	eventService := app.NewEventService(eventRepo, dispatcher)
	services := Services{
		Users:     app.NewUserService(userRepo, tokens, clock),
		Events:    eventService,
		Inbox:     app.NewInboxService(newMemInboxRepo(), eventService, dispatcher),
		Reminders: app.NewReminderService(newMemReminderRepo(), eventRepo),
	}

	cfg := &config.Config{Port: "0", AppEnv: "test"}
	srv := NewServer(cfg, services, sessions, tokens, nil, nil)

	ts := httptest.NewServer(srv.echo)
	t.Cleanup(func() {
		registry.Drain("test shutdown")
		ts.Close()
	})

	return &testServer{srv: srv, http: ts, tokens: tokens, users: userRepo}
}

// registerAndLogin creates an account and returns its user ID and token.
func (ts *testServer) registerAndLogin(t *testing.T, username string) (uuid.UUID, string) {
	t.Helper()

	status, body := ts.request(t, http.MethodPost, "/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created userResponse
	require.NoError(t, json.Unmarshal(body, &created))
	userID, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	status, body = ts.request(t, http.MethodPost, "/auth/login", "", map[string]any{
		"identifier": username,
		"password":   "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login.AccessToken)

	return userID, login.AccessToken
}

// request performs an HTTP call against the test server and returns the
// status code and raw body.
func (ts *testServer) request(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.http.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set(echoHeaderContentType, "application/json")
	if token != "" {
		req.Header.Set("Authorization", bearerPrefix+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

const echoHeaderContentType = "Content-Type"
