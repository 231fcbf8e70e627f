package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"vigil/internal/domain/entity"
	"vigil/internal/domain/repository"
	"vigil/internal/domain/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend implements service.BackendService with per-call hooks. Calls
// without a hook fail the invariant loudly by returning zero values.
type fakeBackend struct {
	loginFn        func(ctx context.Context, req *service.LoginRequest) (*entity.UserProfile, error)
	registerFn     func(ctx context.Context, req *service.RegisterRequest) (*entity.UserProfile, error)
	fetchUserFn    func(ctx context.Context, userID string) (*entity.UserProfile, error)
	updateUserFn   func(ctx context.Context, userID string, req *service.UpdateProfileRequest) (*entity.UserProfile, error)
	fetchHistoryFn func(ctx context.Context, deviceID string) ([]*entity.FallHistoryRecord, error)
	listRemFn      func(ctx context.Context, userID string) ([]*entity.MedicationReminder, error)
	createRemFn    func(ctx context.Context, req *service.CreateReminderRequest) error
	deleteRemFn    func(ctx context.Context, reminderID string) error
}

func (f *fakeBackend) Login(ctx context.Context, req *service.LoginRequest) (*entity.UserProfile, error) {
	return f.loginFn(ctx, req)
}

func (f *fakeBackend) Register(ctx context.Context, req *service.RegisterRequest) (*entity.UserProfile, error) {
	return f.registerFn(ctx, req)
}

func (f *fakeBackend) FetchUser(ctx context.Context, userID string) (*entity.UserProfile, error) {
	return f.fetchUserFn(ctx, userID)
}

func (f *fakeBackend) UpdateUser(ctx context.Context, userID string, req *service.UpdateProfileRequest) (*entity.UserProfile, error) {
	return f.updateUserFn(ctx, userID, req)
}

func (f *fakeBackend) FetchFallHistory(ctx context.Context, deviceID string) ([]*entity.FallHistoryRecord, error) {
	return f.fetchHistoryFn(ctx, deviceID)
}

func (f *fakeBackend) ListReminders(ctx context.Context, userID string) ([]*entity.MedicationReminder, error) {
	return f.listRemFn(ctx, userID)
}

func (f *fakeBackend) CreateReminder(ctx context.Context, req *service.CreateReminderRequest) error {
	return f.createRemFn(ctx, req)
}

func (f *fakeBackend) DeleteReminder(ctx context.Context, reminderID string) error {
	return f.deleteRemFn(ctx, reminderID)
}

// memSessionRepo is an in-memory repository.SessionRepository with optional
// injected failures.
type memSessionRepo struct {
	mu      sync.Mutex
	session *entity.Session

	loadErr  error
	saveErr  error
	clearErr error

	saveCalls  int
	clearCalls int
}

func (m *memSessionRepo) Load(ctx context.Context) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.session == nil {
		return nil, repository.ErrSessionNotFound
	}

	copied := *m.session

	return &copied, nil
}

func (m *memSessionRepo) Save(ctx context.Context, session *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}

	copied := *session
	m.session = &copied

	return nil
}

func (m *memSessionRepo) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearCalls++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.session = nil

	return nil
}

func loggedInRepo(user *entity.UserProfile) *memSessionRepo {
	return &memSessionRepo{
		session: &entity.Session{IsAuthenticated: true, User: user},
	}
}

// fakeStream implements service.EventStream backed by a channel the test
// feeds directly.
type fakeStream struct {
	mu          sync.Mutex
	messages    chan entity.ChannelMessage
	state       entity.ChannelState
	connectErr  error
	connected   []string
	disconnects int
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		messages: make(chan entity.ChannelMessage, 32),
		state:    entity.ChannelIdle,
	}
}

func (f *fakeStream) Connect(ctx context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = append(f.connected, deviceID)
	f.state = entity.ChannelRegistered

	return nil
}

func (f *fakeStream) Messages() <-chan entity.ChannelMessage {
	return f.messages
}

func (f *fakeStream) State() entity.ChannelState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

func (f *fakeStream) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disconnects++
	f.state = entity.ChannelDisconnected
}
