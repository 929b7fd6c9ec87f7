package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/deppfellow/consultdesk/internal/lib/blob"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

var nopLogger = zerolog.Nop()

type MockUserStore struct{ mock.Mock }

func (m *MockUserStore) Create(ctx context.Context, u *model.User) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context, f model.UserFilter) (*model.PaginatedResponse[model.User], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaginatedResponse[model.User]), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, u *model.User) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserStore) CountActiveAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockSessionStore struct{ mock.Mock }

func (m *MockSessionStore) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionStore) FindActive(ctx context.Context, tokenHash string) (*model.SessionUser, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionUser), args.Error(1)
}

func (m *MockSessionStore) Evict(ctx context.Context, tokenHashes ...string) error {
	return m.Called(ctx, tokenHashes).Error(0)
}

func (m *MockSessionStore) Expire(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) ExpireForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSessionStore) LiveTokenHashes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockConsultStore struct{ mock.Mock }

func (m *MockConsultStore) Create(ctx context.Context, c *model.Consult) (*model.Consult, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Consult), args.Error(1)
}

func (m *MockConsultStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Consult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Consult), args.Error(1)
}

func (m *MockConsultStore) List(ctx context.Context, f model.ConsultFilter) (*model.PaginatedResponse[model.Consult], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaginatedResponse[model.Consult]), args.Error(1)
}

func (m *MockConsultStore) Events(ctx context.Context, start, end time.Time, consultantID *uuid.UUID) ([]model.CalendarEvent, error) {
	args := m.Called(ctx, start, end, consultantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CalendarEvent), args.Error(1)
}

func (m *MockConsultStore) HasOverlap(ctx context.Context, consultantID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, consultantID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockConsultStore) Update(ctx context.Context, c *model.Consult) (*model.Consult, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Consult), args.Error(1)
}

func (m *MockConsultStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ConsultStatus) (*model.Consult, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Consult), args.Error(1)
}

func (m *MockConsultStore) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockAttachmentStore struct{ mock.Mock }

func (m *MockAttachmentStore) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentStore) ListByConsult(ctx context.Context, consultID uuid.UUID) ([]model.Attachment, error) {
	args := m.Called(ctx, consultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Attachment), args.Error(1)
}

func (m *MockAttachmentStore) Delete(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

type MockOptionStore struct{ mock.Mock }

func (m *MockOptionStore) ListByCategory(ctx context.Context, category model.OptionCategory, includeInactive bool) ([]model.SelectOption, error) {
	args := m.Called(ctx, category, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SelectOption), args.Error(1)
}

func (m *MockOptionStore) ValueExists(ctx context.Context, category model.OptionCategory, value string) (bool, error) {
	args := m.Called(ctx, category, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockOptionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.SelectOption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SelectOption), args.Error(1)
}

func (m *MockOptionStore) Create(ctx context.Context, o *model.SelectOption) (*model.SelectOption, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SelectOption), args.Error(1)
}

func (m *MockOptionStore) Update(ctx context.Context, o *model.SelectOption) (*model.SelectOption, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SelectOption), args.Error(1)
}

func (m *MockOptionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockPurgeQueue struct{ mock.Mock }

func (m *MockPurgeQueue) EnqueueAttachmentPurge(ctx context.Context, storageKey string) error {
	return m.Called(ctx, storageKey).Error(0)
}

// memStore is an in-memory blob.Store.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Driver() string { return "mem" }

func (s *memStore) Put(_ context.Context, key string, r io.Reader, _ string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; ok {
		return 0, blob.ErrExists
	}
	s.objects[key] = data
	return int64(len(data)), nil
}

func (s *memStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
