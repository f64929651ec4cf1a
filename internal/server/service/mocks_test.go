package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/storage"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserStorage is a mock implementation of storage.UserStorage for testing
type mockUserStorage struct {
	users       map[int64]*models.User
	createError error
	getError    error
	nextID      int64
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[int64]*models.User)}
}

func (m *mockUserStorage) CreateUser(_ context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrEmailTaken
		}
		if u.Username == user.Username {
			return storage.ErrUsernameTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserStorage) find(match func(*models.User) bool) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, u := range m.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *mockUserStorage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *mockUserStorage) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *mockUserStorage) DeleteUser(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// mockCalculationStorage is an in-memory storage.CalculationStorage
type mockCalculationStorage struct {
	calcs     map[int64]*models.Calculation
	listError error
	nextID    int64
	creates   int
	mu        sync.Mutex
}

func newMockCalculationStorage() *mockCalculationStorage {
	return &mockCalculationStorage{calcs: make(map[int64]*models.Calculation)}
}

func (m *mockCalculationStorage) CreateCalculation(_ context.Context, calc *models.Calculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creates++
	m.nextID++
	calc.ID = m.nextID
	calc.CreatedAt = time.Unix(1_700_000_000+m.nextID, 0).UTC()
	stored := *calc
	m.calcs[calc.ID] = &stored
	return nil
}

func (m *mockCalculationStorage) GetCalculation(_ context.Context, id int64) (*models.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	calc, ok := m.calcs[id]
	if !ok {
		return nil, storage.ErrCalculationNotFound
	}
	copied := *calc
	return &copied, nil
}

func (m *mockCalculationStorage) ListCalculations(_ context.Context, filter storage.CalculationFilter) ([]*models.Calculation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listError != nil {
		return nil, 0, m.listError
	}

	matched := make([]*models.Calculation, 0)
	for _, calc := range m.calcs {
		if filter.UserID != nil && (calc.UserID == nil || *calc.UserID != *filter.UserID) {
			continue
		}
		if filter.Operation != nil && calc.Operation != *filter.Operation {
			continue
		}
		copied := *calc
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	if filter.Offset >= total {
		return []*models.Calculation{}, total, nil
	}
	end := min(filter.Offset+filter.Limit, total)
	return matched[filter.Offset:end], total, nil
}

func (m *mockCalculationStorage) UpdateCalculation(_ context.Context, id int64, mutate storage.MutateFunc) (*models.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	calc, ok := m.calcs[id]
	if !ok {
		return nil, storage.ErrCalculationNotFound
	}

	working := *calc
	if err := mutate(&working); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	working.UpdatedAt = &now
	m.calcs[id] = &working

	result := working
	return &result, nil
}

func (m *mockCalculationStorage) DeleteCalculation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calcs[id]; !ok {
		return storage.ErrCalculationNotFound
	}
	delete(m.calcs, id)
	return nil
}

// fakeHasher хранит пароль с префиксом, чтобы не тратить время на bcrypt
type fakeHasher struct {
	err error
}

func (h fakeHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

func (h fakeHasher) Verify(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeIssuer выдает предсказуемые токены
type fakeIssuer struct {
	err      error
	subjects []string
}

func (f *fakeIssuer) Issue(subject string) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	f.subjects = append(f.subjects, subject)
	return "token-for-" + subject, 1800, nil
}

func ptr[T any](v T) *T {
	return &v
}
