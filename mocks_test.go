package tourbase_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tourbase/tourbase"
	"github.com/uptrace/bun"
)

// memUsers is an in-memory Users repository with the same contract as the
// bun-backed one, including the sqlite-shaped duplicate error.
type memUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*tourbase.User
}

var _ tourbase.Users = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]*tourbase.User{}}
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*tourbase.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.byID[id]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memUsers) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*tourbase.User, error) {
	return m.GetByID(ctx, id)
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*tourbase.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = tourbase.NormalizeEmail(email)
	for _, user := range m.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*tourbase.User, error) {
	return m.GetByEmail(ctx, email)
}

func (m *memUsers) GetByResetSecretHash(ctx context.Context, hash string) (*tourbase.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, user := range m.byID {
		if user.ResetSecretHash != nil && *user.ResetSecretHash == hash &&
			user.ResetSecretExpiresAt != nil && user.ResetSecretExpiresAt.After(now) {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memUsers) GetByResetSecretHashTx(ctx context.Context, tx bun.IDB, hash string) (*tourbase.User, error) {
	return m.GetByResetSecretHash(ctx, hash)
}

func (m *memUsers) Register(ctx context.Context, user *tourbase.User) (*tourbase.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = tourbase.NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = tourbase.RoleUser
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return nil, errors.New("UNIQUE constraint failed: users.email")
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	m.byID[user.ID] = user
	return user, nil
}

func (m *memUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *tourbase.User) (*tourbase.User, error) {
	return m.Register(ctx, user)
}

func (m *memUsers) SavePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return repository.NewRecordNotFound()
	}

	changedAt := time.Now().Add(-time.Second)
	user.PasswordHash = passwordHash
	user.PasswordChangedAt = &changedAt
	user.ResetSecretHash = nil
	user.ResetSecretExpiresAt = nil
	return nil
}

func (m *memUsers) SavePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	return m.SavePassword(ctx, id, passwordHash)
}

func (m *memUsers) SetResetSecret(ctx context.Context, id uuid.UUID, hash string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return repository.NewRecordNotFound()
	}

	user.ResetSecretHash = &hash
	user.ResetSecretExpiresAt = &expires
	return nil
}

func (m *memUsers) SetResetSecretTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string, expires time.Time) error {
	return m.SetResetSecret(ctx, id, hash, expires)
}

func (m *memUsers) ClearResetSecret(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return repository.NewRecordNotFound()
	}

	user.ResetSecretHash = nil
	user.ResetSecretExpiresAt = nil
	return nil
}

func (m *memUsers) ClearResetSecretTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	return m.ClearResetSecret(ctx, id)
}

// memRepo implements RepositoryManager over memUsers. RunInTx has no real
// transaction to offer, it just invokes the callback.
type memRepo struct {
	users *memUsers
}

var _ tourbase.RepositoryManager = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{users: newMemUsers()}
}

func (m *memRepo) Validate() error { return nil }
func (m *memRepo) MustValidate()   {}

func (m *memRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *memRepo) Users() tourbase.Users { return m.users }

// MockMessenger implements tourbase.Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func newTestConfig() *tourbase.SimpleConfig {
	return &tourbase.SimpleConfig{
		SigningKey:      "test-signing-key",
		TokenExpiration: 1,
		Issuer:          "tourbase-test",
		Environment:     tourbase.EnvProduction,
	}
}

// seedUser registers an identity with a hashed password and returns it.
func seedUser(repo *memRepo, name, email, password string, role tourbase.UserRole) (*tourbase.User, error) {
	hash, err := tourbase.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return repo.Users().Register(context.Background(), &tourbase.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
}
