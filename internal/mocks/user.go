package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/davicafu/hexaquery/internal/shared/infra/platform/db/memory"
	"github.com/davicafu/hexaquery/internal/shared/query"
	"github.com/davicafu/hexaquery/internal/user/domain"
)

// InMemoryUserRepo simula UserRepository evaluando el scope con memory.Matcher.
type InMemoryUserRepo struct {
	Users   []*domain.User
	Lists   int
	matcher memory.Matcher
	mu      sync.Mutex
}

var _ domain.UserRepository = (*InMemoryUserRepo)(nil)

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{matcher: memory.NewMatcher(domain.UserTable)}
}

func (r *InMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.ID == u.ID || existing.Login == u.Login {
			return domain.ErrUserAlreadyExists
		}
	}
	r.Users = append(r.Users, u)
	return nil
}

func (r *InMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepo) List(ctx context.Context, scope query.Scope, page query.Page) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lists++
	return memory.Select(r.matcher, r.Users, scope, page, UserRecord)
}

// UserRecord proyecta un User a sus columnas.
func UserRecord(u *domain.User) memory.Record {
	return memory.Record{
		"id":         u.ID,
		"login":      u.Login,
		"email":      u.Email,
		"age":        u.Age,
		"admin":      u.Admin,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
		"banned_at":  u.BannedAt,
	}
}

// MockUserRepository permite programar errores con testify/mock.
type MockUserRepository struct {
	mock.Mock
}

var _ domain.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, scope query.Scope, page query.Page) ([]*domain.User, error) {
	args := m.Called(ctx, scope, page)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}
