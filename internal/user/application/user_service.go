package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sharedCache "github.com/davicafu/hexaquery/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/hexaquery/internal/shared/infra/utils"
	"github.com/davicafu/hexaquery/internal/shared/query"
	"github.com/davicafu/hexaquery/internal/user/domain"
)

const (
	retryAttempts = 3
	retryDelay    = 100 * time.Millisecond
	userCacheTTL  = 60
)

// UserService define los casos de uso relacionados con User.
type UserService struct {
	repo   domain.UserRepository
	scopes *query.Scopes
	cache  sharedCache.Cache
	lists  *sharedCache.ListCache
	log    *zap.Logger
	now    func() time.Time
}

// NewUserService constructor. cache puede ser nil.
func NewUserService(repo domain.UserRepository, scopes *query.Scopes, cache sharedCache.Cache, listTTL time.Duration, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &UserService{
		repo:   repo,
		scopes: scopes,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
	if cache != nil {
		s.lists = sharedCache.NewListCache(cache, listTTL, log)
	}
	return s
}

// transient: los errores de dominio y de parámetros no se reintentan.
func transient(err error) bool {
	return !errors.Is(err, domain.ErrUserNotFound) &&
		!errors.Is(err, query.ErrInvalidParam) &&
		!errors.Is(err, context.Canceled)
}

// CreateUserInput son los datos de alta.
type CreateUserInput struct {
	Login string
	Email string
	Age   int
	Admin bool
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	user, err := domain.NewUser(in.Login, in.Email, in.Age, in.Admin, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.lists != nil {
		s.lists.Invalidate(ctx, domain.Resource)
	}
	sharedCache.AsyncCacheSet(ctx, s.cache, cacheKeyByID(user.ID), user, userCacheTTL, s.log)

	return user, nil
}

// GetUser obtiene un usuario (primero intenta desde cache).
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	// 1. Intentar cache
	if s.cache != nil {
		var u domain.User
		if ok, _ := s.cache.Get(ctx, cacheKeyByID(id), &u); ok {
			return &u, nil
		}
	}

	// 2. Ir al repo con reintentos
	var user *domain.User
	err := sharedUtils.Retry(ctx, retryAttempts, retryDelay, transient, func() error {
		var err error
		user, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Actualizar cache en background sin bloquear la respuesta
	sharedCache.AsyncCacheSet(ctx, s.cache, cacheKeyByID(user.ID), user, userCacheTTL, s.log)
	return user, nil
}

// ListUsers aplica filter / search / range / fuzzy / sort sobre el scope de
// users y lo ejecuta en el repositorio. Un parámetro inválido se devuelve
// tal cual (errors.Is(err, query.ErrInvalidParam)).
func (s *UserService) ListUsers(ctx context.Context, params query.RawParams, page query.Page) ([]*domain.User, error) {
	c, err := s.scopes.Apply(query.NewScope(domain.Resource), params)
	if err != nil {
		s.log.Warn("Rejected users query", zap.Any("params", params), zap.Error(err))
		return nil, err
	}
	scope, err := query.AsScope(c)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()

	var key string
	if s.lists != nil {
		key = s.lists.Key(ctx, domain.Resource, scope.Key(), fmt.Sprintf("limit=%d&offset=%d", page.Limit, page.Offset))
		var cached []*domain.User
		if s.lists.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	var users []*domain.User
	err = sharedUtils.Retry(ctx, retryAttempts, retryDelay, transient, func() error {
		var err error
		users, err = s.repo.List(ctx, scope, page)
		return err
	})
	if err != nil {
		s.log.Error("Failed to list users", zap.Stringer("scope", scope), zap.Error(err))
		return nil, err
	}

	if s.lists != nil {
		s.lists.Put(ctx, key, users)
	}
	return users, nil
}

// DescribeQueries documenta las capacidades de listado de /users.
func (s *UserService) DescribeQueries() []query.Description {
	return s.scopes.Describe()
}

// ---------- Helpers ----------

func cacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("user:id:%s", id.String())
}
