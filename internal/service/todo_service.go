package service

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/biey-root/serverless-rest-api/internal/cache"
	"github.com/biey-root/serverless-rest-api/internal/domain"
	"github.com/biey-root/serverless-rest-api/internal/store"
)

const defaultOpTimeout = 5 * time.Second

// TodoService orchestrates the store adapter and the optional list cache.
// Every store call is bounded by opTimeout so a stalled backend can never
// hold a handler goroutine past the request's useful lifetime.
type TodoService struct {
	store     store.TodoStore
	cache     *cache.ListCache
	opTimeout time.Duration
	sf        singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled; a
// non-positive opTimeout falls back to the default bound.
func NewTodoService(s store.TodoStore, c *cache.ListCache, opTimeout time.Duration) *TodoService {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &TodoService{store: s, cache: c, opTimeout: opTimeout}
}

func (s *TodoService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *TodoService) Create(ctx context.Context, fields store.CreateFields) (domain.Todo, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	t, err := s.store.Create(ctx, fields)
	if err != nil {
		return domain.Todo{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TodoService) Get(ctx context.Context, id string) (domain.Todo, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.Get(ctx, id)
}

func (s *TodoService) Update(ctx context.Context, id string, patch store.Patch) (domain.Todo, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	t, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return domain.Todo{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *TodoService) List(ctx context.Context, limit int32, cursor string) (store.Page, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if s.cache == nil {
		return s.store.List(ctx, limit, cursor)
	}

	key := "list:" + strconv.FormatInt(int64(limit), 10) + ":" + cursor
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if page, err := s.cache.GetPage(ctx, limit, cursor); err == nil && page != nil {
			return *page, nil
		}
		page, err := s.store.List(ctx, limit, cursor)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetPage(ctx, limit, cursor, page)
		return page, nil
	})
	if err != nil {
		return store.Page{}, err
	}
	return v.(store.Page), nil
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx)
	}
}
