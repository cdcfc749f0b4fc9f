package store

import (
	"context"
	"sort"
	"sync"

	"github.com/biey-root/serverless-rest-api/internal/domain"
)

// MemoryStore is an in-memory TodoStore with the same conditional-existence
// semantics as the DynamoDB adapter. It backs tests and local runs without a
// table. Scan order is ascending by id, so cursors stay stable.
type MemoryStore struct {
	mu    sync.RWMutex
	todos map[string]domain.Todo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{todos: make(map[string]domain.Todo)}
}

func (s *MemoryStore) Create(ctx context.Context, fields CreateFields) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowISO()
	todo := domain.Todo{
		ID:            newID(),
		Title:         fields.Title,
		DueDate:       fields.DueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
		OwnerSub:      fields.OwnerSub,
		OwnerUsername: fields.OwnerUsername,
	}
	if _, exists := s.todos[todo.ID]; exists {
		return domain.Todo{}, ErrConflict
	}
	s.todos[todo.ID] = todo
	return todo, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todo, ok := s.todos[id]
	if !ok {
		return domain.Todo{}, ErrNotFound
	}
	return todo, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, patch Patch) (domain.Todo, error) {
	if patch.IsEmpty() {
		return domain.Todo{}, ErrNoMutableFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok {
		return domain.Todo{}, ErrNotFound
	}
	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.DueDateSet {
		todo.DueDate = patch.DueDate
	}
	todo.UpdatedAt = nowISO()
	s.todos[id] = todo
	return todo, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int32, cursor string) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.todos))
	for id := range s.todos {
		if cursor == "" || id > cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	page := Page{Items: []domain.Todo{}}
	for i, id := range ids {
		if int32(i) >= limit {
			break
		}
		page.Items = append(page.Items, s.todos[id])
	}
	if int32(len(ids)) > limit {
		last := page.Items[len(page.Items)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}
