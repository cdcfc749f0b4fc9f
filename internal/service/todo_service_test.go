package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biey-root/serverless-rest-api/internal/domain"
	"github.com/biey-root/serverless-rest-api/internal/store"
)

// stalledStore blocks every operation until the passed context is cancelled,
// simulating a backend that never answers.
type stalledStore struct{}

func (stalledStore) wait(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s stalledStore) Create(ctx context.Context, fields store.CreateFields) (domain.Todo, error) {
	return domain.Todo{}, s.wait(ctx)
}

func (s stalledStore) Get(ctx context.Context, id string) (domain.Todo, error) {
	return domain.Todo{}, s.wait(ctx)
}

func (s stalledStore) Update(ctx context.Context, id string, patch store.Patch) (domain.Todo, error) {
	return domain.Todo{}, s.wait(ctx)
}

func (s stalledStore) Delete(ctx context.Context, id string) error {
	return s.wait(ctx)
}

func (s stalledStore) List(ctx context.Context, limit int32, cursor string) (store.Page, error) {
	return store.Page{}, s.wait(ctx)
}

func TestStoreCallsAreBounded(t *testing.T) {
	svc := NewTodoService(stalledStore{}, nil, 20*time.Millisecond)

	ops := map[string]func(ctx context.Context) error{
		"create": func(ctx context.Context) error {
			_, err := svc.Create(ctx, store.CreateFields{Title: "x"})
			return err
		},
		"get": func(ctx context.Context) error {
			_, err := svc.Get(ctx, "id")
			return err
		},
		"update": func(ctx context.Context) error {
			title := "y"
			_, err := svc.Update(ctx, "id", store.Patch{Title: &title})
			return err
		},
		"delete": func(ctx context.Context) error {
			return svc.Delete(ctx, "id")
		},
		"list": func(ctx context.Context) error {
			_, err := svc.List(ctx, 20, "")
			return err
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			err := op(context.Background())
			elapsed := time.Since(start)

			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("error = %v, want context.DeadlineExceeded", err)
			}
			if elapsed > 2*time.Second {
				t.Errorf("operation blocked %v before returning, want the timeout bound", elapsed)
			}
		})
	}
}

func TestDefaultTimeoutApplied(t *testing.T) {
	svc := NewTodoService(store.NewMemoryStore(), nil, 0)
	if svc.opTimeout != defaultOpTimeout {
		t.Errorf("opTimeout = %v, want %v", svc.opTimeout, defaultOpTimeout)
	}

	// A bounded context still reaches the store normally.
	if _, err := svc.Create(context.Background(), store.CreateFields{Title: "x"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}
