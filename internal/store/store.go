// Package store translates domain intents into key-value operations with
// conditional-existence semantics: create is conditioned on non-existence,
// update and delete on existence. That conditional primitive is the system's
// only concurrency-correctness mechanism.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/biey-root/serverless-rest-api/internal/domain"
)

var (
	ErrNotFound        = errors.New("todo not found")
	ErrConflict        = errors.New("todo already exists (id collision)")
	ErrNoMutableFields = errors.New("no updatable fields provided")
)

// UpstreamError wraps any backend fault that is not a conditional-check
// outcome. It maps to a 502 with the backend detail attached opaquely.
type UpstreamError struct {
	Code    string
	Message string
	Err     error
}

func (e *UpstreamError) Error() string { return "upstream store error: " + e.Code + ": " + e.Message }

func (e *UpstreamError) Unwrap() error { return e.Err }

// CreateFields are the validated inputs to Create; id and timestamps are
// minted by the adapter.
type CreateFields struct {
	Title         string
	DueDate       *string
	OwnerSub      string
	OwnerUsername string
}

// Patch is a partial update. Title is applied when non-nil; DueDate is
// applied when DueDateSet, and may be nil to clear the due date.
type Patch struct {
	Title      *string
	DueDate    *string
	DueDateSet bool
}

// IsEmpty reports whether the patch carries no mutable field.
func (p Patch) IsEmpty() bool { return p.Title == nil && !p.DueDateSet }

// Page is one bounded slice of the collection. NextCursor is the opaque
// exclusive starting point for the following page, nil on the last page.
type Page struct {
	Items      []domain.Todo `json:"items"`
	NextCursor *string       `json:"nextCursor"`
}

// TodoStore is the storage-mutation contract.
type TodoStore interface {
	Create(ctx context.Context, fields CreateFields) (domain.Todo, error)
	Get(ctx context.Context, id string) (domain.Todo, error)
	Update(ctx context.Context, id string, patch Patch) (domain.Todo, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int32, cursor string) (Page, error)
}

func newID() string { return uuid.NewString() }

// nowISO returns the current time as RFC3339 UTC with a Z suffix and
// microsecond precision.
func nowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000Z07:00")
}
