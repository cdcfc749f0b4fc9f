package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreCreateGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	due := "2025-01-01T00:00:00Z"
	created, err := s.Create(ctx, CreateFields{Title: "Buy milk", DueDate: &due, OwnerSub: "sub-1", OwnerUsername: "alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Error("Create() minted empty id")
	}
	if created.CreatedAt == "" || created.CreatedAt != created.UpdatedAt {
		t.Errorf("Create() timestamps = %q / %q, want equal and non-empty", created.CreatedAt, created.UpdatedAt)
	}
	if created.OwnerSub != "sub-1" || created.OwnerUsername != "alice" {
		t.Errorf("Create() owner = %q/%q, want sub-1/alice", created.OwnerSub, created.OwnerUsername)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != created {
		t.Errorf("Get() = %+v, want %+v", got, created)
	}

	// Read is idempotent.
	again, err := s.Get(ctx, created.ID)
	if err != nil || again != got {
		t.Errorf("second Get() = %+v, %v, want identical record", again, err)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUpdatePartial(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	due := "2025-01-01T00:00:00Z"
	created, err := s.Create(ctx, CreateFields{Title: "Buy milk", DueDate: &due})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newTitle := "Buy oat milk"
	updated, err := s.Update(ctx, created.ID, Patch{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("Update() title = %q, want %q", updated.Title, newTitle)
	}
	if updated.DueDate == nil || *updated.DueDate != due {
		t.Errorf("Update() dueDate = %v, want unchanged %q", updated.DueDate, due)
	}
	if updated.UpdatedAt < created.UpdatedAt {
		t.Errorf("Update() updatedAt = %q decreased from %q", updated.UpdatedAt, created.UpdatedAt)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Errorf("Update() createdAt = %q, want immutable %q", updated.CreatedAt, created.CreatedAt)
	}

	// Clearing the due date is an explicit null, distinct from leaving it out.
	cleared, err := s.Update(ctx, created.ID, Patch{DueDate: nil, DueDateSet: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if cleared.DueDate != nil {
		t.Errorf("Update() dueDate = %v, want nil", *cleared.DueDate)
	}
	if cleared.Title != newTitle {
		t.Errorf("Update() title = %q, want untouched %q", cleared.Title, newTitle)
	}
}

func TestMemoryStoreUpdateErrors(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Update(ctx, "missing", Patch{}); !errors.Is(err, ErrNoMutableFields) {
		t.Errorf("Update(empty patch) error = %v, want ErrNoMutableFields", err)
	}

	title := "T"
	if _, err := s.Update(ctx, "missing", Patch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing id) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, CreateFields{Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreListPagination(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const total = 7
	want := make(map[string]bool, total)
	for i := 0; i < total; i++ {
		created, err := s.Create(ctx, CreateFields{Title: "item"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		want[created.ID] = false
	}

	// Walk every page; each item must be visited exactly once and the walk
	// must terminate with a nil cursor.
	cursor := ""
	pages := 0
	for {
		page, err := s.List(ctx, 3, cursor)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(page.Items) == 0 {
			t.Fatal("List() returned empty page mid-walk")
		}
		for _, item := range page.Items {
			seen, ok := want[item.ID]
			if !ok {
				t.Fatalf("List() returned unknown id %s", item.ID)
			}
			if seen {
				t.Fatalf("List() returned id %s twice", item.ID)
			}
			want[item.ID] = true
		}
		pages++
		if pages > total {
			t.Fatal("List() pagination did not terminate")
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}

	for id, seen := range want {
		if !seen {
			t.Errorf("List() never returned id %s", id)
		}
	}
}

func TestMemoryStoreListEmpty(t *testing.T) {
	s := NewMemoryStore()
	page, err := s.List(context.Background(), 20, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("List() items = %v, want empty non-nil slice", page.Items)
	}
	if page.NextCursor != nil {
		t.Errorf("List() nextCursor = %q, want nil", *page.NextCursor)
	}
}
