package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/carla-lopez/backendCoderhouse/internal/storage"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	r := NewRegistry(storage.NewFile[Product](dir, "products.json"), zap.NewNop())
	return r, dir
}

func intPtr(n int) *int         { return &n }
func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func penFields() Fields {
	return Fields{
		Title:       "Pen",
		Description: "Blue pen",
		Price:       1.5,
		Thumbnail:   "pen.png",
		Code:        "P-1",
		Stock:       intPtr(10),
	}
}

func TestAdd_AssignsSequentialIDs(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	p1, err := r.Add(ctx, penFields())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p1.ID != 1 {
		t.Fatalf("first id = %d, want 1", p1.ID)
	}

	f := penFields()
	f.Code = "P-2"
	p2, err := r.Add(ctx, f)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p2.ID != 2 {
		t.Fatalf("second id = %d, want 2", p2.ID)
	}
}

func TestAdd_ThenGet_ReturnsSameFields(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	created, err := r.Add(ctx, penFields())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := r.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Fatalf("get = %+v, want %+v", got, created)
	}
	if got.Title != "Pen" || got.Price != 1.5 || got.Stock != 10 {
		t.Fatalf("fields mismatch: %+v", got)
	}
}

func TestAdd_DuplicateCode(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Add(ctx, penFields()); err != nil {
		t.Fatalf("add: %v", err)
	}

	f := penFields()
	f.Title = "Another pen"
	_, err := r.Add(ctx, f)
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("want ErrDuplicateCode, got %v", err)
	}

	all, err := r.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("collection changed on rejected add: len = %d", len(all))
	}
}

func TestAdd_Validation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Fields)
	}{
		{"missing title", func(f *Fields) { f.Title = "" }},
		{"missing description", func(f *Fields) { f.Description = "" }},
		{"zero price", func(f *Fields) { f.Price = 0 }},
		{"negative price", func(f *Fields) { f.Price = -3 }},
		{"missing thumbnail", func(f *Fields) { f.Thumbnail = "" }},
		{"missing code", func(f *Fields) { f.Code = "" }},
		{"missing stock", func(f *Fields) { f.Stock = nil }},
		{"negative stock", func(f *Fields) { f.Stock = intPtr(-1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := penFields()
			tc.mutate(&f)
			if _, err := r.Add(ctx, f); !errors.Is(err, ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}

	f := penFields()
	f.Stock = intPtr(0)
	if _, err := r.Add(ctx, f); err != nil {
		t.Fatalf("zero stock must be valid, got %v", err)
	}
}

func TestUpdate_PartialMerge(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	created, err := r.Add(ctx, penFields())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := r.Update(ctx, created.ID, Patch{Price: f64Ptr(50)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Price != 50 {
		t.Fatalf("price = %v, want 50", updated.Price)
	}
	want := created
	want.Price = 50
	if updated != want {
		t.Fatalf("update touched other fields: %+v vs %+v", updated, want)
	}
}

func TestUpdate_IDImmutable(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	created, err := r.Add(ctx, penFields())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	bogus := int64(99)
	updated, err := r.Update(ctx, created.ID, Patch{ID: &bogus, Title: strPtr("Pencil")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("id changed: %d -> %d", created.ID, updated.ID)
	}

	if _, err := r.Get(ctx, bogus); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bogus id must not exist, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Update(context.Background(), 42, Patch{Title: strPtr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdate_DuplicateCode(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Add(ctx, penFields()); err != nil {
		t.Fatalf("add: %v", err)
	}
	f := penFields()
	f.Code = "P-2"
	second, err := r.Add(ctx, f)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = r.Update(ctx, second.ID, Patch{Code: strPtr("P-1")})
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("want ErrDuplicateCode, got %v", err)
	}

	// Re-writing a product's own code is fine.
	if _, err := r.Update(ctx, second.ID, Patch{Code: strPtr("P-2")}); err != nil {
		t.Fatalf("self code update: %v", err)
	}
}

func TestDelete_ThenGet(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	created, err := r.Add(ctx, penFields())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	f := penFields()
	f.Code = "P-2"
	if _, err := r.Add(ctx, f); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := r.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}

	all, err := r.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("len after delete = %d, want 1", len(all))
	}

	if err := r.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestList_Limit(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f := penFields()
		f.Code = string(rune('A' + i))
		if _, err := r.Add(ctx, f); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	two, err := r.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(two) != 2 || two[0].ID != 1 || two[1].ID != 2 {
		t.Fatalf("limit=2 returned %+v", two)
	}

	all, err := r.List(ctx, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("limit beyond size: len = %d, want 5", len(all))
	}
}

// Deleting the tail element makes its id eligible for reuse. Deleting
// a middle element never does. Legacy numbering, on purpose.
func TestNextID_ReusesTailID(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f := penFields()
		f.Code = string(rune('A' + i))
		if _, err := r.Add(ctx, f); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	if err := r.Delete(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}

	f := penFields()
	f.Code = "D"
	p, err := r.Add(ctx, f)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.ID != 3 {
		t.Fatalf("id after tail delete = %d, want reused 3", p.ID)
	}

	if err := r.Delete(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	f.Code = "E"
	p, err = r.Add(ctx, f)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.ID != 4 {
		t.Fatalf("id after middle delete = %d, want 4", p.ID)
	}
}

func TestRegistry_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	file := storage.NewFile[Product](dir, "products.json")
	ctx := context.Background()

	r := NewRegistry(file, zap.NewNop())
	created, err := r.Add(ctx, penFields())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	reopened := NewRegistry(storage.NewFile[Product](dir, "products.json"), zap.NewNop())
	got, err := reopened.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got != created {
		t.Fatalf("reopen mismatch: %+v vs %+v", got, created)
	}
}

func TestRegistry_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "products.json"), []byte("oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewRegistry(storage.NewFile[Product](dir, "products.json"), zap.NewNop())
	all, err := r.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("want empty collection, got %+v", all)
	}
}
