package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/carla-lopez/backendCoderhouse/internal/storage"
)

// Registry owns the product collection. The in-memory slice is the
// source of truth; every mutation is written through to the backing
// file under the write lock. Insertion order is preserved.
type Registry struct {
	mu       sync.RWMutex
	file     *storage.File[Product]
	log      *zap.Logger
	products []Product
}

func NewRegistry(file *storage.File[Product], log *zap.Logger) *Registry {
	r := &Registry{file: file, log: log}
	r.products = hydrate(file, log)
	return r
}

func hydrate(file *storage.File[Product], log *zap.Logger) []Product {
	items, err := file.Load(context.Background())
	switch {
	case err == nil:
		return items
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case errors.Is(err, storage.ErrCorrupt):
		log.Warn("product file corrupt, starting empty", zap.Error(err))
		return nil
	default:
		log.Warn("product file unreadable, starting empty", zap.Error(err))
		return nil
	}
}

func (r *Registry) Ping(ctx context.Context) error { return ctx.Err() }

func (r *Registry) Add(ctx context.Context, f Fields) (Product, error) {
	if err := validate(f); err != nil {
		return Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.Code == f.Code {
			return Product{}, ErrDuplicateCode
		}
	}

	p := Product{
		ID:          r.nextID(),
		Title:       f.Title,
		Description: f.Description,
		Price:       f.Price,
		Thumbnail:   f.Thumbnail,
		Code:        f.Code,
		Stock:       *f.Stock,
	}

	r.products = append(r.products, p)
	r.persist(ctx)
	return p, nil
}

func (r *Registry) List(ctx context.Context, limit int) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.products
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}

	cp := make([]Product, len(out))
	copy(cp, out)
	return cp, nil
}

func (r *Registry) Get(ctx context.Context, id int64) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *Registry) Update(ctx context.Context, id int64, patch Patch) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Product{}, ErrNotFound
	}

	if patch.Code != nil {
		for _, p := range r.products {
			if p.ID != id && p.Code == *patch.Code {
				return Product{}, ErrDuplicateCode
			}
		}
	}

	updated := patch.apply(r.products[idx])
	updated.ID = id

	r.products[idx] = updated
	r.persist(ctx)
	return updated, nil
}

func (r *Registry) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			r.persist(ctx)
			return nil
		}
	}
	return ErrNotFound
}

// nextID follows the legacy rule: one past the id of the last element
// in insertion order, 1 when empty. Deleting the tail element and
// adding again therefore reuses its id. Callers hold the lock.
func (r *Registry) nextID() int64 {
	if len(r.products) == 0 {
		return 1
	}
	return r.products[len(r.products)-1].ID + 1
}

// persist is best effort: the in-memory mutation already happened and
// is what the caller gets back. Callers hold the write lock.
func (r *Registry) persist(ctx context.Context) {
	if err := r.file.Save(ctx, r.products); err != nil {
		r.log.Error("save products failed", zap.Error(err), zap.String("path", r.file.Path()))
	}
}
