package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carla-lopez/backendCoderhouse/internal/catalog"
	"github.com/carla-lopez/backendCoderhouse/internal/storage"
)

// Registry owns the cart collection, with the same write-through
// discipline as the product registry but its own lock and file, so
// cart traffic never blocks product traffic.
type Registry struct {
	mu       sync.RWMutex
	file     *storage.File[Cart]
	products Products
	log      *zap.Logger
	carts    []Cart
}

func NewRegistry(file *storage.File[Cart], products Products, log *zap.Logger) *Registry {
	r := &Registry{file: file, products: products, log: log}
	r.carts = hydrate(file, log)
	return r
}

func hydrate(file *storage.File[Cart], log *zap.Logger) []Cart {
	items, err := file.Load(context.Background())
	switch {
	case err == nil:
		return items
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case errors.Is(err, storage.ErrCorrupt):
		log.Warn("cart file corrupt, starting empty", zap.Error(err))
		return nil
	default:
		log.Warn("cart file unreadable, starting empty", zap.Error(err))
		return nil
	}
}

func (r *Registry) Ping(ctx context.Context) error { return ctx.Err() }

func (r *Registry) Create(ctx context.Context) (Cart, error) {
	c := Cart{
		ID:    "c_" + uuid.NewString(),
		Items: []Item{},
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts = append(r.carts, c)
	r.persist(ctx)
	return c, nil
}

func (r *Registry) Get(ctx context.Context, id string) (Cart, error) {
	if err := ctx.Err(); err != nil {
		return Cart{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.carts {
		if c.ID == id {
			return copyCart(c), nil
		}
	}
	return Cart{}, ErrCartNotFound
}

func (r *Registry) AddItem(ctx context.Context, cartID string, productID int64, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.carts {
		if c.ID == cartID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Cart{}, ErrCartNotFound
	}

	// Catalog read and cart write are two independent steps; a failure
	// here leaves the cart untouched.
	p, err := r.products.Get(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return Cart{}, ErrProductNotFound
	}
	if err != nil {
		return Cart{}, err
	}

	c := &r.carts[idx]
	merged := false
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{Product: p, Quantity: qty})
	}

	r.persist(ctx)
	return copyCart(*c), nil
}

func copyCart(c Cart) Cart {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}

func (r *Registry) persist(ctx context.Context) {
	if err := r.file.Save(ctx, r.carts); err != nil {
		r.log.Error("save carts failed", zap.Error(err), zap.String("path", r.file.Path()))
	}
}
