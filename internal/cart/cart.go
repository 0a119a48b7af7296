package cart

import (
	"context"
	"errors"

	"github.com/carla-lopez/backendCoderhouse/internal/catalog"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// Item holds a snapshot of the product at the time it was added.
// Later edits or deletions in the catalog do not touch cart contents.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type Cart struct {
	ID    string `json:"id"`
	Items []Item `json:"items"`
}

// Products is the read side of the catalog that AddItem snapshots from.
type Products interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

type Store interface {
	Create(ctx context.Context) (Cart, error)
	Get(ctx context.Context, id string) (Cart, error)
	AddItem(ctx context.Context, cartID string, productID int64, qty int) (Cart, error)
	Ping(ctx context.Context) error
}
