package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carla-lopez/backendCoderhouse/internal/catalog"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresStore persists carts in two tables, cart_items carrying the
// product snapshot columns. The unique (cart_id, product_id) pair
// turns a repeated add into a quantity increment that leaves the
// original snapshot in place.
type PostgresStore struct {
	db       *sql.DB
	products Products
}

func NewPostgresStore(db *sql.DB, products Products) *PostgresStore {
	return &PostgresStore{db: db, products: products}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Create(ctx context.Context) (Cart, error) {
	c := Cart{
		ID:    "c_" + uuid.NewString(),
		Items: []Item{},
	}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO carts (id) VALUES ($1)`, c.ID)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Cart, error) {
	var c Cart

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		err := s.db.QueryRowContext(ctx, `
			SELECT id FROM carts WHERE id = $1
		`, id).Scan(&c.ID)
		if err == sql.ErrNoRows {
			return ErrCartNotFound
		}
		if err != nil {
			return err
		}

		items, err := s.loadItems(ctx, id)
		if err != nil {
			return err
		}
		c.Items = items
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *PostgresStore) AddItem(ctx context.Context, cartID string, productID int64, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var exists string
		err := s.db.QueryRowContext(ctx, `
			SELECT id FROM carts WHERE id = $1
		`, cartID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrCartNotFound
		}
		if err != nil {
			return err
		}

		p, err := s.products.Get(ctx, productID)
		if errors.Is(err, catalog.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, title, description, price, thumbnail, code, stock, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		`, cartID, p.ID, p.Title, p.Description, p.Price, p.Thumbnail, p.Code, p.Stock, qty)
		return err
	})
	if err != nil {
		return Cart{}, err
	}

	return s.Get(ctx, cartID)
}

func (s *PostgresStore) loadItems(ctx context.Context, cartID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, title, description, price, thumbnail, code, stock, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY pos ASC
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0, 8)
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.Product.ID, &it.Product.Title, &it.Product.Description, &it.Product.Price,
			&it.Product.Thumbnail, &it.Product.Code, &it.Product.Stock, &it.Quantity,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
