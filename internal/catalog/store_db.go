package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

// PostgresStore keeps the same contract as Registry on a products
// table. Insertion order is the pos sequence, so the legacy next-id
// rule (last row's id + 1) carries over.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Add(ctx context.Context, f Fields) (Product, error) {
	if err := validate(f); err != nil {
		return Product{}, err
	}

	var p Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var next int64
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE((SELECT id FROM products ORDER BY pos DESC LIMIT 1), 0) + 1
		`).Scan(&next)
		if err != nil {
			return err
		}

		p = Product{
			ID:          next,
			Title:       f.Title,
			Description: f.Description,
			Price:       f.Price,
			Thumbnail:   f.Thumbnail,
			Code:        f.Code,
			Stock:       *f.Stock,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, title, description, price, thumbnail, code, stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.Title, p.Description, p.Price, p.Thumbnail, p.Code, p.Stock)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateCode
			}
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		q := `
			SELECT id, title, description, price, thumbnail, code, stock
			FROM products
			ORDER BY pos ASC
		`
		var (
			rows *sql.Rows
			err  error
		)
		if limit > 0 {
			rows, err = s.db.QueryContext(ctx, q+` LIMIT $1`, limit)
		} else {
			rows, err = s.db.QueryContext(ctx, q)
		}
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Thumbnail, &p.Code, &p.Stock); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Product, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, title, description, price, thumbnail, code, stock
			FROM products
			WHERE id = $1
		`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Thumbnail, &p.Code, &p.Stock)
	})

	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, patch Patch) (Product, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		err = tx.QueryRowContext(ctx, `
			SELECT id, title, description, price, thumbnail, code, stock
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Thumbnail, &p.Code, &p.Stock)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		p = patch.apply(p)
		p.ID = id

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET title = $2, description = $3, price = $4, thumbnail = $5, code = $6, stock = $7
			WHERE id = $1
		`, p.ID, p.Title, p.Description, p.Price, p.Thumbnail, p.Code, p.Stock)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateCode
			}
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
