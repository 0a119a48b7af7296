package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateCode = errors.New("product code already exists")
	ErrValidation    = errors.New("invalid product")
)

type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Thumbnail   string  `json:"thumbnail"`
	Code        string  `json:"code"`
	Stock       int     `json:"stock"`
}

// Fields carries caller-supplied values for a new product. Stock is a
// pointer so an absent stock can be told apart from an explicit zero.
type Fields struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Thumbnail   string  `json:"thumbnail"`
	Code        string  `json:"code"`
	Stock       *int    `json:"stock"`
}

// Patch holds a partial update; nil fields keep the stored value. A
// supplied ID is accepted and ignored, the stored id always wins.
type Patch struct {
	ID          *int64   `json:"id"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Thumbnail   *string  `json:"thumbnail"`
	Code        *string  `json:"code"`
	Stock       *int     `json:"stock"`
}

type Store interface {
	Add(ctx context.Context, f Fields) (Product, error)
	List(ctx context.Context, limit int) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Update(ctx context.Context, id int64, p Patch) (Product, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

func validate(f Fields) error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if strings.TrimSpace(f.Description) == "" {
		return fmt.Errorf("%w: description required", ErrValidation)
	}
	if f.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if strings.TrimSpace(f.Thumbnail) == "" {
		return fmt.Errorf("%w: thumbnail required", ErrValidation)
	}
	if strings.TrimSpace(f.Code) == "" {
		return fmt.Errorf("%w: code required", ErrValidation)
	}
	if f.Stock == nil {
		return fmt.Errorf("%w: stock required", ErrValidation)
	}
	if *f.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	return nil
}

func (p Patch) apply(cur Product) Product {
	if p.Title != nil {
		cur.Title = *p.Title
	}
	if p.Description != nil {
		cur.Description = *p.Description
	}
	if p.Price != nil {
		cur.Price = *p.Price
	}
	if p.Thumbnail != nil {
		cur.Thumbnail = *p.Thumbnail
	}
	if p.Code != nil {
		cur.Code = *p.Code
	}
	if p.Stock != nil {
		cur.Stock = *p.Stock
	}
	return cur
}
