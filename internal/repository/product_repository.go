package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"dukapos/m/domain"
)

const productColumns = `id, name, name_key, cost, price, quantity, created_at, updated_at`

// ProductFilter narrows a catalog listing. Query matches product names
// case-insensitively anywhere in the name.
type ProductFilter struct {
	Query string
}

// ProductRepository stores the product catalog.
type ProductRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db, now: time.Now}
}

// List returns the catalog ordered by id.
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []interface{}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` WHERE name_key LIKE ? ESCAPE '\'`
		args = append(args, containsPattern(domain.NameKey(q)))
	}
	query += ` ORDER BY id`

	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get returns one product or domain.ErrNotFound.
func (r *ProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return r.get(ctx, r.db, id)
}

func (r *ProductRepository) get(ctx context.Context, q sqlx.QueryerContext, id int64) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, q, &p, r.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// Create validates and inserts p, filling in its id and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create product: %w", err)
	}
	defer tx.Rollback()

	if err := r.ensureNameFree(ctx, tx, p.NameKey, 0); err != nil {
		return err
	}

	now := r.now().UTC().Truncate(time.Microsecond)
	p.CreatedAt, p.UpdatedAt = now, now
	err = tx.QueryRowxContext(ctx, r.db.Rebind(`INSERT INTO products (name, name_key, cost, price, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		p.Name, p.NameKey, p.Cost, p.Price, p.Quantity, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("insert product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("commit product: %w", err)
	}
	return nil
}

// Update applies patch to the product with the given id and returns the result.
func (r *ProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update product: %w", err)
	}
	defer tx.Rollback()

	p, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return p, nil
	}

	p.Apply(patch)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := r.ensureNameFree(ctx, tx, p.NameKey, p.ID); err != nil {
		return nil, err
	}

	p.UpdatedAt = r.now().UTC().Truncate(time.Microsecond)
	_, err = tx.ExecContext(ctx, r.db.Rebind(`UPDATE products
		SET name = ?, name_key = ?, cost = ?, price = ?, quantity = ?, updated_at = ?
		WHERE id = ?`),
		p.Name, p.NameKey, p.Cost, p.Price, p.Quantity, p.UpdatedAt, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit product %d: %w", id, err)
	}
	return p, nil
}

// ensureNameFree fails with domain.ErrDuplicateName when another product
// already uses key. The unique index still guards concurrent writers.
func (r *ProductRepository) ensureNameFree(ctx context.Context, q sqlx.QueryerContext, key string, exceptID int64) error {
	var taken bool
	err := sqlx.GetContext(ctx, q, &taken,
		r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM products WHERE name_key = ? AND id <> ?)`), key, exceptID)
	if err != nil {
		return fmt.Errorf("check product name: %w", err)
	}
	if taken {
		return domain.ErrDuplicateName
	}
	return nil
}
