package repository

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"dukapos/m/domain"
)

// SaleFilter narrows a sales listing. Zero times leave that side of the range
// open; From is inclusive and To exclusive.
type SaleFilter struct {
	From      time.Time
	To        time.Time
	Customer  string
	WithItems bool
}

// SaleRepository records sales and the stock movements they cause.
type SaleRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSaleRepository(db *sqlx.DB) *SaleRepository {
	return &SaleRepository{db: db, now: time.Now}
}

type stockedProduct struct {
	Name  string          `db:"name"`
	Price decimal.Decimal `db:"price"`
	Cost  decimal.Decimal `db:"cost"`
}

// Create records order as one sale. Stock for every line is taken inside a
// single transaction, so either the whole sale is stored or nothing changes.
func (r *SaleRepository) Create(ctx context.Context, order domain.SaleOrder) (*domain.Sale, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	now := r.now().UTC().Truncate(time.Microsecond)
	sale := &domain.Sale{
		Customer: order.Customer,
		Items:    make([]domain.SaleItem, 0, len(order.Lines)),
		Total:    decimal.Zero,
		Profit:   decimal.Zero,
		SoldAt:   now,
	}

	// Rows are locked in ascending product id so that two sales touching the
	// same products cannot wait on each other.
	stocked := make([]*stockedProduct, len(order.Lines))
	for _, i := range lockOrder(order.Lines) {
		product, err := r.takeStock(ctx, tx, order.Lines[i], now)
		if err != nil {
			return nil, err
		}
		stocked[i] = product
	}
	for i, line := range order.Lines {
		p := stocked[i]
		sale.AddItem(domain.NewSaleItem(line.ProductID, p.Name, p.Price, p.Cost, line.Quantity))
	}

	err = tx.QueryRowxContext(ctx, r.db.Rebind(`INSERT INTO sales (customer, customer_key, total, profit, sold_at) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		sale.Customer, domain.NameKey(sale.Customer), sale.Total, sale.Profit, sale.SoldAt).Scan(&sale.ID)
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	insertItem := r.db.Rebind(`INSERT INTO sale_items (sale_id, position, product_id, product_name, quantity, price, cost, total, profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = sale.ID
		if err := tx.QueryRowxContext(ctx, insertItem,
			item.SaleID, item.Position, item.ProductID, item.Product, item.Quantity,
			item.Price, item.Cost, item.Total, item.Profit).Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("insert sale item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}
	return sale, nil
}

// lockOrder returns the indexes of lines sorted by product id, keeping request
// order among lines for the same product.
func lockOrder(lines []domain.SaleLine) []int {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(lines[a].ProductID, lines[b].ProductID)
	})
	return order
}

// takeStock decrements the line's product only if enough is on hand and
// returns the product's current name, price and cost.
func (r *SaleRepository) takeStock(ctx context.Context, tx *sqlx.Tx, line domain.SaleLine, now time.Time) (*stockedProduct, error) {
	var p stockedProduct
	err := tx.GetContext(ctx, &p, r.db.Rebind(`UPDATE products
		SET quantity = quantity - ?, updated_at = ?
		WHERE id = ? AND quantity >= ?
		RETURNING name, price, cost`),
		line.Quantity, now, line.ProductID, line.Quantity)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("take stock of product %d: %w", line.ProductID, err)
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)`), line.ProductID); err != nil {
		return nil, fmt.Errorf("look up product %d: %w", line.ProductID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: product %d", domain.ErrUnknownProduct, line.ProductID)
	}
	return nil, fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, line.ProductID)
}

// List returns matching sales, most recent first.
func (r *SaleRepository) List(ctx context.Context, filter SaleFilter) ([]domain.Sale, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if !filter.From.IsZero() {
		clauses = append(clauses, "sold_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "sold_at < ?")
		args = append(args, filter.To.UTC())
	}
	if c := strings.TrimSpace(filter.Customer); c != "" {
		clauses = append(clauses, `customer_key LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(domain.NameKey(c)))
	}

	query := `SELECT id, customer, total, profit, sold_at FROM sales`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY sold_at DESC, id DESC`

	sales := []domain.Sale{}
	if err := r.db.SelectContext(ctx, &sales, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if !filter.WithItems || len(sales) == 0 {
		return sales, nil
	}
	if err := r.loadItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *SaleRepository) loadItems(ctx context.Context, sales []domain.Sale) error {
	ids := make([]int64, len(sales))
	index := make(map[int64]int, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
		index[sales[i].ID] = i
		sales[i].Items = []domain.SaleItem{}
	}

	query, args, err := sqlx.In(`SELECT id, sale_id, position, product_id, product_name, quantity, price, cost, total, profit
		FROM sale_items WHERE sale_id IN (?) ORDER BY sale_id, position`, ids)
	if err != nil {
		return fmt.Errorf("build sale items query: %w", err)
	}

	var items []domain.SaleItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	for _, item := range items {
		i := index[item.SaleID]
		sales[i].Items = append(sales[i].Items, item)
	}
	return nil
}
