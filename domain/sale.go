package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID       int64           `db:"id" json:"id"`
	Customer string          `db:"customer" json:"customer"`
	Items    []SaleItem      `db:"-" json:"items"`
	Total    decimal.Decimal `db:"total" json:"total"`
	Profit   decimal.Decimal `db:"profit" json:"profit"`
	SoldAt   time.Time       `db:"sold_at" json:"sold_at"`
}

// SaleItem is a line item as it was sold. Name, price and cost are copied from
// the product so later catalog edits do not rewrite history.
type SaleItem struct {
	ID        int64           `db:"id" json:"-"`
	SaleID    int64           `db:"sale_id" json:"-"`
	Position  int             `db:"position" json:"-"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Product   string          `db:"product_name" json:"product"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Cost      decimal.Decimal `db:"cost" json:"cost"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Profit    decimal.Decimal `db:"profit" json:"profit"`
}

// SaleLine is one requested product/quantity pair of a sale.
type SaleLine struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

// SaleOrder is a sale as requested by the till, before prices are known.
type SaleOrder struct {
	Customer string     `json:"customer" validate:"required,max=200"`
	Lines    []SaleLine `json:"items" validate:"required,min=1,dive"`
}

// Validate checks an order without touching storage.
func (o *SaleOrder) Validate() error {
	o.Customer = strings.TrimSpace(o.Customer)
	if o.Customer == "" {
		return fmt.Errorf("%w: customer is required", ErrInvalidInput)
	}
	if len(o.Lines) == 0 {
		return fmt.Errorf("%w: a sale needs at least one item", ErrInvalidInput)
	}
	for i, line := range o.Lines {
		if line.ProductID <= 0 {
			return fmt.Errorf("%w: item %d has no product", ErrInvalidInput, i+1)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidInput, i+1)
		}
	}
	return nil
}

// NewSaleItem prices a line from the product's current price and cost.
func NewSaleItem(productID int64, name string, price, cost decimal.Decimal, quantity int64) SaleItem {
	qty := decimal.NewFromInt(quantity)
	return SaleItem{
		ProductID: productID,
		Product:   name,
		Quantity:  quantity,
		Price:     price,
		Cost:      cost,
		Total:     price.Mul(qty),
		Profit:    price.Sub(cost).Mul(qty),
	}
}

// AddItem appends a line item and folds it into the sale totals.
func (s *Sale) AddItem(item SaleItem) {
	item.Position = len(s.Items)
	s.Items = append(s.Items, item)
	s.Total = s.Total.Add(item.Total)
	s.Profit = s.Profit.Add(item.Profit)
}
