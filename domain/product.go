package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

func init() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	NameKey   string          `db:"name_key" json:"-"`
	Cost      decimal.Decimal `db:"cost" json:"cost"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ProductPatch carries the fields of a partial product update. Nil fields are
// left untouched.
type ProductPatch struct {
	Name     *string
	Cost     *decimal.Decimal
	Price    *decimal.Decimal
	Quantity *int64
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Cost == nil && p.Price == nil && p.Quantity == nil
}

// NameKey folds a name into the form used for uniqueness checks and
// case-insensitive search, so "Sugar", " sugar " and "SUGAR" collide.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// MoneyPlaces is the number of decimal places money is stored with.
const MoneyPlaces = 2

// Normalize trims the name, refreshes the derived name key and rounds money to
// whole cents.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.NameKey = NameKey(p.Name)
	p.Cost = p.Cost.Round(MoneyPlaces)
	p.Price = p.Price.Round(MoneyPlaces)
}

// Validate checks the catalog invariants of a product.
func (p *Product) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case p.Cost.IsNegative():
		return fmt.Errorf("%w: cost must not be negative", ErrInvalidInput)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return nil
}

// Apply copies the set fields of patch onto p and re-normalizes it.
func (p *Product) Apply(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Cost != nil {
		p.Cost = *patch.Cost
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	p.Normalize()
}
