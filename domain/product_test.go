package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameKey_FoldsCaseAndSpace(t *testing.T) {
	assert.Equal(t, NameKey("Sugar"), NameKey("  SUGAR "))
	assert.Equal(t, NameKey("école"), NameKey("ÉCOLE"))
	assert.NotEqual(t, NameKey("Sugar"), NameKey("Sugar 2kg"))
}

func TestProductValidate(t *testing.T) {
	valid := func() Product {
		p := Product{Name: " Rice ", Cost: decimal.NewFromInt(80), Price: decimal.NewFromInt(100), Quantity: 3}
		p.Normalize()
		return p
	}

	p := valid()
	require.NoError(t, p.Validate())
	assert.Equal(t, "Rice", p.Name)
	assert.Equal(t, "rice", p.NameKey)

	cases := map[string]func(p *Product){
		"empty name":        func(p *Product) { p.Name = "" },
		"negative cost":     func(p *Product) { p.Cost = decimal.NewFromInt(-1) },
		"negative price":    func(p *Product) { p.Price = decimal.RequireFromString("-0.01") },
		"negative quantity": func(p *Product) { p.Quantity = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid()
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidInput)
		})
	}
}

func TestProductApply(t *testing.T) {
	p := Product{Name: "Milk", Cost: decimal.NewFromInt(50), Price: decimal.NewFromInt(60), Quantity: 10}
	p.Normalize()

	name := " Fresh Milk"
	qty := int64(4)
	p.Apply(ProductPatch{Name: &name, Quantity: &qty})

	assert.Equal(t, "Fresh Milk", p.Name)
	assert.Equal(t, "fresh milk", p.NameKey)
	assert.Equal(t, int64(4), p.Quantity)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(60)))
	assert.True(t, ProductPatch{}.Empty())
	assert.False(t, ProductPatch{Quantity: &qty}.Empty())
}

func TestProductNormalize_RoundsMoneyToCents(t *testing.T) {
	p := Product{Name: "Tea", Cost: decimal.RequireFromString("0.004"), Price: decimal.RequireFromString("1.005"), Quantity: 1}
	p.Normalize()
	assert.True(t, p.Cost.Equal(decimal.Zero), p.Cost.String())
	assert.True(t, p.Price.Equal(decimal.RequireFromString("1.01")), p.Price.String())

	price := decimal.RequireFromString("2.499")
	p.Apply(ProductPatch{Price: &price})
	assert.True(t, p.Price.Equal(decimal.RequireFromString("2.5")), p.Price.String())
}

func TestProductJSON_PricesAreNumbers(t *testing.T) {
	p := Product{ID: 1, Name: "Bread", Cost: decimal.RequireFromString("45.5"), Price: decimal.NewFromInt(55)}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cost":45.5`)
	assert.Contains(t, string(raw), `"price":55`)
	assert.NotContains(t, string(raw), "name_key")
}
