package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dukapos/m/internal/database/dbtest"
	"dukapos/m/internal/repository"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProducts(t *testing.T) {
	repo := repository.NewProductRepository(dbtest.New(t))
	ctx := context.Background()
	path := writeCatalog(t, `name,cost,price,quantity
Sugar 1kg,80,95.50,24
Salt,20,30,10
sugar 1KG,1,2,3
Rice,abc,10,1
Beans,50,70,-4
,1,1,1
`)

	res, err := LoadProducts(ctx, repo, path, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, Result{Added: 2, Existing: 1, Malformed: 3}, res)

	products, err := repo.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Sugar 1kg", products[0].Name)
	assert.Equal(t, int64(24), products[0].Quantity)
	assert.Equal(t, "95.5", products[0].Price.String())

	// Loading again adds nothing.
	res, err = LoadProducts(ctx, repo, path, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 3, res.Existing)
}

func TestLoadProducts_NoPath(t *testing.T) {
	res, err := LoadProducts(context.Background(), nil, "", zaptest.NewLogger(t))
	assert.NoError(t, err)
	assert.Zero(t, res)
}

func TestLoadProducts_MissingFile(t *testing.T) {
	repo := repository.NewProductRepository(dbtest.New(t))

	_, err := LoadProducts(context.Background(), repo, filepath.Join(t.TempDir(), "nope.csv"), zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "open product catalog")
}
