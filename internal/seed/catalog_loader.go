// Package seed fills an empty shop with a starting product catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dukapos/m/domain"
)

// ProductCreator is the part of the catalog the loader writes to.
type ProductCreator interface {
	Create(ctx context.Context, p *domain.Product) error
}

type catalogRow struct {
	Name     string `csv:"name"`
	Cost     string `csv:"cost"`
	Price    string `csv:"price"`
	Quantity string `csv:"quantity"`
}

// Result counts what a load did.
type Result struct {
	Added     int
	Existing  int
	Malformed int
}

// LoadProducts reads a CSV file with the header name,cost,price,quantity and
// adds every product not already in the catalog. Malformed rows are logged
// and skipped. An empty path is a no-op.
func LoadProducts(ctx context.Context, repo ProductCreator, path string, log *zap.Logger) (Result, error) {
	var res Result
	if path == "" {
		return res, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("open product catalog: %w", err)
	}
	defer file.Close()

	var rows []*catalogRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return res, fmt.Errorf("read product catalog %s: %w", path, err)
	}

	for i, row := range rows {
		// Line 1 is the header.
		line := i + 2
		product, err := row.product()
		if err != nil {
			log.Warn("skipping catalog row", zap.Int("line", line), zap.Error(err))
			res.Malformed++
			continue
		}

		err = repo.Create(ctx, product)
		switch {
		case err == nil:
			res.Added++
		case errors.Is(err, domain.ErrDuplicateName):
			res.Existing++
		case errors.Is(err, domain.ErrInvalidInput):
			log.Warn("skipping catalog row", zap.Int("line", line), zap.Error(err))
			res.Malformed++
		default:
			return res, fmt.Errorf("seed product on line %d: %w", line, err)
		}
	}

	log.Info("seeded product catalog",
		zap.String("path", path),
		zap.Int("added", res.Added),
		zap.Int("existing", res.Existing),
		zap.Int("malformed", res.Malformed),
	)
	return res, nil
}

func (r *catalogRow) product() (*domain.Product, error) {
	cost, err := decimal.NewFromString(strings.TrimSpace(r.Cost))
	if err != nil {
		return nil, fmt.Errorf("cost %q: %w", r.Cost, err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return nil, fmt.Errorf("price %q: %w", r.Price, err)
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(r.Quantity), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("quantity %q: %w", r.Quantity, err)
	}
	return &domain.Product{Name: r.Name, Cost: cost, Price: price, Quantity: qty}, nil
}
