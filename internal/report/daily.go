// Package report turns recorded sales into per-day summaries.
package report

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dukapos/m/domain"
)

const dayLayout = "2006-01-02"

// GroupByDay buckets sales by their calendar day in loc. Days come out in
// ascending order; within a day sales keep the order they were given in.
func GroupByDay(sales []domain.Sale, loc *time.Location) domain.SalesReport {
	if loc == nil {
		loc = time.UTC
	}

	report := domain.SalesReport{
		Days:   []domain.DailySales{},
		Total:  decimal.Zero,
		Profit: decimal.Zero,
	}
	index := make(map[string]int)
	for _, sale := range sales {
		key := sale.SoldAt.In(loc).Format(dayLayout)
		i, ok := index[key]
		if !ok {
			i = len(report.Days)
			index[key] = i
			report.Days = append(report.Days, domain.DailySales{
				Date:   key,
				Sales:  []domain.Sale{},
				Total:  decimal.Zero,
				Profit: decimal.Zero,
			})
		}
		day := &report.Days[i]
		day.Sales = append(day.Sales, sale)
		day.Count++
		day.Total = day.Total.Add(sale.Total)
		day.Profit = day.Profit.Add(sale.Profit)

		report.Count++
		report.Total = report.Total.Add(sale.Total)
		report.Profit = report.Profit.Add(sale.Profit)
	}

	// Day keys are YYYY-MM-DD, so string order is calendar order.
	slices.SortStableFunc(report.Days, func(a, b domain.DailySales) int {
		return strings.Compare(a.Date, b.Date)
	})
	return report
}

// DayBounds returns the instants [start, end) covering the calendar day
// named by date (YYYY-MM-DD) in loc.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(dayLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}
