package report

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/m/domain"
)

func sale(id int64, at time.Time, total, profit string) domain.Sale {
	return domain.Sale{
		ID:       id,
		Customer: "Jane",
		Total:    decimal.RequireFromString(total),
		Profit:   decimal.RequireFromString(profit),
		SoldAt:   at,
	}
}

func TestGroupByDay(t *testing.T) {
	// Newest first, the order the repository lists them in.
	sales := []domain.Sale{
		sale(4, time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC), "10", "2"),
		sale(3, time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC), "20.50", "5.25"),
		sale(2, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), "30", "6"),
		sale(1, time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC), "40", "8"),
	}

	report := GroupByDay(sales, time.UTC)

	require.Len(t, report.Days, 3)
	assert.Equal(t, "2024-03-01", report.Days[0].Date)
	assert.Equal(t, "2024-03-02", report.Days[1].Date)
	assert.Equal(t, "2024-03-03", report.Days[2].Date)

	day := report.Days[1]
	assert.Equal(t, 2, day.Count)
	assert.True(t, decimal.RequireFromString("50.5").Equal(day.Total), day.Total.String())
	assert.True(t, decimal.RequireFromString("11.25").Equal(day.Profit), day.Profit.String())
	require.Len(t, day.Sales, 2)
	assert.Equal(t, int64(3), day.Sales[0].ID)
	assert.Equal(t, int64(2), day.Sales[1].ID)

	assert.Equal(t, 4, report.Count)
	assert.True(t, decimal.RequireFromString("100.5").Equal(report.Total), report.Total.String())
	assert.True(t, decimal.RequireFromString("21.25").Equal(report.Profit), report.Profit.String())
}

func TestGroupByDay_UsesLocation(t *testing.T) {
	nairobi, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	// 22:30 UTC is already the next day in Nairobi.
	sales := []domain.Sale{
		sale(2, time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC), "5", "1"),
		sale(1, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "5", "1"),
	}

	utc := GroupByDay(sales, time.UTC)
	require.Len(t, utc.Days, 1)

	local := GroupByDay(sales, nairobi)
	require.Len(t, local.Days, 2)
	assert.Equal(t, "2024-03-01", local.Days[0].Date)
	assert.Equal(t, "2024-03-02", local.Days[1].Date)
}

func TestGroupByDay_Empty(t *testing.T) {
	report := GroupByDay(nil, nil)

	assert.NotNil(t, report.Days)
	assert.Empty(t, report.Days)
	assert.Zero(t, report.Count)
	assert.True(t, report.Total.IsZero())
}

func TestDayBounds(t *testing.T) {
	nairobi, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	start, end, err := DayBounds("2024-03-02", nairobi)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2024, 3, 2, 21, 0, 0, 0, time.UTC), end.UTC())

	_, _, err = DayBounds("02/03/2024", nairobi)
	assert.Error(t, err)
}
