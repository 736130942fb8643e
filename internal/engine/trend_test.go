package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerdash/internal/models"
	"dealerdash/internal/testutil"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     *models.Trend
	}{
		{"zero to zero has no trend", 0, 0, nil},
		{"growth from zero", 5, 0, &models.Trend{Value: 100, Positive: true}},
		{"flat", 10, 10, &models.Trend{Value: 0, Positive: true}},
		{"decline", 90, 100, &models.Trend{Value: 10, Positive: false}},
		{"rounded to one decimal", 4, 3, &models.Trend{Value: 33.3, Positive: true}},
		{"drop to zero", 0, 50, &models.Trend{Value: 100, Positive: false}},
		{"overflowing growth", 1e10, 1e-300, &models.Trend{Value: 100, Positive: true}},
		{"infinite current", math.Inf(1), 10, &models.Trend{Value: 100, Positive: true}},
		{"nan current", math.NaN(), 10, &models.Trend{Value: 100, Positive: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delta(tt.current, tt.previous))
		})
	}
}

func TestTrendsExplicitRange(t *testing.T) {
	store := NewStore(testutil.Fixture())

	// February (S3, S4) against the 28 days before it (S1, S2).
	filter := models.FilterSpec{DateRange: models.DateRange{
		Start: testutil.Day(2024, 2, 1),
		End:   testutil.Day(2024, 2, 29),
	}}
	res := store.Dashboard(filter)

	require.Equal(t, 96000.0, res.TotalRevenue)
	assert.Equal(t, &models.Trend{Value: 28, Positive: true}, res.RevenueTrend)
	assert.Equal(t, &models.Trend{Value: 6, Positive: true}, res.ProfitTrend)
	assert.Equal(t, &models.Trend{Value: 33.3, Positive: true}, res.UnitsTrend)
}

func TestTrendsDecline(t *testing.T) {
	store := NewStore(testutil.Fixture())

	// March (S5, S6, S7) against the 30 days before it (S3, S4).
	filter := models.FilterSpec{DateRange: models.DateRange{
		Start: testutil.Day(2024, 3, 1),
		End:   testutil.Day(2024, 3, 31),
	}}
	res := store.Dashboard(filter)

	assert.Equal(t, &models.Trend{Value: 63.5, Positive: false}, res.RevenueTrend)
	assert.Equal(t, &models.Trend{Value: 65.4, Positive: false}, res.ProfitTrend)
	assert.Equal(t, &models.Trend{Value: 0, Positive: true}, res.UnitsTrend)
}

func TestTrendsKeepNonDateFilters(t *testing.T) {
	store := NewStore(testutil.Fixture())

	// Toyota in February is empty, Toyota in the period before is S1+S2.
	res := store.Dashboard(models.FilterSpec{
		Brand: "Toyota",
		DateRange: models.DateRange{
			Start: testutil.Day(2024, 2, 1),
			End:   testutil.Day(2024, 2, 29),
		},
	})

	assert.Zero(t, res.TotalRevenue)
	assert.Equal(t, &models.Trend{Value: 100, Positive: false}, res.RevenueTrend)
}

func TestTrendsDerivedPeriod(t *testing.T) {
	store := NewStore(testutil.Fixture())

	// Only a start bound: the period is the span of the matching sales
	// (Mar 1 - Mar 12) and the 11 days before it hold no sales.
	res := store.Dashboard(models.FilterSpec{DateRange: models.DateRange{Start: testutil.Day(2024, 3, 1)}})

	assert.Equal(t, &models.Trend{Value: 100, Positive: true}, res.RevenueTrend)
	assert.Equal(t, &models.Trend{Value: 100, Positive: true}, res.UnitsTrend)
}

func TestTrendsUndefined(t *testing.T) {
	data := testutil.Single()
	data.Sales = append(data.Sales, models.Sale{SaleID: "S2", DealerID: "D1", ModelID: "M1", Quantity: 1})
	store := NewStore(data)

	// The only matching sale is undated: no period can be derived.
	rev, profit, units := store.Trends(models.FilterSpec{}, data.Sales[1:], 0, 0, 1)

	assert.Nil(t, rev)
	assert.Nil(t, profit)
	assert.Nil(t, units)
}

func TestTrendsExtremeTotals(t *testing.T) {
	data := testutil.Single()
	data.Sales[0].TotalPrice = 1e-300
	data.Sales = append(data.Sales,
		models.Sale{SaleID: "S2", Date: testutil.Day(2024, 1, 3), DealerID: "D1", ModelID: "M1", Quantity: 1, TotalPrice: 1.5e308},
		models.Sale{SaleID: "S3", Date: testutil.Day(2024, 1, 3), DealerID: "D1", ModelID: "M1", Quantity: 1, TotalPrice: 1.5e308},
	)
	store := NewStore(data)

	var res models.AggregatedResult
	require.NotPanics(t, func() {
		res = store.Dashboard(models.FilterSpec{DateRange: models.DateRange{
			Start: testutil.Day(2024, 1, 2),
			End:   testutil.Day(2024, 1, 3),
		}})
	})

	assert.True(t, math.IsInf(res.TotalRevenue, 1))
	assert.Equal(t, &models.Trend{Value: 100, Positive: true}, res.RevenueTrend)
}
