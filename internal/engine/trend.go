package engine

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"dealerdash/internal/models"
)

// periodGap separates the comparison period from the current one.
const periodGap = time.Millisecond

// Trends compares the current totals with the immediately preceding
// period of the same length. All three results are nil when no current
// period can be derived.
func (s *Store) Trends(filter models.FilterSpec, current []models.Sale, revenue, profit float64, units int) (revenueTrend, profitTrend, unitsTrend *models.Trend) {
	start, end, ok := currentPeriod(filter, current)
	if !ok {
		return nil, nil, nil
	}

	prevEnd := start.Add(-periodGap)
	prevStart := prevEnd.Add(-end.Sub(start))

	prevFilter := filter
	prevFilter.DateRange = models.DateRange{Start: prevStart, End: prevEnd}
	prev := Aggregate(s.Apply(prevFilter), s)

	return Delta(revenue, prev.TotalRevenue),
		Delta(profit, prev.TotalProfit),
		Delta(float64(units), float64(prev.TotalUnits))
}

// currentPeriod uses the filter range when both bounds are set, otherwise
// the date span of the dated sales in current.
func currentPeriod(filter models.FilterSpec, current []models.Sale) (start, end time.Time, ok bool) {
	if filter.HasFullRange() {
		return filter.DateRange.Start, filter.DateRange.End, true
	}
	for i := range current {
		d := current[i].Date
		if !current[i].Dated() {
			continue
		}
		if !ok || d.Before(start) {
			start = d
		}
		if !ok || d.After(end) {
			end = d
		}
		ok = true
	}
	return start, end, ok
}

// Delta returns the percentage change from previous to current, rounded to
// one decimal. A zero previous value yields 100% growth when current is
// positive and no trend otherwise. A change too large to represent is
// reported as 100%.
func Delta(current, previous float64) *models.Trend {
	if previous == 0 {
		if current > 0 {
			return &models.Trend{Value: 100, Positive: true}
		}
		return nil
	}
	change := current - previous
	pct := math.Abs(change) / previous * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return &models.Trend{Value: 100, Positive: change >= 0}
	}
	return &models.Trend{
		Value:    decimal.NewFromFloat(pct).Round(1).InexactFloat64(),
		Positive: change >= 0,
	}
}
