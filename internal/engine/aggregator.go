package engine

import (
	"sort"

	"dealerdash/internal/models"
)

// TopCarsLimit is how many entries TopCars keeps.
const TopCarsLimit = 3

// group accumulates one breakdown row. Groups are kept in first-seen
// order so stable sorts break ties by insertion.
type group struct {
	key     string
	label   string // country for cities, brand for cars
	revenue float64
	profit  float64
	units   int
}

type groupSet struct {
	index map[string]int
	rows  []group
}

func newGroupSet() *groupSet {
	return &groupSet{index: make(map[string]int)}
}

// get returns the accumulator for key, creating it on first sight.
func (g *groupSet) get(key, label string) *group {
	if i, ok := g.index[key]; ok {
		return &g.rows[i]
	}
	g.index[key] = len(g.rows)
	g.rows = append(g.rows, group{key: key, label: label})
	return &g.rows[len(g.rows)-1]
}

// Aggregate computes totals and breakdowns over sales. All accumulators
// are built fresh per call. Sales whose dealer or model does not resolve
// still count towards the totals but are left out of the affected
// breakdowns.
func Aggregate(sales []models.Sale, j Joiner) models.AggregatedResult {
	// 1. Totals (no join)
	var res models.AggregatedResult
	for i := range sales {
		res.TotalRevenue += sales[i].TotalPrice
		res.TotalProfit += sales[i].TotalProfit
		res.TotalUnits += sales[i].Quantity
	}

	// 2. Grouping pass
	countries := newGroupSet()
	cities := newGroupSet()
	cars := newGroupSet()
	brands := newGroupSet()
	segments := newGroupSet()

	for i := range sales {
		sale := &sales[i]

		if dealer, ok := j.Dealer(sale.DealerID); ok {
			countries.get(dealer.Country, "").revenue += sale.TotalPrice
			// City keeps the country of its first contributing dealer.
			cities.get(dealer.City, dealer.Country).revenue += sale.TotalPrice
		}

		if model, ok := j.Model(sale.ModelID); ok {
			cars.get(model.Brand+" "+model.Model, model.Brand).units += sale.Quantity

			b := brands.get(model.Brand, "")
			b.profit += sale.TotalProfit
			b.units += sale.Quantity

			seg := segments.get(model.Segment, "")
			seg.revenue += sale.TotalPrice
			seg.profit += sale.TotalProfit
			seg.units += sale.Quantity
		}
	}

	// 3. Build Result
	res.RevenueByCountry = make([]models.CountryRevenue, 0, len(countries.rows))
	for _, g := range countries.rows {
		pct := 0.0
		if res.TotalRevenue > 0 {
			pct = g.revenue / res.TotalRevenue * 100
		}
		res.RevenueByCountry = append(res.RevenueByCountry, models.CountryRevenue{
			Country: g.key, Revenue: g.revenue, Percentage: pct,
		})
	}

	// Cities
	res.RevenueByCity = make([]models.CityRevenue, 0, len(cities.rows))
	for _, g := range cities.rows {
		res.RevenueByCity = append(res.RevenueByCity, models.CityRevenue{
			City: g.key, Country: g.label, Revenue: g.revenue,
		})
	}
	sort.SliceStable(res.RevenueByCity, func(a, b int) bool {
		return res.RevenueByCity[a].Revenue > res.RevenueByCity[b].Revenue
	})

	// Top Cars
	res.TopCars = make([]models.CarQuantity, 0, len(cars.rows))
	for _, g := range cars.rows {
		res.TopCars = append(res.TopCars, models.CarQuantity{
			Model: g.key, Brand: g.label, Quantity: g.units,
		})
	}
	sort.SliceStable(res.TopCars, func(a, b int) bool {
		return res.TopCars[a].Quantity > res.TopCars[b].Quantity
	})
	if len(res.TopCars) > TopCarsLimit {
		res.TopCars = res.TopCars[:TopCarsLimit]
	}

	// Brands
	res.ProfitByBrand = make([]models.BrandProfit, 0, len(brands.rows))
	for _, g := range brands.rows {
		res.ProfitByBrand = append(res.ProfitByBrand, models.BrandProfit{
			Brand: g.key, Profit: g.profit, Quantity: g.units,
		})
	}
	sort.SliceStable(res.ProfitByBrand, func(a, b int) bool {
		return res.ProfitByBrand[a].Profit > res.ProfitByBrand[b].Profit
	})

	// Segments
	res.ProfitVsSalesBySegment = make([]models.SegmentMetrics, 0, len(segments.rows))
	for _, g := range segments.rows {
		res.ProfitVsSalesBySegment = append(res.ProfitVsSalesBySegment, models.SegmentMetrics{
			Segment: g.key, Revenue: g.revenue, Profit: g.profit, Quantity: g.units,
		})
	}
	sort.SliceStable(res.ProfitVsSalesBySegment, func(a, b int) bool {
		return res.ProfitVsSalesBySegment[a].Revenue > res.ProfitVsSalesBySegment[b].Revenue
	})

	return res
}

// Dashboard runs the full pipeline for one filter: filter, aggregate,
// then compare against the preceding period.
func (s *Store) Dashboard(filter models.FilterSpec) models.AggregatedResult {
	current := s.Apply(filter)
	res := Aggregate(current, s)
	res.RevenueTrend, res.ProfitTrend, res.UnitsTrend = s.Trends(filter, current, res.TotalRevenue, res.TotalProfit, res.TotalUnits)
	return res
}
