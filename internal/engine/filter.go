package engine

import "dealerdash/internal/models"

// Apply returns the sales matching every active predicate of filter.
// Predicates narrow the working set in a fixed order: country, city,
// brand, model, date start, date end. The result is never nil.
func (s *Store) Apply(filter models.FilterSpec) []models.Sale {
	out := make([]models.Sale, len(s.data.Sales))
	copy(out, s.data.Sales)

	if filter.Country != "" {
		keys := s.dealerKeys(func(d *models.Dealer) bool { return d.Country == filter.Country })
		out = keepSales(out, func(sale *models.Sale) bool { return hasKey(keys, sale.DealerID) })
	}
	if filter.City != "" {
		keys := s.dealerKeys(func(d *models.Dealer) bool { return d.City == filter.City })
		out = keepSales(out, func(sale *models.Sale) bool { return hasKey(keys, sale.DealerID) })
	}
	if filter.Brand != "" {
		keys := s.modelKeys(func(m *models.Model) bool { return m.Brand == filter.Brand })
		out = keepSales(out, func(sale *models.Sale) bool { return hasKey(keys, sale.ModelID) })
	}
	if filter.Model != "" {
		keys := s.modelKeys(func(m *models.Model) bool { return m.Model == filter.Model })
		out = keepSales(out, func(sale *models.Sale) bool { return hasKey(keys, sale.ModelID) })
	}

	// Undated sales never satisfy a date bound.
	if start := filter.DateRange.Start; !start.IsZero() {
		out = keepSales(out, func(sale *models.Sale) bool {
			return sale.Dated() && !sale.Date.Before(start)
		})
	}
	if end := filter.DateRange.End; !end.IsZero() {
		out = keepSales(out, func(sale *models.Sale) bool {
			return sale.Dated() && !sale.Date.After(end)
		})
	}
	return out
}

// keepSales filters in place, reusing the backing array.
func keepSales(sales []models.Sale, keep func(*models.Sale) bool) []models.Sale {
	n := 0
	for i := range sales {
		if keep(&sales[i]) {
			sales[n] = sales[i]
			n++
		}
	}
	return sales[:n]
}

func hasKey(keys map[string]struct{}, id string) bool {
	_, ok := keys[id]
	return ok
}
