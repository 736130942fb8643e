package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"dealerdash/internal/models"
)

const (
	// DefaultDrillDownLimit caps the sales returned for display.
	DefaultDrillDownLimit = 50

	unknown = "Unknown"
)

var ErrUnknownDimension = errors.New("unknown drill-down dimension")

// ParseDimension validates a drill-down dimension name.
func ParseDimension(v string) (models.Dimension, error) {
	switch d := models.Dimension(strings.ToLower(strings.TrimSpace(v))); d {
	case models.DimensionCountry, models.DimensionCity, models.DimensionBrand, models.DimensionModel:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, v)
}

// DrillDown lists the sales behind one aggregate category. It always works
// on the full data set, not on a filtered view. Summary and TotalCount
// cover every resolved sale; Sales holds at most limit of them, newest
// first.
func (s *Store) DrillDown(dim models.Dimension, value string, limit int) models.DrillDownResult {
	if limit <= 0 {
		limit = DefaultDrillDownLimit
	}

	res := models.DrillDownResult{
		Dimension: dim,
		Value:     value,
		Sales:     make([]models.EnrichedSale, 0),
	}

	var keep func(*models.Sale) bool
	switch dim {
	case models.DimensionCountry:
		keys := s.dealerKeys(func(d *models.Dealer) bool { return d.Country == value })
		keep = func(sale *models.Sale) bool { return hasKey(keys, sale.DealerID) }
	case models.DimensionCity:
		keys := s.dealerKeys(func(d *models.Dealer) bool { return d.City == value })
		keep = func(sale *models.Sale) bool { return hasKey(keys, sale.DealerID) }
	case models.DimensionBrand:
		keys := s.modelKeys(func(m *models.Model) bool { return m.Brand == value })
		keep = func(sale *models.Sale) bool { return hasKey(keys, sale.ModelID) }
	case models.DimensionModel:
		// Chart labels are "Brand Model" while filters carry bare names.
		keys := s.modelKeys(func(m *models.Model) bool {
			return m.Model == value || m.Brand+" "+m.Model == value
		})
		keep = func(sale *models.Sale) bool { return hasKey(keys, sale.ModelID) }
	default:
		return res
	}

	var enriched []models.EnrichedSale
	for i := range s.data.Sales {
		sale := &s.data.Sales[i]
		if !keep(sale) {
			continue
		}
		enriched = append(enriched, s.Enrich(*sale))

		res.Summary.Revenue += sale.TotalPrice
		res.Summary.Profit += sale.TotalProfit
		res.Summary.Units += sale.Quantity
	}

	res.TotalCount = len(enriched)
	if res.TotalCount > 0 {
		res.Summary.AvgOrderValue = res.Summary.Revenue / float64(res.TotalCount)
	}

	sort.SliceStable(enriched, func(a, b int) bool {
		return enriched[a].Date.After(enriched[b].Date)
	})
	if len(enriched) > limit {
		enriched = enriched[:limit]
	}
	res.Sales = append(res.Sales, enriched...)
	return res
}

// Enrich decorates a sale with its dealer and model fields. Unresolved
// references become "Unknown".
func (s *Store) Enrich(sale models.Sale) models.EnrichedSale {
	e := models.EnrichedSale{
		Sale:       sale,
		DealerName: unknown,
		City:       unknown,
		Country:    unknown,
		Brand:      unknown,
		ModelName:  unknown,
		Segment:    unknown,
	}
	if d, ok := s.Dealer(sale.DealerID); ok {
		e.DealerName = orUnknown(d.DealerName)
		e.City = orUnknown(d.City)
		e.Country = orUnknown(d.Country)
	}
	if m, ok := s.Model(sale.ModelID); ok {
		e.Brand = orUnknown(m.Brand)
		e.ModelName = orUnknown(m.Model)
		e.Segment = orUnknown(m.Segment)
	}
	return e
}

func orUnknown(v string) string {
	if v == "" {
		return unknown
	}
	return v
}
