package engine

import (
	"sort"

	"dealerdash/internal/models"
)

// Options lists the distinct values a caller can filter on. Cities are
// scoped to country and models to brand when those are set.
func (s *Store) Options(country, brand string) models.FilterOptions {
	var countries, cities, brands, names []string
	seenCountry := make(map[string]bool)
	seenCity := make(map[string]bool)
	for _, d := range s.data.Dealers {
		if d.Country != "" && !seenCountry[d.Country] {
			seenCountry[d.Country] = true
			countries = append(countries, d.Country)
		}
		if country != "" && d.Country != country {
			continue
		}
		if d.City != "" && !seenCity[d.City] {
			seenCity[d.City] = true
			cities = append(cities, d.City)
		}
	}

	seenBrand := make(map[string]bool)
	seenModel := make(map[string]bool)
	for _, m := range s.data.Models {
		if m.Brand != "" && !seenBrand[m.Brand] {
			seenBrand[m.Brand] = true
			brands = append(brands, m.Brand)
		}
		if brand != "" && m.Brand != brand {
			continue
		}
		if m.Model != "" && !seenModel[m.Model] {
			seenModel[m.Model] = true
			names = append(names, m.Model)
		}
	}

	opts := models.FilterOptions{
		Countries: sortedOrEmpty(countries),
		Cities:    sortedOrEmpty(cities),
		Brands:    sortedOrEmpty(brands),
		Models:    sortedOrEmpty(names),
	}
	if start, end, ok := currentPeriod(models.FilterSpec{}, s.data.Sales); ok {
		opts.MinDate, opts.MaxDate = &start, &end
	}
	return opts
}

func sortedOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	sort.Strings(v)
	return v
}
