package engine

import "dealerdash/internal/models"

// Joiner resolves the foreign keys carried by a sale.
type Joiner interface {
	Dealer(id string) (*models.Dealer, bool)
	Model(id string) (*models.Model, bool)
}

// Store holds one imported snapshot plus its ID indices.
// Indices are built once in NewStore and never change afterwards.
type Store struct {
	data *models.DashboardData

	// Hash indices (ID -> record)
	dealerIdx map[string]*models.Dealer
	modelIdx  map[string]*models.Model
}

func NewStore(data *models.DashboardData) *Store {
	if data == nil {
		data = &models.DashboardData{}
	}
	s := &Store{
		data:      data,
		dealerIdx: make(map[string]*models.Dealer, len(data.Dealers)),
		modelIdx:  make(map[string]*models.Model, len(data.Models)),
	}
	// First record wins on duplicated IDs, same as a linear find.
	for i := range data.Dealers {
		d := &data.Dealers[i]
		if _, ok := s.dealerIdx[d.DealerID]; !ok {
			s.dealerIdx[d.DealerID] = d
		}
	}
	for i := range data.Models {
		m := &data.Models[i]
		if _, ok := s.modelIdx[m.ModelID]; !ok {
			s.modelIdx[m.ModelID] = m
		}
	}
	return s
}

func (s *Store) Data() *models.DashboardData { return s.data }

func (s *Store) Dealer(id string) (*models.Dealer, bool) {
	d, ok := s.dealerIdx[id]
	return d, ok
}

func (s *Store) Model(id string) (*models.Model, bool) {
	m, ok := s.modelIdx[id]
	return m, ok
}

// dealerKeys returns the set of dealer IDs whose record passes match.
func (s *Store) dealerKeys(match func(*models.Dealer) bool) map[string]struct{} {
	keys := make(map[string]struct{})
	for i := range s.data.Dealers {
		if match(&s.data.Dealers[i]) {
			keys[s.data.Dealers[i].DealerID] = struct{}{}
		}
	}
	return keys
}

// modelKeys returns the set of model IDs whose record passes match.
func (s *Store) modelKeys(match func(*models.Model) bool) map[string]struct{} {
	keys := make(map[string]struct{})
	for i := range s.data.Models {
		if match(&s.data.Models[i]) {
			keys[s.data.Models[i].ModelID] = struct{}{}
		}
	}
	return keys
}
