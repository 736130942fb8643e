package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"dealerdash/internal/engine"
	"dealerdash/internal/metrics"
	"dealerdash/internal/models"
)

// memoLimit bounds the memoized dashboards per snapshot. Reaching it
// clears the memo.
const memoLimit = 512

// ErrNotLoaded is returned by queries issued before any data set is loaded
// or after a reset.
var ErrNotLoaded = errors.New("no data set loaded")

// Snapshot describes the currently loaded data set.
type Snapshot struct {
	ID       string    `json:"snapshot_id"`
	LoadedAt time.Time `json:"loaded_at"`
	Dealers  int       `json:"dealers"`
	Models   int       `json:"models"`
	Sales    int       `json:"sales"`
}

// Session owns the single in-memory data set. Loading replaces the store
// wholesale; memoized dashboards are keyed by (snapshot, filter) and
// dropped on every load or reset.
type Session struct {
	mu       sync.RWMutex
	store    *engine.Store
	snapshot Snapshot
	memo     map[string]models.AggregatedResult

	flight  singleflight.Group
	metrics *metrics.Metrics
	log     *slog.Logger
}

func New(m *metrics.Metrics, logger *slog.Logger) *Session {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{metrics: m, log: logger}
}

// Import decodes a workbook from r and installs it. On failure the
// previous data set stays in place.
func (s *Session) Import(r io.Reader) (Snapshot, error) {
	data, err := engine.LoadWorkbook(r)
	return s.installImported(data, err)
}

// ImportFile is Import for a workbook on disk.
func (s *Session) ImportFile(path string) (Snapshot, error) {
	data, err := engine.LoadFile(path)
	return s.installImported(data, err)
}

func (s *Session) installImported(data *models.DashboardData, err error) (Snapshot, error) {
	if err != nil {
		s.metrics.Imports.WithLabelValues("failure").Inc()
		s.log.Warn("import failed", slog.String("error", err.Error()))
		return Snapshot{}, err
	}
	s.metrics.Imports.WithLabelValues("success").Inc()
	return s.Load(data), nil
}

// Load installs an already decoded data set.
func (s *Session) Load(data *models.DashboardData) Snapshot {
	store := engine.NewStore(data)
	snap := Snapshot{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Dealers:  len(store.Data().Dealers),
		Models:   len(store.Data().Models),
		Sales:    len(store.Data().Sales),
	}

	s.mu.Lock()
	s.store = store
	s.snapshot = snap
	s.memo = make(map[string]models.AggregatedResult)
	s.mu.Unlock()

	s.log.Info("data set loaded",
		slog.String("snapshot_id", snap.ID),
		slog.Int("dealers", snap.Dealers),
		slog.Int("models", snap.Models),
		slog.Int("sales", snap.Sales))
	return snap
}

// Reset discards the current data set.
func (s *Session) Reset() {
	s.mu.Lock()
	prev := s.snapshot.ID
	s.store = nil
	s.snapshot = Snapshot{}
	s.memo = nil
	s.mu.Unlock()

	if prev != "" {
		s.log.Info("data set discarded", slog.String("snapshot_id", prev))
	}
}

// Current returns the loaded snapshot, if any.
func (s *Session) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.store != nil
}

func (s *Session) current() (*engine.Store, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, "", ErrNotLoaded
	}
	return s.store, s.snapshot.ID, nil
}

// Dashboard returns the aggregate for filter, computing it at most once
// per snapshot. Callers must treat the returned slices as read-only.
func (s *Session) Dashboard(filter models.FilterSpec) (models.AggregatedResult, error) {
	store, id, err := s.current()
	if err != nil {
		return models.AggregatedResult{}, err
	}
	key := id + "|" + FilterKey(filter)

	s.mu.RLock()
	res, hit := s.memo[key]
	s.mu.RUnlock()
	if hit {
		s.metrics.Aggregations.WithLabelValues("hit").Inc()
		return res, nil
	}

	v, _, shared := s.flight.Do(key, func() (interface{}, error) {
		t0 := time.Now()
		res := store.Dashboard(filter)
		s.metrics.AggregationDuration.Observe(time.Since(t0).Seconds())

		s.mu.Lock()
		// Skip the memo if the data set changed underneath us.
		if s.snapshot.ID == id && s.memo != nil {
			if len(s.memo) >= memoLimit {
				s.memo = make(map[string]models.AggregatedResult)
			}
			s.memo[key] = res
		}
		s.mu.Unlock()
		return res, nil
	})
	if shared {
		s.metrics.Aggregations.WithLabelValues("shared").Inc()
	} else {
		s.metrics.Aggregations.WithLabelValues("miss").Inc()
	}
	return v.(models.AggregatedResult), nil
}

// DrillDown resolves the sales behind one aggregate category against the
// full data set.
func (s *Session) DrillDown(dim models.Dimension, value string, limit int) (models.DrillDownResult, error) {
	store, _, err := s.current()
	if err != nil {
		return models.DrillDownResult{}, err
	}
	s.metrics.DrillDowns.WithLabelValues(string(dim)).Inc()
	return store.DrillDown(dim, value, limit), nil
}

// Options lists filter values, scoping cities by country and models by
// brand.
func (s *Session) Options(country, brand string) (models.FilterOptions, error) {
	store, _, err := s.current()
	if err != nil {
		return models.FilterOptions{}, err
	}
	return store.Options(country, brand), nil
}

// FilterKey is a canonical string form of a filter, stable across equal
// filter values.
func FilterKey(f models.FilterSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q|%q|%q|%q|%s|%s",
		f.Country, f.City, f.Brand, f.Model,
		timeKey(f.DateRange.Start), timeKey(f.DateRange.End))
	return b.String()
}

func timeKey(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}
