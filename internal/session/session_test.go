package session

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerdash/internal/engine"
	"dealerdash/internal/metrics"
	"dealerdash/internal/models"
	"dealerdash/internal/testutil"
)

func newSession() (*Session, *metrics.Metrics) {
	m := metrics.New()
	return New(m, slog.New(slog.NewTextHandler(io.Discard, nil))), m
}

func TestNotLoaded(t *testing.T) {
	s, _ := newSession()

	_, ok := s.Current()
	assert.False(t, ok)

	_, err := s.Dashboard(models.FilterSpec{})
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.DrillDown(models.DimensionBrand, "Toyota", 0)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.Options("", "")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestImportAndQuery(t *testing.T) {
	s, m := newSession()

	snap, err := s.Import(bytes.NewReader(testutil.WorkbookBytes(t, testutil.Fixture())))
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 3, snap.Dealers)
	assert.Equal(t, 4, snap.Models)
	assert.Equal(t, 7, snap.Sales)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Imports.WithLabelValues("success")))

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, snap, cur)

	res, err := s.Dashboard(models.FilterSpec{Country: "Ghana"})
	require.NoError(t, err)
	assert.Equal(t, 110000.0, res.TotalRevenue)

	dd, err := s.DrillDown(models.DimensionModel, "Toyota Corolla", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, dd.TotalCount)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.DrillDowns.WithLabelValues("model")))

	opts, err := s.Options("", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Honda", "Toyota"}, opts.Brands)
}

func TestDashboardMemo(t *testing.T) {
	s, m := newSession()
	s.Load(testutil.Fixture())
	f := models.FilterSpec{Brand: "Toyota"}

	first, err := s.Dashboard(f)
	require.NoError(t, err)
	second, err := s.Dashboard(f)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Aggregations.WithLabelValues("miss")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Aggregations.WithLabelValues("hit")))
}

func TestMemoBounded(t *testing.T) {
	s, _ := newSession()
	s.Load(testutil.Single())

	for i := 0; i <= memoLimit; i++ {
		_, err := s.Dashboard(models.FilterSpec{City: fmt.Sprintf("city-%d", i)})
		require.NoError(t, err)
	}

	s.mu.RLock()
	size := len(s.memo)
	s.mu.RUnlock()
	assert.LessOrEqual(t, size, memoLimit)
	assert.Equal(t, 1, size)
}

func TestReloadDropsMemo(t *testing.T) {
	s, _ := newSession()
	s.Load(testutil.Fixture())

	before, err := s.Dashboard(models.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, 206000.0, before.TotalRevenue)

	s.Load(testutil.Single())
	after, err := s.Dashboard(models.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, 20000.0, after.TotalRevenue)
}

func TestReset(t *testing.T) {
	s, _ := newSession()
	s.Load(testutil.Single())

	s.Reset()

	_, ok := s.Current()
	assert.False(t, ok)
	_, err := s.Dashboard(models.FilterSpec{})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestFailedImportKeepsPreviousData(t *testing.T) {
	s, m := newSession()
	snap := s.Load(testutil.Single())

	_, err := s.Import(strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, engine.ErrImport)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Imports.WithLabelValues("failure")))

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, snap.ID, cur.ID)
}

func TestConcurrentDashboards(t *testing.T) {
	s, _ := newSession()
	s.Load(testutil.Fixture())

	var wg sync.WaitGroup
	results := make([]models.AggregatedResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.Dashboard(models.FilterSpec{City: "Lagos"})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 86000.0, r.TotalRevenue)
	}
}

func TestFilterKey(t *testing.T) {
	a := models.FilterSpec{Country: "Ghana", DateRange: models.DateRange{Start: testutil.Day(2024, 1, 1)}}
	b := models.FilterSpec{Country: "Ghana", DateRange: models.DateRange{Start: testutil.Day(2024, 1, 1)}}
	c := models.FilterSpec{City: "Ghana", DateRange: models.DateRange{Start: testutil.Day(2024, 1, 1)}}

	assert.Equal(t, FilterKey(a), FilterKey(b))
	assert.NotEqual(t, FilterKey(a), FilterKey(c))
	assert.NotEqual(t, FilterKey(models.FilterSpec{Country: `a"|"b`}), FilterKey(models.FilterSpec{Country: "a", City: "b"}))
	assert.Equal(t, `""|""|""|""|-|-`, FilterKey(models.FilterSpec{}))
}
