package models

import "time"

// --- SOURCE RECORDS ---

type Dealer struct {
	DealerID   string `json:"dealer_id"`
	DealerName string `json:"dealer_name"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

type Model struct {
	ModelID    string  `json:"model_id"`
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	Segment    string  `json:"segment"`
	EngineSize float64 `json:"engine_size"`
	Fuel       string  `json:"fuel"`
	Price      float64 `json:"price"`
	Profit     float64 `json:"profit"`
}

// Sale is one sales transaction. A zero Date means the source cell
// could not be read as a date.
type Sale struct {
	SaleID      string    `json:"sale_id"`
	Date        time.Time `json:"date"`
	DealerID    string    `json:"dealer_id"`
	ModelID     string    `json:"model_id"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"total_price"`
	TotalProfit float64   `json:"total_profit"`
}

// Dated reports whether the sale carries a usable date.
func (s Sale) Dated() bool { return !s.Date.IsZero() }

// DashboardData is the imported snapshot. It is never mutated after import.
type DashboardData struct {
	Dealers []Dealer `json:"dealers"`
	Models  []Model  `json:"models"`
	Sales   []Sale   `json:"sales"`
}

// --- FILTERS ---

type DateRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// FilterSpec holds the dashboard predicates. Empty strings and zero times
// are absent predicates.
type FilterSpec struct {
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	Model     string    `json:"model,omitempty"`
	DateRange DateRange `json:"date_range"`
}

// HasFullRange reports whether both date bounds are set.
func (f FilterSpec) HasFullRange() bool {
	return !f.DateRange.Start.IsZero() && !f.DateRange.End.IsZero()
}

// --- AGGREGATES ---

type Trend struct {
	Value    float64 `json:"value"`
	Positive bool    `json:"positive"`
}

type CountryRevenue struct {
	Country    string  `json:"country"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

type CityRevenue struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Revenue float64 `json:"revenue"`
}

type CarQuantity struct {
	Model    string `json:"model"`
	Brand    string `json:"brand"`
	Quantity int    `json:"quantity"`
}

type BrandProfit struct {
	Brand    string  `json:"brand"`
	Profit   float64 `json:"profit"`
	Quantity int     `json:"quantity"`
}

type SegmentMetrics struct {
	Segment  string  `json:"segment"`
	Revenue  float64 `json:"revenue"`
	Profit   float64 `json:"profit"`
	Quantity int     `json:"quantity"`
}

type AggregatedResult struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	TotalUnits   int     `json:"total_units"`

	RevenueTrend *Trend `json:"revenue_trend"`
	ProfitTrend  *Trend `json:"profit_trend"`
	UnitsTrend   *Trend `json:"units_trend"`

	RevenueByCountry       []CountryRevenue `json:"revenue_by_country"`
	RevenueByCity          []CityRevenue    `json:"revenue_by_city"`
	TopCars                []CarQuantity    `json:"top_cars"`
	ProfitByBrand          []BrandProfit    `json:"profit_by_brand"`
	ProfitVsSalesBySegment []SegmentMetrics `json:"profit_vs_sales_by_segment"`
}

// --- DRILL-DOWN ---

type Dimension string

const (
	DimensionCountry Dimension = "country"
	DimensionCity    Dimension = "city"
	DimensionBrand   Dimension = "brand"
	DimensionModel   Dimension = "model"
)

// EnrichedSale is a sale decorated with its resolved dealer and model
// fields, or "Unknown" where the reference is missing.
type EnrichedSale struct {
	Sale
	DealerName string `json:"dealer_name"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Brand      string `json:"brand"`
	ModelName  string `json:"model"`
	Segment    string `json:"segment"`
}

type DrillDownSummary struct {
	Revenue       float64 `json:"revenue"`
	Profit        float64 `json:"profit"`
	Units         int     `json:"units"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// DrillDownResult carries the displayed slice of sales and the totals of
// the whole resolved set.
type DrillDownResult struct {
	Dimension  Dimension        `json:"dimension"`
	Value      string           `json:"value"`
	Sales      []EnrichedSale   `json:"sales"`
	TotalCount int              `json:"total_count"`
	Summary    DrillDownSummary `json:"summary"`
}

// --- FILTER OPTIONS ---

type FilterOptions struct {
	Countries []string   `json:"countries"`
	Cities    []string   `json:"cities"`
	Brands    []string   `json:"brands"`
	Models    []string   `json:"models"`
	MinDate   *time.Time `json:"min_date,omitempty"`
	MaxDate   *time.Time `json:"max_date,omitempty"`
}
