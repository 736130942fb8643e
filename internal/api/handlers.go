package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"dealerdash/internal/engine"
	"dealerdash/internal/format"
	"dealerdash/internal/models"
	"dealerdash/internal/session"
)

const dateLayout = "2006-01-02"

type Handler struct {
	session        *session.Session
	drillDownLimit int
}

func NewHandler(s *session.Session, drillDownLimit int) *Handler {
	if drillDownLimit <= 0 {
		drillDownLimit = engine.DefaultDrillDownLimit
	}
	return &Handler{session: s, drillDownLimit: drillDownLimit}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.Health)
	api.POST("/upload", h.Upload)
	api.DELETE("/data", h.Reset)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/drilldown", h.GetDrillDown)
	api.GET("/filters", h.GetFilterOptions)
}

// --- REQUESTS ---

type dashboardQuery struct {
	Country string `query:"country"`
	City    string `query:"city"`
	Brand   string `query:"brand"`
	Model   string `query:"model"`
	Start   string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string `query:"end"   validate:"omitempty,datetime=2006-01-02"`
}

// filter converts the query into a FilterSpec. Dates are instants at
// midnight UTC, both bounds inclusive: end=2024-01-31 excludes a sale
// timestamped later on Jan 31.
func (q dashboardQuery) filter() models.FilterSpec {
	f := models.FilterSpec{
		Country: strings.TrimSpace(q.Country),
		City:    strings.TrimSpace(q.City),
		Brand:   strings.TrimSpace(q.Brand),
		Model:   strings.TrimSpace(q.Model),
	}
	// Already validated, parse errors cannot happen here.
	if q.Start != "" {
		f.DateRange.Start, _ = time.Parse(dateLayout, q.Start)
	}
	if q.End != "" {
		f.DateRange.End, _ = time.Parse(dateLayout, q.End)
	}
	return f
}

type drillDownQuery struct {
	Dimension string `query:"dimension" validate:"required,oneof=country city brand model"`
	Value     string `query:"value"     validate:"required"`
	Limit     int    `query:"limit"     validate:"min=0,max=1000"`
}

type filterOptionsQuery struct {
	Country string `query:"country"`
	Brand   string `query:"brand"`
}

// --- RESPONSES ---

type kpiDisplay struct {
	Revenue string `json:"revenue"`
	Profit  string `json:"profit"`
	Units   string `json:"units"`
}

type dashboardResponse struct {
	models.AggregatedResult
	Display kpiDisplay `json:"display"`
}

type drillDownResponse struct {
	models.DrillDownResult
	Display kpiDisplay `json:"display"`
	Showing int        `json:"showing"`
}

// --- HANDLERS ---

func bindAndValidate(c echo.Context, q interface{}) error {
	if err := c.Bind(q); err != nil {
		return invalidParameter("malformed query: %v", err)
	}
	return c.Validate(q)
}

func (h *Handler) Health(c echo.Context) error {
	snap, loaded := h.session.Current()
	body := map[string]interface{}{
		"status": "ok",
		"loaded": loaded,
	}
	if loaded {
		body["snapshot"] = snap
	}
	return c.JSON(http.StatusOK, body)
}

// Upload replaces the current data set with the posted workbook.
func (h *Handler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return invalidParameter("multipart field \"file\" is required")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		return invalidParameter("only .xlsx workbooks are supported")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	snap, err := h.session.Import(file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snap)
}

func (h *Handler) Reset(c echo.Context) error {
	h.session.Reset()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetDashboard(c echo.Context) error {
	var q dashboardQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	res, err := h.session.Dashboard(q.filter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		AggregatedResult: res,
		Display: kpiDisplay{
			Revenue: format.Currency(res.TotalRevenue),
			Profit:  format.Currency(res.TotalProfit),
			Units:   format.Number(res.TotalUnits),
		},
	})
}

func (h *Handler) GetDrillDown(c echo.Context) error {
	var q drillDownQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	dim, err := engine.ParseDimension(q.Dimension)
	if err != nil {
		return err
	}
	limit := q.Limit
	if limit == 0 {
		limit = h.drillDownLimit
	}

	res, err := h.session.DrillDown(dim, q.Value, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, drillDownResponse{
		DrillDownResult: res,
		Display: kpiDisplay{
			Revenue: format.Currency(res.Summary.Revenue),
			Profit:  format.Currency(res.Summary.Profit),
			Units:   format.Number(res.Summary.Units),
		},
		Showing: len(res.Sales),
	})
}

func (h *Handler) GetFilterOptions(c echo.Context) error {
	var q filterOptionsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	opts, err := h.session.Options(strings.TrimSpace(q.Country), strings.TrimSpace(q.Brand))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opts)
}
