package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"dealerdash/internal/models"
)

// ErrImport marks a workbook that could not be decoded. No partial data
// set is ever returned alongside it.
var ErrImport = errors.New("import failed")

// --- 1. SHEET AND COLUMN LAYOUT ---

const (
	sheetDealers = "dealers"
	sheetModels  = "models"
	sheetSales   = "sales"
)

// Header aliases, in lookup order. The first alias with a non-empty cell wins.
var (
	colDealerID    = []string{"DealerID", "Dealer ID"}
	colDealerName  = []string{"DealerName", "Dealer Name"}
	colCity        = []string{"City"}
	colCountry     = []string{"Country"}
	colModelID     = []string{"ModelID", "Model ID"}
	colBrand       = []string{"Brand"}
	colModel       = []string{"Model"}
	colSegment     = []string{"Segment"}
	colEngineSize  = []string{"EngineSize (L)", "EngineSize"}
	colFuel        = []string{"Fuel"}
	colPrice       = []string{"Price (USD)", "Price"}
	colProfit      = []string{"Profit (USD)", "Profit"}
	colSaleID      = []string{"SaleID", "Sale ID"}
	colDate        = []string{"Date"}
	colQuantity    = []string{"Quantity"}
	colTotalPrice  = []string{"TotalPrice", "Total Price"}
	colTotalProfit = []string{"Total Profit", "TotalProfit"}
)

// excelEpoch is day zero of spreadsheet serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006",
}

// --- 2. CELL PARSERS ---

// parseFloat is lenient: thousands separators are dropped and anything
// unreadable becomes 0.
func parseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseInt truncates towards zero, so "2.7" reads as 2.
func parseInt(s string) int {
	return int(math.Trunc(parseFloat(s)))
}

// parseDate reads numeric cells as serial day counts and text cells as
// literal dates. It returns the zero time when neither form applies.
func parseDate(s string, numeric bool) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if numeric {
		serial, err := cast.ToFloat64E(s)
		if err != nil || math.IsNaN(serial) || math.IsInf(serial, 0) {
			return time.Time{}
		}
		ms := math.Round(serial * 86400 * 1000)
		return excelEpoch.Add(time.Duration(ms) * time.Millisecond)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// --- 3. SHEET READER ---

// sheetRows is a header-indexed view of one sheet. lines holds the
// 1-based sheet row of each entry in rows.
type sheetRows struct {
	name   string
	header map[string]int
	rows   [][]string
	lines  []int
}

// cell returns the first non-empty value among the aliased columns.
func (sr *sheetRows) cell(row []string, aliases []string) string {
	v, _ := sr.lookup(row, aliases)
	return v
}

// lookup is cell plus the column the value came from, -1 when none did.
func (sr *sheetRows) lookup(row []string, aliases []string) (string, int) {
	for _, a := range aliases {
		idx, ok := sr.header[a]
		if !ok || idx >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[idx]); v != "" {
			return v, idx
		}
	}
	return "", -1
}

// numeric reports whether the cell at rows[i], column col is stored as a
// number rather than text.
func (sr *sheetRows) numeric(f *excelize.File, i, col int) bool {
	if col < 0 {
		return false
	}
	ref, err := excelize.CoordinatesToCellName(col+1, sr.lines[i])
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sr.name, ref)
	return err == nil && (typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber)
}

// resolveSheet picks the sheet by name, then case-insensitively, then by
// position.
func resolveSheet(list []string, name string, pos int) (string, bool) {
	for _, s := range list {
		if s == name {
			return s, true
		}
	}
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return s, true
		}
	}
	if pos < len(list) {
		return list[pos], true
	}
	return "", false
}

func readSheet(f *excelize.File, name string, pos int) (*sheetRows, error) {
	sheet, ok := resolveSheet(f.GetSheetList(), name, pos)
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrImport, name)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrImport, sheet, err)
	}

	sr := &sheetRows{name: sheet, header: make(map[string]int)}
	if len(rows) == 0 {
		return sr, nil
	}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := sr.header[h]; h != "" && !dup {
			sr.header[h] = i
		}
	}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		sr.rows = append(sr.rows, row)
		sr.lines = append(sr.lines, i+2)
	}
	return sr, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// --- 4. MAIN LOADER ---

// LoadFile imports the workbook at path.
func LoadFile(path string) (*models.DashboardData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrImport, path, err)
	}
	defer f.Close()
	return decode(f)
}

// LoadWorkbook imports a workbook from r, e.g. an uploaded file.
func LoadWorkbook(r io.Reader) (*models.DashboardData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImport, err)
	}
	defer f.Close()
	return decode(f)
}

func decode(f *excelize.File) (*models.DashboardData, error) {
	start := time.Now()

	dealerRows, err := readSheet(f, sheetDealers, 0)
	if err != nil {
		return nil, err
	}
	modelRows, err := readSheet(f, sheetModels, 1)
	if err != nil {
		return nil, err
	}
	saleRows, err := readSheet(f, sheetSales, 2)
	if err != nil {
		return nil, err
	}

	data := &models.DashboardData{
		Dealers: make([]models.Dealer, 0, len(dealerRows.rows)),
		Models:  make([]models.Model, 0, len(modelRows.rows)),
		Sales:   make([]models.Sale, 0, len(saleRows.rows)),
	}

	// A. Dealers
	for _, row := range dealerRows.rows {
		data.Dealers = append(data.Dealers, models.Dealer{
			DealerID:   dealerRows.cell(row, colDealerID),
			DealerName: dealerRows.cell(row, colDealerName),
			City:       dealerRows.cell(row, colCity),
			Country:    dealerRows.cell(row, colCountry),
		})
	}

	// B. Models
	for _, row := range modelRows.rows {
		data.Models = append(data.Models, models.Model{
			ModelID:    modelRows.cell(row, colModelID),
			Brand:      modelRows.cell(row, colBrand),
			Model:      modelRows.cell(row, colModel),
			Segment:    modelRows.cell(row, colSegment),
			EngineSize: parseFloat(modelRows.cell(row, colEngineSize)),
			Fuel:       modelRows.cell(row, colFuel),
			Price:      parseFloat(modelRows.cell(row, colPrice)),
			Profit:     parseFloat(modelRows.cell(row, colProfit)),
		})
	}

	// C. Sales
	undated := 0
	for i, row := range saleRows.rows {
		rawDate, dateCol := saleRows.lookup(row, colDate)
		sale := models.Sale{
			SaleID:      saleRows.cell(row, colSaleID),
			Date:        parseDate(rawDate, saleRows.numeric(f, i, dateCol)),
			DealerID:    saleRows.cell(row, colDealerID),
			ModelID:     saleRows.cell(row, colModelID),
			Quantity:    max(parseInt(saleRows.cell(row, colQuantity)), 0),
			TotalPrice:  parseFloat(saleRows.cell(row, colTotalPrice)),
			TotalProfit: parseFloat(saleRows.cell(row, colTotalProfit)),
		}
		if !sale.Dated() {
			undated++
		}
		data.Sales = append(data.Sales, sale)
	}
	if undated > 0 {
		slog.Debug("sales without a readable date", slog.Int("count", undated))
	}

	slog.Info("workbook loaded",
		slog.String("dealers_sheet", dealerRows.name),
		slog.String("models_sheet", modelRows.name),
		slog.String("sales_sheet", saleRows.name),
		slog.Int("dealers", len(data.Dealers)),
		slog.Int("models", len(data.Models)),
		slog.Int("sales", len(data.Sales)),
		slog.Duration("elapsed", time.Since(start)))
	return data, nil
}
