// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"dealerdash/internal/models"
)

// Day returns midnight UTC of the given calendar day.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Fixture is a small data set with one sale referencing a missing dealer
// (S6) and one referencing a missing model (S7).
//
//	Totals: revenue 206000, profit 36400, units 11
//	Ghana 110000 (Accra 70000, Kumasi 40000), Nigeria 86000 (Lagos)
func Fixture() *models.DashboardData {
	return &models.DashboardData{
		Dealers: []models.Dealer{
			{DealerID: "D1", DealerName: "Accra Motors", City: "Accra", Country: "Ghana"},
			{DealerID: "D2", DealerName: "Kumasi Autos", City: "Kumasi", Country: "Ghana"},
			{DealerID: "D3", DealerName: "Lagos Cars", City: "Lagos", Country: "Nigeria"},
		},
		Models: []models.Model{
			{ModelID: "M1", Brand: "Toyota", Model: "Corolla", Segment: "Sedan", EngineSize: 1.8, Fuel: "Petrol", Price: 20000, Profit: 4000},
			{ModelID: "M2", Brand: "Toyota", Model: "RAV4", Segment: "SUV", EngineSize: 2.5, Fuel: "Hybrid", Price: 35000, Profit: 7000},
			{ModelID: "M3", Brand: "Honda", Model: "Civic", Segment: "Sedan", EngineSize: 2.0, Fuel: "Petrol", Price: 22000, Profit: 3300},
			{ModelID: "M4", Brand: "Honda", Model: "CR-V", Segment: "SUV", EngineSize: 1.5, Fuel: "Petrol", Price: 30000, Profit: 6000},
		},
		Sales: []models.Sale{
			{SaleID: "S1", Date: Day(2024, 1, 10), DealerID: "D1", ModelID: "M1", Quantity: 2, TotalPrice: 40000, TotalProfit: 8000},
			{SaleID: "S2", Date: Day(2024, 1, 20), DealerID: "D2", ModelID: "M2", Quantity: 1, TotalPrice: 35000, TotalProfit: 7000},
			{SaleID: "S3", Date: Day(2024, 2, 5), DealerID: "D3", ModelID: "M3", Quantity: 3, TotalPrice: 66000, TotalProfit: 9900},
			{SaleID: "S4", Date: Day(2024, 2, 15), DealerID: "D1", ModelID: "M4", Quantity: 1, TotalPrice: 30000, TotalProfit: 6000},
			{SaleID: "S5", Date: Day(2024, 3, 1), DealerID: "D3", ModelID: "M1", Quantity: 1, TotalPrice: 20000, TotalProfit: 4000},
			{SaleID: "S6", Date: Day(2024, 3, 10), DealerID: "DX", ModelID: "M1", Quantity: 1, TotalPrice: 10000, TotalProfit: 1000},
			{SaleID: "S7", Date: Day(2024, 3, 12), DealerID: "D2", ModelID: "MX", Quantity: 2, TotalPrice: 5000, TotalProfit: 500},
		},
	}
}

// Single is the one-dealer, one-model, one-sale data set.
func Single() *models.DashboardData {
	return &models.DashboardData{
		Dealers: []models.Dealer{{DealerID: "D1", DealerName: "A", City: "X", Country: "Ghana"}},
		Models:  []models.Model{{ModelID: "M1", Brand: "Toyota", Model: "Corolla", Segment: "Sedan", EngineSize: 1.8, Fuel: "Petrol", Price: 10000, Profit: 2000}},
		Sales:   []models.Sale{{SaleID: "S1", Date: Day(2024, 1, 1), DealerID: "D1", ModelID: "M1", Quantity: 2, TotalPrice: 20000, TotalProfit: 4000}},
	}
}

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial converts t to a spreadsheet serial day number.
func Serial(t time.Time) float64 {
	return float64(t.Sub(excelEpoch)) / float64(24*time.Hour)
}

// NewWorkbook writes data into a workbook with sheets dealers, models and
// sales using the spaced header variants. Dates are stored as serials.
func NewWorkbook(t testing.TB, data *models.DashboardData) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), "dealers"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for _, name := range []string{"models", "sales"} {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet %s: %v", name, err)
		}
	}

	setRow(t, f, "dealers", 1, []interface{}{"Dealer ID", "Dealer Name", "City", "Country"})
	for i, d := range data.Dealers {
		setRow(t, f, "dealers", i+2, []interface{}{d.DealerID, d.DealerName, d.City, d.Country})
	}

	setRow(t, f, "models", 1, []interface{}{"Model ID", "Brand", "Model", "Segment", "EngineSize (L)", "Fuel", "Price (USD)", "Profit (USD)"})
	for i, m := range data.Models {
		setRow(t, f, "models", i+2, []interface{}{m.ModelID, m.Brand, m.Model, m.Segment, m.EngineSize, m.Fuel, m.Price, m.Profit})
	}

	setRow(t, f, "sales", 1, []interface{}{"Sale ID", "Date", "Dealer ID", "Model ID", "Quantity", "Total Price", "Total Profit"})
	for i, s := range data.Sales {
		setRow(t, f, "sales", i+2, []interface{}{s.SaleID, Serial(s.Date), s.DealerID, s.ModelID, s.Quantity, s.TotalPrice, s.TotalProfit})
	}
	return f
}

// WorkbookBytes is NewWorkbook serialized to xlsx.
func WorkbookBytes(t testing.TB, data *models.DashboardData) []byte {
	t.Helper()
	f := NewWorkbook(t, data)
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.Clone(buf.Bytes())
}

func setRow(t testing.TB, f *excelize.File, sheet string, row int, values []interface{}) {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		t.Fatalf("cell name: %v", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		t.Fatalf("set row %s!%s: %v", sheet, cell, err)
	}
}
