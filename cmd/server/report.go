package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dealerdash/internal/engine"
	"dealerdash/internal/format"
	"dealerdash/internal/models"
)

// --- Summary Command ---

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print dashboard KPIs and breakdowns for a workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		filter, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), store.Dashboard(filter))
		return nil
	},
}

func init() {
	summaryCmd.Flags().String("file", "", "workbook to analyse (required)")
	summaryCmd.Flags().String("country", "", "filter by dealer country")
	summaryCmd.Flags().String("city", "", "filter by dealer city")
	summaryCmd.Flags().String("brand", "", "filter by brand")
	summaryCmd.Flags().String("model", "", "filter by model name")
	summaryCmd.Flags().String("start", "", "first day, YYYY-MM-DD")
	summaryCmd.Flags().String("end", "", "last day, YYYY-MM-DD")
	_ = summaryCmd.MarkFlagRequired("file")
}

// --- Drilldown Command ---

var drilldownCmd = &cobra.Command{
	Use:   "drilldown",
	Short: "List the sales behind a country, city, brand or model",
	RunE: func(cmd *cobra.Command, args []string) error {
		dimFlag, _ := cmd.Flags().GetString("dimension")
		dim, err := engine.ParseDimension(dimFlag)
		if err != nil {
			return err
		}
		value, _ := cmd.Flags().GetString("value")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Dashboard.DrillDownLimit
		}

		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		printDrillDown(cmd.OutOrStdout(), store.DrillDown(dim, value, limit))
		return nil
	},
}

func init() {
	drilldownCmd.Flags().String("file", "", "workbook to analyse (required)")
	drilldownCmd.Flags().String("dimension", "", "country, city, brand or model (required)")
	drilldownCmd.Flags().String("value", "", "category value, e.g. \"Toyota Corolla\" (required)")
	drilldownCmd.Flags().Int("limit", 0, "rows to print (default from config)")
	_ = drilldownCmd.MarkFlagRequired("file")
	_ = drilldownCmd.MarkFlagRequired("dimension")
	_ = drilldownCmd.MarkFlagRequired("value")
}

// --- Helpers ---

func loadStore(cmd *cobra.Command) (*engine.Store, error) {
	path, _ := cmd.Flags().GetString("file")
	data, err := engine.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.NewStore(data), nil
}

func filterFromFlags(cmd *cobra.Command) (models.FilterSpec, error) {
	var f models.FilterSpec
	f.Country, _ = cmd.Flags().GetString("country")
	f.City, _ = cmd.Flags().GetString("city")
	f.Brand, _ = cmd.Flags().GetString("brand")
	f.Model, _ = cmd.Flags().GetString("model")

	for _, bound := range []struct {
		flag string
		dst  *time.Time
	}{
		{"start", &f.DateRange.Start},
		{"end", &f.DateRange.End},
	} {
		v, _ := cmd.Flags().GetString(bound.flag)
		if v == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", bound.flag, v)
		}
		*bound.dst = t
	}
	return f, nil
}

func trendString(t *models.Trend) string {
	if t == nil {
		return "n/a"
	}
	sign := "+"
	if !t.Positive {
		sign = "-"
	}
	return sign + format.Percent(t.Value)
}

func printSummary(out io.Writer, res models.AggregatedResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Total Revenue\t%s\t%s\n", format.Currency(res.TotalRevenue), trendString(res.RevenueTrend))
	fmt.Fprintf(w, "Total Profit\t%s\t%s\n", format.Currency(res.TotalProfit), trendString(res.ProfitTrend))
	fmt.Fprintf(w, "Units Sold\t%s\t%s\n", format.Number(res.TotalUnits), trendString(res.UnitsTrend))

	fmt.Fprintln(w, "\nRevenue by country")
	for _, r := range res.RevenueByCountry {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Country, format.Currency(r.Revenue), format.Percent(r.Percentage))
	}
	fmt.Fprintln(w, "\nRevenue by city")
	for _, r := range res.RevenueByCity {
		fmt.Fprintf(w, "  %s (%s)\t%s\n", r.City, r.Country, format.Currency(r.Revenue))
	}
	fmt.Fprintln(w, "\nTop cars")
	for _, r := range res.TopCars {
		fmt.Fprintf(w, "  %s\t%s units\n", r.Model, format.Number(r.Quantity))
	}
	fmt.Fprintln(w, "\nProfit by brand")
	for _, r := range res.ProfitByBrand {
		fmt.Fprintf(w, "  %s\t%s\t%s units\n", r.Brand, format.Currency(r.Profit), format.Number(r.Quantity))
	}
	fmt.Fprintln(w, "\nProfit vs sales by segment")
	for _, r := range res.ProfitVsSalesBySegment {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s units\n", r.Segment, format.Currency(r.Revenue), format.Currency(r.Profit), format.Number(r.Quantity))
	}
}

func printDrillDown(out io.Writer, res models.DrillDownResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s: %s\n", res.Dimension, res.Value)
	fmt.Fprintf(w, "Revenue %s\tProfit %s\tUnits %s\tAvg order %s\n",
		format.Currency(res.Summary.Revenue), format.Currency(res.Summary.Profit),
		format.Number(res.Summary.Units), format.Currency(res.Summary.AvgOrderValue))
	fmt.Fprintln(w, "\nDate\tModel\tDealer\tLocation\tQty\tRevenue\tProfit")
	for _, s := range res.Sales {
		date := "-"
		if s.Dated() {
			date = s.Date.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s, %s\t%d\t%s\t%s\n",
			date, s.Brand, s.ModelName, s.DealerName, s.City, s.Country,
			s.Quantity, format.Currency(s.TotalPrice), format.Currency(s.TotalProfit))
	}
	if res.TotalCount > len(res.Sales) {
		fmt.Fprintf(w, "\nShowing %d of %d transactions\n", len(res.Sales), res.TotalCount)
	}
}
