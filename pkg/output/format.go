// Package output provides utilities for formatting and displaying valuation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/format"
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// column describes one projection series and how it is displayed.
type column struct {
	name    string
	display func(float64) string
	value   func(dcf.Row) float64
}

var columns = []column{
	{"revenue_growth_rate", format.Percent, func(r dcf.Row) float64 { return r.RevenueGrowthRate }},
	{"revenues", format.Compact, func(r dcf.Row) float64 { return r.Revenues }},
	{"operating_margin", format.Percent, func(r dcf.Row) float64 { return r.OperatingMargin }},
	{"operating_income", format.Compact, func(r dcf.Row) float64 { return r.OperatingIncome }},
	{"tax_rate", format.Percent, func(r dcf.Row) float64 { return r.TaxRate }},
	{"taxes", format.Compact, func(r dcf.Row) float64 { return r.Taxes }},
	{"nol", format.Compact, func(r dcf.Row) float64 { return r.NOL }},
	{"nol_cumulative", format.Compact, func(r dcf.Row) float64 { return r.NOLCumulative }},
	{"nol_utilized", format.Compact, func(r dcf.Row) float64 { return r.NOLUtilized }},
	{"ebit_after_tax", format.Compact, func(r dcf.Row) float64 { return r.EBITAfterTax }},
	{"reinvestment", format.Compact, func(r dcf.Row) float64 { return r.Reinvestment }},
	{"invested_capital", format.Compact, func(r dcf.Row) float64 { return r.InvestedCapital }},
	{"roic", format.Percent, func(r dcf.Row) float64 { return r.ROIC }},
	{"cost_of_capital", format.Percent, func(r dcf.Row) float64 { return r.CostOfCapital }},
	{"fcff", format.Compact, func(r dcf.Row) float64 { return r.FCFF }},
	{"discount_factor", format.Ratio, func(r dcf.Row) float64 { return r.DiscountFactor }},
	{"pv_fcff", format.Compact, func(r dcf.Row) float64 { return r.PVFCFF }},
}

// PeriodLabel names a projection row: the base year, forecast years 1-10
// and the terminal year.
func PeriodLabel(i int) string {
	switch i {
	case 0:
		return "Base"
	case dcf.TerminalPeriod:
		return "Terminal"
	default:
		return strconv.Itoa(i)
	}
}

// PrettyFormat writes a human-readable projection table followed by the
// cost of capital and the bridge to value per share.
func PrettyFormat(w io.Writer, name string, out *dcf.Output) {
	if name != "" {
		fmt.Fprintf(w, "--- Valuation for %s ---\n", name)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := table.Row{""}
	for i := range out.Rows {
		header = append(header, PeriodLabel(i))
	}
	tw.AppendHeader(header)

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i := range out.Rows {
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)

	for _, c := range columns {
		row := table.Row{c.name}
		for _, r := range out.Rows {
			row = append(row, c.display(c.value(r)))
		}
		tw.AppendRow(row)
	}
	tw.Render()

	components := out.CostOfCapitalComponents
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.AppendRows([]table.Row{
		{"Cost of debt (after tax)", format.Percent(components.CostOfDebt)},
		{"Cost of equity", format.Percent(components.CostOfEquity)},
		{"Levered beta", format.Ratio(components.LeveredBeta)},
		{"Risk-free rate", format.Percent(components.RiskFreeRate)},
		{"Equity risk premium", format.Percent(components.EquityRiskPremium)},
	})
	summary.AppendSeparator()
	final := out.FinalComponents
	summary.AppendRows([]table.Row{
		{"PV of cash flows", format.Currency(final.PresentValueOfCashFlows)},
		{"Book value of debt", format.Currency(final.BookValueOfDebt)},
		{"Cash and marketable securities", format.Currency(final.CashAndMarketableSecurities)},
		{"Non-operating assets", format.Currency(final.CrossHoldingsAndOtherNonOperatingAssets)},
		{"Minority interest", format.Currency(final.MinorityInterest)},
	})
	summary.AppendFooter(table.Row{"Value per share", format.Currency(out.ValuePerShare)})
	summary.Render()
}

// CsvFormat writes one record per projection row. Undefined values are empty.
func CsvFormat(w io.Writer, out *dcf.Output) error {
	cw := csv.NewWriter(w)

	header := []string{"period"}
	for _, c := range columns {
		header = append(header, c.name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, r := range out.Rows {
		record := []string{PeriodLabel(i)}
		for _, c := range columns {
			record = append(record, csvValue(c.value(r)))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvValue(v float64) string {
	if !mathutil.IsFinite(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// JSONFormat writes the valuation in its wire encoding.
func JSONFormat(w io.Writer, out *dcf.Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
