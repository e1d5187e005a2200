package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rfrancav/vendalytics/internal/cleaning"
	"github.com/rfrancav/vendalytics/internal/metrics"
	"github.com/rfrancav/vendalytics/internal/rfv"
)

// Workbook bundles the tabular outputs written to a single Excel file.
type Workbook struct {
	Dataset  *cleaning.Dataset
	Profiles []rfv.Profile
	Grouped  map[string][]metrics.Group
}

// WriteXLSX writes the cleaned dataset, RFV profiles, and grouped metrics
// as separate sheets of one workbook.
func WriteXLSX(path string, wb Workbook) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeOrdersSheet(f, "Pedidos", wb.Dataset); err != nil {
		return err
	}
	if err := writeProfilesSheet(f, "Clientes RFV", wb.Profiles); err != nil {
		return err
	}
	// One sheet per grouping dimension, in a fixed order.
	for _, key := range []string{metrics.KeyByProduct, metrics.KeyByCategory, metrics.KeyByState, metrics.KeyByChannel, metrics.KeyByPeriod} {
		groups, ok := wb.Grouped[key]
		if !ok {
			continue
		}
		if err := writeGroupedSheet(f, key, groups); err != nil {
			return err
		}
	}

	f.SetSheetName("Sheet1", "Pedidos")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func writeOrdersSheet(f *excelize.File, sheet string, ds *cleaning.Dataset) error {
	if err := setRow(f, sheet, 1, toAny(cleanedHeader)); err != nil {
		return err
	}
	for i, o := range ds.Orders {
		row := []any{
			o.OrderID, o.OrderDate.Format("2006-01-02"), o.CustomerID, o.Product, o.Category,
			o.Quantity, o.UnitPrice.InexactFloat64(), o.TotalValue.InexactFloat64(), o.State, o.Channel,
			o.Year, o.Month, o.Quarter, o.Week, o.Weekday.String(),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeProfilesSheet(f *excelize.File, sheet string, profiles []rfv.Profile) error {
	header := []any{"cliente_id", "recencia", "frequencia", "valor", "score_r", "score_f", "score_v", "score_rfv", "segmento"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, p := range profiles {
		row := []any{
			p.CustomerID, p.Recency, p.Frequency, p.Monetary.InexactFloat64(),
			p.RScore, p.FScore, p.VScore, p.Score, string(p.Segment),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeGroupedSheet(f *excelize.File, sheet string, groups []metrics.Group) error {
	header := []any{"label", "receita", "pedidos", "ticket_medio", "quantidade", "clientes", "participacao_pct"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, g := range groups {
		row := []any{
			g.Label, g.Revenue.InexactFloat64(), g.Orders, g.AvgTicket.InexactFloat64(),
			g.Quantity, g.Customers, metrics.RoundPct(g.Share),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	if row == 1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("export: sheet %q: %w", sheet, err)
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("export: sheet %q row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
