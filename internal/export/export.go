// Package export serializes run outputs to flat tabular files (CSV and
// Excel). It is a thin rendering layer: all numbers come from the pipeline
// result untouched.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rfrancav/vendalytics/internal/cleaning"
	"github.com/rfrancav/vendalytics/internal/metrics"
	"github.com/rfrancav/vendalytics/internal/rfv"
)

var cleanedHeader = []string{
	"pedido_id", "data_pedido", "cliente_id", "produto", "categoria",
	"quantidade", "preco_unitario", "valor_total", "estado", "canal_venda",
	"ano", "mes", "trimestre", "semana_ano", "dia_semana",
}

// CleanedCSV writes the cleaned dataset with derived calendar columns.
func CleanedCSV(w io.Writer, ds *cleaning.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cleanedHeader); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, o := range ds.Orders {
		rec := []string{
			o.OrderID,
			o.OrderDate.Format("2006-01-02"),
			strconv.Itoa(o.CustomerID),
			o.Product,
			o.Category,
			strconv.Itoa(o.Quantity),
			o.UnitPrice.StringFixed(2),
			o.TotalValue.StringFixed(2),
			o.State,
			o.Channel,
			strconv.Itoa(o.Year),
			strconv.Itoa(o.Month),
			strconv.Itoa(o.Quarter),
			strconv.Itoa(o.Week),
			o.Weekday.String(),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ProfilesCSV writes one row per customer RFV profile.
func ProfilesCSV(w io.Writer, profiles []rfv.Profile) error {
	cw := csv.NewWriter(w)
	header := []string{"cliente_id", "recencia", "frequencia", "valor", "score_r", "score_f", "score_v", "score_rfv", "segmento"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, p := range profiles {
		rec := []string{
			strconv.Itoa(p.CustomerID),
			strconv.Itoa(p.Recency),
			strconv.Itoa(p.Frequency),
			p.Monetary.StringFixed(2),
			strconv.Itoa(p.RScore),
			strconv.Itoa(p.FScore),
			strconv.Itoa(p.VScore),
			strconv.Itoa(p.Score),
			string(p.Segment),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// GroupedCSV writes a grouped aggregate as label/revenue/orders/avg ticket
// rows, in the order the aggregator produced.
func GroupedCSV(w io.Writer, groups []metrics.Group) error {
	cw := csv.NewWriter(w)
	header := []string{"label", "receita", "pedidos", "ticket_medio", "quantidade", "clientes", "participacao_pct"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, g := range groups {
		rec := []string{
			g.Label,
			g.Revenue.StringFixed(2),
			strconv.Itoa(g.Orders),
			g.AvgTicket.StringFixed(2),
			strconv.FormatInt(g.Quantity, 10),
			strconv.Itoa(g.Customers),
			strconv.FormatFloat(metrics.RoundPct(g.Share), 'f', 1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFileCSV writes any of the CSV exports to a path.
func WriteFileCSV(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	return f.Sync()
}
