package schema

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rfrancav/vendalytics/config"
)

// ValidateOptions controls parsing at the schema boundary.
type ValidateOptions struct {
	// DateLayout is tried first when parsing data_pedido; a small set of
	// common fallbacks is tried afterwards. Defaults to ISO 8601.
	DateLayout string
	// SampleCap bounds the number of rejected cells kept for diagnostics.
	SampleCap int
}

func (o ValidateOptions) withDefaults() ValidateOptions {
	if o.DateLayout == "" {
		o.DateLayout = config.DefaultDateLayout
	}
	if o.SampleCap <= 0 {
		o.SampleCap = config.DefaultRejectedSamples
	}
	return o
}

// dateFallbacks are tried after the configured layout, covering common
// spreadsheet exports.
var dateFallbacks = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// Validate turns a raw table into typed order lines. Row-level failures are
// counted and never abort the run; missing required columns return a
// *SchemaError before any row is parsed.
func Validate(table RawTable, opts ValidateOptions) ([]OrderLine, *ValidationReport, error) {
	opts = opts.withDefaults()
	table = normalizeKeys(table)

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := table[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &SchemaError{Missing: missing}
	}

	report := NewValidationReport()
	report.TotalRows = table.Len()

	lines := make([]OrderLine, 0, report.TotalRows)
	for i := 0; i < report.TotalRows; i++ {
		line, pe := parseRow(table, i, opts)
		if pe != nil {
			report.reject(*pe, opts.SampleCap)
			continue
		}
		lines = append(lines, line)
	}
	report.Accepted = len(lines)
	return lines, report, nil
}

// parseRow coerces one row into an OrderLine or reports the first offending
// cell. Optional columns never reject a row.
func parseRow(table RawTable, i int, opts ValidateOptions) (OrderLine, *ParseError) {
	row := i + 1
	fail := func(col, val string, reason Reason) (OrderLine, *ParseError) {
		return OrderLine{}, &ParseError{Row: row, Column: col, Value: val, Reason: reason}
	}

	orderID := strings.TrimSpace(table.Cell(ColOrderID, i))
	if orderID == "" {
		return fail(ColOrderID, "", ReasonMissingRequired)
	}

	rawDate := strings.TrimSpace(table.Cell(ColOrderDate, i))
	if rawDate == "" {
		return fail(ColOrderDate, "", ReasonMissingRequired)
	}
	date, ok := parseDate(rawDate, opts.DateLayout)
	if !ok {
		return fail(ColOrderDate, rawDate, ReasonBadDate)
	}

	rawCustomer := strings.TrimSpace(table.Cell(ColCustomerID, i))
	if rawCustomer == "" {
		return fail(ColCustomerID, "", ReasonMissingRequired)
	}
	customer, err := strconv.Atoi(rawCustomer)
	if err != nil || customer < 0 {
		return fail(ColCustomerID, rawCustomer, ReasonBadCustomerID)
	}

	product := strings.TrimSpace(table.Cell(ColProduct, i))
	if product == "" {
		return fail(ColProduct, "", ReasonMissingRequired)
	}

	rawQty := strings.TrimSpace(table.Cell(ColQuantity, i))
	if rawQty == "" {
		return fail(ColQuantity, "", ReasonMissingRequired)
	}
	qty, err := strconv.Atoi(rawQty)
	if err != nil {
		return fail(ColQuantity, rawQty, ReasonBadQuantity)
	}
	if qty < 1 {
		return fail(ColQuantity, rawQty, ReasonNegativeQuantity)
	}

	rawPrice := strings.TrimSpace(table.Cell(ColUnitPrice, i))
	if rawPrice == "" {
		return fail(ColUnitPrice, "", ReasonMissingRequired)
	}
	price, ok := ParseMoney(rawPrice)
	if !ok {
		return fail(ColUnitPrice, rawPrice, ReasonBadPrice)
	}
	if price.IsNegative() {
		return fail(ColUnitPrice, rawPrice, ReasonNegativePrice)
	}

	line := OrderLine{
		OrderID:    orderID,
		OrderDate:  date,
		CustomerID: customer,
		Product:    product,
		Category:   strings.TrimSpace(table.Cell(ColCategory, i)),
		Quantity:   qty,
		UnitPrice:  price,
		State:      strings.TrimSpace(table.Cell(ColState, i)),
		Channel:    strings.TrimSpace(table.Cell(ColChannel, i)),
	}

	// valor_total is optional at the boundary; the cleaning pipeline
	// imputes and reconciles it.
	if raw := strings.TrimSpace(table.Cell(ColTotalValue, i)); raw != "" {
		if total, ok := ParseMoney(raw); ok && !total.IsNegative() {
			line.TotalValue = total
			line.HasTotal = true
		}
	}
	return line, nil
}

func parseDate(s, layout string) (time.Time, bool) {
	if t, err := time.Parse(layout, s); err == nil {
		return t, true
	}
	for _, l := range dateFallbacks {
		if l == layout {
			continue
		}
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseMoney parses a monetary cell, tolerating currency symbols and both
// thousands-separator conventions. When only a comma is present it is read
// as the decimal mark (pt-BR exports).
func ParseMoney(s string) (decimal.Decimal, bool) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, " ", "")
	dot, comma := strings.LastIndex(clean, "."), strings.LastIndex(clean, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot: // 1.234,56
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case dot >= 0 && comma >= 0: // 1,234.56
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0: // 123,45
		clean = strings.Replace(clean, ",", ".", 1)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// normalizeKeys lowercases and trims header names so column matching is
// case-insensitive and order-independent.
func normalizeKeys(table RawTable) RawTable {
	out := make(RawTable, len(table))
	for k, v := range table {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
