// Package schema defines the canonical order-line record, the raw tabular
// input boundary, and the record validator that turns one into the other.
// Everything downstream of this package operates on typed, validated data.
package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical input column names. Extra columns are ignored; order is
// irrelevant; matching is case-insensitive and trims surrounding space.
const (
	ColOrderID    = "pedido_id"
	ColOrderDate  = "data_pedido"
	ColCustomerID = "cliente_id"
	ColProduct    = "produto"
	ColCategory   = "categoria"
	ColQuantity   = "quantidade"
	ColUnitPrice  = "preco_unitario"
	ColTotalValue = "valor_total"
	ColState      = "estado"
	ColChannel    = "canal_venda"
)

// RequiredColumns must be present in the input header for a run to proceed.
var RequiredColumns = []string{
	ColOrderID, ColOrderDate, ColCustomerID, ColProduct, ColQuantity, ColUnitPrice,
}

// RawTable is a loosely-typed tabular input: column name to cell values.
// All columns share the same length.
type RawTable map[string][]string

// Len returns the number of rows (length of the longest column).
func (t RawTable) Len() int {
	n := 0
	for _, col := range t {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}

// Cell returns the trimmed value at row i of the named column, or "" when
// the column is absent or shorter than i+1.
func (t RawTable) Cell(name string, i int) string {
	col, ok := t[name]
	if !ok || i >= len(col) {
		return ""
	}
	return col[i]
}

// OrderLine is the canonical order record. It is immutable after cleaning;
// calendar fields are derived by the cleaning pipeline, not the validator.
type OrderLine struct {
	OrderID    string
	OrderDate  time.Time
	CustomerID int
	Product    string
	Category   string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalValue decimal.Decimal
	State      string
	Channel    string

	// HasTotal is false when valor_total was absent or unparsable in the
	// input; the cleaning pipeline imputes and reconciles it.
	HasTotal bool

	// Derived calendar attributes, populated during cleaning.
	Year    int
	Month   int
	Quarter int
	Week    int
	Weekday time.Weekday
}
