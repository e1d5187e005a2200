// Package sample generates deterministic demo order data shaped like real
// e-commerce exports: weighted product catalog, state and channel mixes,
// and per-order price variation around each product's base price.
package sample

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rfrancav/vendalytics/internal/schema"
)

type product struct {
	name      string
	category  string
	basePrice float64
}

var catalog = []product{
	{"Smartphone Samsung Galaxy", "Smartphones", 1200},
	{"iPhone 14", "Smartphones", 4500},
	{"Notebook Dell Inspiron", "Notebooks", 2800},
	{"Tablet iPad", "Tablets", 2200},
	{"Fones JBL Bluetooth", "Áudio", 300},
	{"Smartwatch Apple", "Wearables", 2000},
	{"Camera Canon EOS", "Fotografia", 3500},
	{"TV 55 LG OLED", "TVs", 2500},
	{"Notebook Lenovo ThinkPad", "Notebooks", 3200},
	{"Mouse Gamer Logitech", "Periféricos", 150},
	{"Teclado Mecânico Corsair", "Periféricos", 400},
	{"Monitor 24 Samsung", "Monitores", 800},
	{"Carregador Wireless", "Acessórios", 200},
	{"Caixa de Som JBL", "Áudio", 500},
	{"HD Externo 1TB", "Armazenamento", 300},
	{"Pendrive 64GB", "Armazenamento", 80},
}

var states = []string{"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "GO"}
var stateWeights = []float64{0.35, 0.15, 0.12, 0.08, 0.08, 0.05, 0.07, 0.10}

var channels = []string{"Online", "Marketplace", "App Mobile"}
var channelWeights = []float64{0.5, 0.35, 0.15}

var quantities = []int{1, 2, 3, 4, 5}
var quantityWeights = []float64{0.6, 0.2, 0.1, 0.06, 0.04}

// Generate produces n order rows ending at the given date, spread over the
// preceding year. The same seed always yields the same table.
func Generate(n int, seed int64, end time.Time) schema.RawTable {
	rng := rand.New(rand.NewSource(seed))

	table := schema.RawTable{}
	cols := []string{
		schema.ColOrderID, schema.ColOrderDate, schema.ColCustomerID,
		schema.ColProduct, schema.ColCategory, schema.ColQuantity,
		schema.ColUnitPrice, schema.ColTotalValue, schema.ColState, schema.ColChannel,
	}
	for _, c := range cols {
		table[c] = make([]string, n)
	}

	for i := 0; i < n; i++ {
		p := catalog[rng.Intn(len(catalog))]
		price := p.basePrice * (0.8 + 0.4*rng.Float64())
		qty := quantities[weighted(rng, quantityWeights)]
		date := end.AddDate(0, 0, -rng.Intn(365))

		table[schema.ColOrderID][i] = fmt.Sprintf("PED%04d", i+1000)
		table[schema.ColOrderDate][i] = date.Format("2006-01-02")
		table[schema.ColCustomerID][i] = fmt.Sprintf("%d", 1000+rng.Intn(9000))
		table[schema.ColProduct][i] = p.name
		table[schema.ColCategory][i] = p.category
		table[schema.ColQuantity][i] = fmt.Sprintf("%d", qty)
		table[schema.ColUnitPrice][i] = fmt.Sprintf("%.2f", price)
		table[schema.ColTotalValue][i] = fmt.Sprintf("%.2f", float64(qty)*price)
		table[schema.ColState][i] = states[weighted(rng, stateWeights)]
		table[schema.ColChannel][i] = channels[weighted(rng, channelWeights)]
	}
	return table
}

func weighted(rng *rand.Rand, weights []float64) int {
	r := rng.Float64()
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}
