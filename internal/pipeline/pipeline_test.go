package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rfrancav/vendalytics/internal/metrics"
	"github.com/rfrancav/vendalytics/internal/schema"
)

func sampleTable() schema.RawTable {
	t := schema.RawTable{}
	add := func(id, date, customer, product, category, qty, price, total, state, channel string) {
		t[schema.ColOrderID] = append(t[schema.ColOrderID], id)
		t[schema.ColOrderDate] = append(t[schema.ColOrderDate], date)
		t[schema.ColCustomerID] = append(t[schema.ColCustomerID], customer)
		t[schema.ColProduct] = append(t[schema.ColProduct], product)
		t[schema.ColCategory] = append(t[schema.ColCategory], category)
		t[schema.ColQuantity] = append(t[schema.ColQuantity], qty)
		t[schema.ColUnitPrice] = append(t[schema.ColUnitPrice], price)
		t[schema.ColTotalValue] = append(t[schema.ColTotalValue], total)
		t[schema.ColState] = append(t[schema.ColState], state)
		t[schema.ColChannel] = append(t[schema.ColChannel], channel)
	}

	for i := 0; i < 10; i++ {
		add(fmt.Sprintf("PED%02d", i),
			fmt.Sprintf("2024-0%d-1%d", i%3+1, i%5),
			fmt.Sprintf("%d", 100+i%4),
			fmt.Sprintf("Produto %d", i%3),
			"Eletrônicos",
			"1", "100.00", "100.00", "SP", "Online")
	}
	// rejected row and a duplicate
	add("PEDXX", "not-a-date", "100", "Produto 0", "Eletrônicos", "1", "100.00", "100.00", "SP", "Online")
	add("PED00", "2024-01-10", "100", "Produto 0", "Eletrônicos", "1", "100.00", "100.00", "SP", "Online")
	return t
}

func TestRun_EndToEnd(t *testing.T) {
	res, err := Run(context.Background(), zerolog.Nop(), sampleTable(), DefaultOptions())
	require.NoError(t, err)

	require.NotEmpty(t, res.RunID)
	require.Equal(t, 12, res.Validation.TotalRows)
	require.Equal(t, 11, res.Validation.Accepted)
	require.Equal(t, 1, res.Validation.Rejected[string(schema.ReasonBadDate)])
	require.Equal(t, 1, res.Validation.DuplicatesRemoved)

	require.Len(t, res.Dataset.Orders, 10)
	require.Equal(t, 10, res.Summary.OrderCount)
	require.Equal(t, 4, res.Summary.UniqueCustomers)

	for _, key := range []string{
		metrics.KeyByProduct, metrics.KeyByCategory, metrics.KeyByState,
		metrics.KeyByChannel, metrics.KeyByPeriod,
	} {
		require.NotEmpty(t, res.Grouped[key], key)
	}
	require.NotEmpty(t, res.PeriodSeries)
	require.NotEmpty(t, res.Pricing.Categories)
	require.NotEmpty(t, res.Pricing.Products)
	require.Contains(t, res.Concentration, metrics.KeyByProduct)
	require.Len(t, res.Profiles, 4)
	require.NotEmpty(t, res.Segments)
	require.False(t, res.ReferenceDate.IsZero())
}

func TestRun_RevenueConsistency(t *testing.T) {
	res, err := Run(context.Background(), zerolog.Nop(), sampleTable(), DefaultOptions())
	require.NoError(t, err)

	total := res.Summary.TotalRevenue
	for key, groups := range res.Grouped {
		sum := groups[0].Revenue
		for _, g := range groups[1:] {
			sum = sum.Add(g.Revenue)
		}
		require.True(t, sum.Equal(total), "%s sums to %s, want %s", key, sum, total)
	}
}

func TestRun_Idempotent(t *testing.T) {
	first, err := Run(context.Background(), zerolog.Nop(), sampleTable(), DefaultOptions())
	require.NoError(t, err)
	second, err := Run(context.Background(), zerolog.Nop(), sampleTable(), DefaultOptions())
	require.NoError(t, err)

	require.True(t, first.Summary.TotalRevenue.Equal(second.Summary.TotalRevenue))
	require.Equal(t, first.Grouped, second.Grouped)
	require.Equal(t, first.Profiles, second.Profiles)
	require.Equal(t, first.Insights, second.Insights)
	require.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_EmptyTable(t *testing.T) {
	table := schema.RawTable{}
	for _, col := range schema.RequiredColumns {
		table[col] = nil
	}

	_, err := Run(context.Background(), zerolog.Nop(), table, DefaultOptions())
	var ede *schema.EmptyDatasetError
	require.ErrorAs(t, err, &ede)
	require.Zero(t, ede.TotalRows)
}

func TestRun_AllRowsRejected(t *testing.T) {
	table := sampleTable()
	for i := range table[schema.ColOrderDate] {
		table[schema.ColOrderDate][i] = "banana"
	}

	_, err := Run(context.Background(), zerolog.Nop(), table, DefaultOptions())
	var ede *schema.EmptyDatasetError
	require.ErrorAs(t, err, &ede)
	require.Equal(t, 12, ede.TotalRows)
	require.Equal(t, 12, ede.Rejected)
}

func TestRun_MissingColumn(t *testing.T) {
	table := sampleTable()
	delete(table, schema.ColUnitPrice)

	_, err := Run(context.Background(), zerolog.Nop(), table, DefaultOptions())
	var se *schema.SchemaError
	require.ErrorAs(t, err, &se)
	require.Contains(t, se.Missing, schema.ColUnitPrice)
}

func TestRun_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.OutlierPolicy = "median"
	_, err := Run(context.Background(), zerolog.Nop(), sampleTable(), opts)
	require.Error(t, err)

	opts = DefaultOptions()
	opts.ConcentrationThreshold = 1.5
	_, err = Run(context.Background(), zerolog.Nop(), sampleTable(), opts)
	require.Error(t, err)
}

func TestRun_RawMonetaryOption(t *testing.T) {
	opts := DefaultOptions()
	opts.RFVUseRawMonetary = true
	res, err := Run(context.Background(), zerolog.Nop(), sampleTable(), opts)
	require.NoError(t, err)
	require.Len(t, res.Profiles, 4)
}

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	require.Equal(t, DefaultOptions(), o)

	o = Options{TopN: 10}.withDefaults()
	require.Equal(t, 10, o.TopN)
	require.Equal(t, DefaultOptions().TrendBucket, o.TrendBucket)
}
