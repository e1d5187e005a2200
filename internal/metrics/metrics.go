// Package metrics computes financial and volume aggregates over the cleaned
// dataset. Every function is pure: it reads the dataset without mutation and
// can be called repeatedly and in any order. Monetary sums use decimal
// accumulation; shares keep full precision internally.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rfrancav/vendalytics/internal/cleaning"
)

// Summary carries the headline financial metrics for one analysis run.
type Summary struct {
	TotalRevenue      decimal.Decimal
	OrderCount        int
	AvgTicket         decimal.Decimal
	MedianTicket      decimal.Decimal
	TotalQuantity     int64
	UniqueCustomers   int
	UniqueProducts    int
	UniqueCategories  int
	DateStart         time.Time
	DateEnd           time.Time
	SpanDays          int
	DailyAvgRevenue   decimal.Decimal
	OrdersPerCustomer float64
}

// Summarize computes the financial summary for the dataset.
func Summarize(ds *cleaning.Dataset) Summary {
	var s Summary
	s.OrderCount = len(ds.Orders)
	if s.OrderCount == 0 {
		return s
	}

	customers := map[int]struct{}{}
	products := map[string]struct{}{}
	categories := map[string]struct{}{}
	tickets := make([]decimal.Decimal, 0, s.OrderCount)

	s.DateStart = ds.Orders[0].OrderDate
	s.DateEnd = ds.Orders[0].OrderDate
	for _, o := range ds.Orders {
		s.TotalRevenue = s.TotalRevenue.Add(o.TotalValue)
		s.TotalQuantity += int64(o.Quantity)
		customers[o.CustomerID] = struct{}{}
		products[o.Product] = struct{}{}
		categories[o.Category] = struct{}{}
		tickets = append(tickets, o.TotalValue)
		if o.OrderDate.Before(s.DateStart) {
			s.DateStart = o.OrderDate
		}
		if o.OrderDate.After(s.DateEnd) {
			s.DateEnd = o.OrderDate
		}
	}

	count := decimal.NewFromInt(int64(s.OrderCount))
	s.AvgTicket = s.TotalRevenue.Div(count)
	s.MedianTicket = medianDecimal(tickets)
	s.UniqueCustomers = len(customers)
	s.UniqueProducts = len(products)
	s.UniqueCategories = len(categories)
	s.SpanDays = int(s.DateEnd.Sub(s.DateStart).Hours() / 24)
	spanDays := s.SpanDays
	if spanDays < 1 {
		spanDays = 1
	}
	s.DailyAvgRevenue = s.TotalRevenue.Div(decimal.NewFromInt(int64(spanDays)))
	s.OrdersPerCustomer = float64(s.OrderCount) / float64(s.UniqueCustomers)
	return s
}

func medianDecimal(vals []decimal.Decimal) decimal.Decimal {
	if len(vals) == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, len(vals))
	copy(sorted, vals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

// RoundPct formats a fractional share as a percentage rounded to one
// decimal, the display convention used by reports and insight messages.
func RoundPct(share float64) float64 {
	return math.Round(share*1000) / 10
}
