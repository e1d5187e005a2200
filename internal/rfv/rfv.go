// Package rfv scores every customer on Recency, Frequency, and Value and
// assigns a named segment. Profiles are computed once per analysis run from
// the full cleaned dataset and are immutable; a changed dataset means a
// wholesale recompute.
package rfv

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rfrancav/vendalytics/internal/cleaning"
)

// Profile is one customer's RFV measurement, quintile scores, and segment.
type Profile struct {
	CustomerID int
	Recency    int // days since last order, relative to the reference date
	Frequency  int // distinct order count
	Monetary   decimal.Decimal
	RScore     int
	FScore     int
	VScore     int
	Score      int // RScore + FScore + VScore
	Segment    Segment
}

// ReferenceDate returns the default analysis reference date: the day after
// the most recent order in the dataset.
func ReferenceDate(ds *cleaning.Dataset) time.Time {
	var max time.Time
	for _, o := range ds.Orders {
		if o.OrderDate.After(max) {
			max = o.OrderDate
		}
	}
	return max.AddDate(0, 0, 1)
}

// Compute produces one profile per distinct customer, scored against the
// full customer population. Profiles are ordered by customer id so output
// is reproducible.
func Compute(ds *cleaning.Dataset, reference time.Time) []Profile {
	type acc struct {
		last     time.Time
		orders   int
		monetary decimal.Decimal
	}
	byCustomer := map[int]*acc{}
	for _, o := range ds.Orders {
		a, ok := byCustomer[o.CustomerID]
		if !ok {
			a = &acc{}
			byCustomer[o.CustomerID] = a
		}
		a.orders++
		a.monetary = a.monetary.Add(o.TotalValue)
		if o.OrderDate.After(a.last) {
			a.last = o.OrderDate
		}
	}

	profiles := make([]Profile, 0, len(byCustomer))
	for id, a := range byCustomer {
		profiles = append(profiles, Profile{
			CustomerID: id,
			Recency:    int(reference.Sub(a.last).Hours() / 24),
			Frequency:  a.orders,
			Monetary:   a.monetary,
		})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CustomerID < profiles[j].CustomerID })

	score(profiles)
	for i := range profiles {
		profiles[i].Score = profiles[i].RScore + profiles[i].FScore + profiles[i].VScore
		profiles[i].Segment = Classify(profiles[i].RScore, profiles[i].FScore, profiles[i].VScore)
	}
	return profiles
}

// score fills the three quintile scores. Recency is inverted (most recent
// gets 5); frequency and monetary are direct. With a single customer every
// measure degenerates to one bin, which is accepted precision loss rather
// than an error.
func score(profiles []Profile) {
	n := len(profiles)
	rec := make([]float64, n)
	freq := make([]float64, n)
	mon := make([]float64, n)
	ids := make([]int, n)
	for i, p := range profiles {
		rec[i] = float64(p.Recency)
		freq[i] = float64(p.Frequency)
		mon[i] = p.Monetary.InexactFloat64()
		ids[i] = p.CustomerID
	}
	rbin := quintiles(rec, ids)
	fbin := quintiles(freq, ids)
	vbin := quintiles(mon, ids)
	for i := range profiles {
		profiles[i].RScore = 6 - rbin[i] // smallest recency -> 5
		profiles[i].FScore = fbin[i]
		profiles[i].VScore = vbin[i]
	}
}

// quintiles assigns each value a bin 1..5 by ascending rank, with customer
// id as the stable tie-break. Equal values always share the bin of their
// first occurrence, so identical measures can never land in different bins.
func quintiles(vals []float64, ids []int) []int {
	n := len(vals)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if vals[i] != vals[j] {
			return vals[i] < vals[j]
		}
		return ids[i] < ids[j]
	})
	out := make([]int, n)
	for pos, i := range idx {
		b := pos*5/n + 1
		if pos > 0 && vals[i] == vals[idx[pos-1]] {
			b = out[idx[pos-1]]
		}
		out[i] = b
	}
	return out
}
