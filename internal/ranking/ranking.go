// Package ranking orders recommendations and lender matches with one shared
// comparator so both lists break ties the same way.
package ranking

import (
	"slices"
	"strings"
)

// Priority is a recommendation urgency tier.
type Priority string

const (
	Critical Priority = "critical"
	High     Priority = "high"
	Medium   Priority = "medium"
	Low      Priority = "low"
)

var tierRank = map[Priority]int{
	Critical: 4,
	High:     3,
	Medium:   2,
	Low:      1,
}

// Rank returns the tier's rank; unknown tiers rank 0.
func (p Priority) Rank() int {
	return tierRank[Priority(strings.ToLower(string(p)))]
}

// Valid reports whether p is one of the four known tiers.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Key is the sort key for one ranked item.
//
// Items order by Value descending, then Tier rank descending, then Secondary
// descending, then Name ascending.
type Key struct {
	Value     float64
	Tier      Priority
	Secondary float64
	Name      string
}

// Compare returns a negative number when a ranks before b.
func Compare(a, b Key) int {
	switch {
	case a.Value > b.Value:
		return -1
	case a.Value < b.Value:
		return 1
	}
	if ra, rb := a.Tier.Rank(), b.Tier.Rank(); ra != rb {
		return rb - ra
	}
	switch {
	case a.Secondary > b.Secondary:
		return -1
	case a.Secondary < b.Secondary:
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

// Less reports whether a ranks strictly before b.
func Less(a, b Key) bool {
	return Compare(a, b) < 0
}

// Sort orders items in place using the key extractor. The sort is stable.
func Sort[T any](items []T, key func(T) Key) {
	slices.SortStableFunc(items, func(a, b T) int {
		return Compare(key(a), key(b))
	})
}
