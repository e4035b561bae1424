package plan

import (
	"github.com/shopspring/decimal"
)

// ReconcileEpsilon is the default tolerance when comparing a cached total
// against a recomputed one: one cent of the currency unit, enough to
// absorb rounding of currency subunits and nothing more.
var ReconcileEpsilon = decimal.RequireFromString("0.01")

// LocationCost sums quantity * unit price over the location's own line
// items only, ignoring descendants. Stored item amounts are deliberately
// not trusted; the product is recomputed from quantity and price.
func LocationCost(l *Location) decimal.Decimal {
	total := decimal.Zero
	for idx := range l.Items {
		item := &l.Items[idx]
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// SubtreeCost is LocationCost plus the SubtreeCost of every direct child,
// recursively, for arbitrary depth.
func SubtreeCost(l *Location) decimal.Decimal {
	total := LocationCost(l)
	for _, child := range l.Children {
		total = total.Add(SubtreeCost(child))
	}
	return total
}

// TreeTotal sums SubtreeCost over all root locations. An empty tree
// totals zero. This is the authoritative value the aggregate's cached
// total_cost must equal.
func TreeTotal(t *Tree) decimal.Decimal {
	total := decimal.Zero
	if t == nil {
		return total
	}
	for _, root := range t.Roots {
		total = total.Add(SubtreeCost(root))
	}
	return total
}

// DeviceCount sums line-item quantities (not line-item count) over the
// location's own items only
func DeviceCount(l *Location) int {
	n := 0
	for idx := range l.Items {
		n += l.Items[idx].Quantity
	}
	return n
}

// SubtreeDeviceCount sums quantities over the location and all descendants
func SubtreeDeviceCount(l *Location) int {
	n := DeviceCount(l)
	for _, child := range l.Children {
		n += SubtreeDeviceCount(child)
	}
	return n
}

// TreeDeviceCount sums quantities over the whole tree
func TreeDeviceCount(t *Tree) int {
	n := 0
	if t == nil {
		return n
	}
	for _, root := range t.Roots {
		n += SubtreeDeviceCount(root)
	}
	return n
}

// Mismatch reports a divergence between a recomputed tree total and a
// cached one. Delta is Expected minus Actual.
type Mismatch struct {
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
	Delta    decimal.Decimal `json:"delta"`
}

// Reconcile compares the recomputed TreeTotal against a cached total with
// the given epsilon tolerance. It returns nil when the totals agree within
// epsilon, otherwise a report of the divergence. It never mutates or
// "fixes" anything; the caller decides what to persist.
func Reconcile(t *Tree, cachedTotal, epsilon decimal.Decimal) *Mismatch {
	expected := TreeTotal(t)
	delta := expected.Sub(cachedTotal)
	if delta.Abs().LessThanOrEqual(epsilon) {
		return nil
	}
	return &Mismatch{
		Expected: expected,
		Actual:   cachedTotal,
		Delta:    delta,
	}
}
