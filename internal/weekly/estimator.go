// Package weekly derives per-client credit/debit movement. Only the final
// balance is persisted per client, so weekly movement is reconstructed from
// it rather than read from a transaction ledger.
//
// No such ledger exists in the upstream data feed yet; movement is estimated
// by a bounded factor reproducibly derived from the week date and the
// client's PAN. The MovementEstimator seam is where real transaction-derived
// deltas plug in when the feed grows one; any replacement must keep the
// CR/DR mutual-exclusivity and backward-walk recurrence intact.
package weekly

import (
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"
)

// MovementEstimator yields the balance factor for one client and week.
type MovementEstimator interface {
	// HistoryFactor scales a closing balance down to the prior week's when
	// walking history backward. Bounded (0.95, 1].
	HistoryFactor(week, pan string) decimal.Decimal
	// SnapshotFactor scales the current balance into a single selected
	// week's view. Bounded [0.95, 1.05).
	SnapshotFactor(week, pan string) decimal.Decimal
}

// Seeded is the deterministic estimator: same (week, PAN) always yields the
// same factor, which makes derived views reproducible across calls.
type Seeded struct{}

func (Seeded) HistoryFactor(week, pan string) decimal.Decimal {
	s := seedFor(week, pan) % 100
	// 1 - s/2000
	return decimal.New(1, 0).Sub(decimal.New(s, 0).Div(decimal.New(2000, 0)))
}

func (Seeded) SnapshotFactor(week, pan string) decimal.Decimal {
	s := seedFor(week, pan)%100 - 50
	// 1 + s/1000
	return decimal.New(1, 0).Add(decimal.New(s, 0).Div(decimal.New(1000, 0)))
}

// seedFor sums the numeric groups of the week date (YYYY-MM-DD) and adds the
// byte value of the PAN's sixth character (its first digit in a well-formed
// PAN).
func seedFor(week, pan string) int64 {
	var sum int64
	for _, part := range strings.Split(week, "-") {
		var v int64
		for _, r := range part {
			if r < '0' || r > '9' {
				break
			}
			v = v*10 + int64(r-'0')
		}
		sum += v
	}
	if len(pan) > 5 {
		sum += int64(pan[5])
	}
	return sum
}

// ChangeEstimator supplies proportional movement fractions where no week
// context exists (RM portfolio change, expanded client lists).
type ChangeEstimator interface {
	CrFraction() float64  // [0, 0.05)
	DrFraction() float64  // [0, 0.03)
	NetFraction() float64 // (-0.04, +0.06)
}

// RandomChange draws fresh fractions every call, matching the upstream
// behaviour these views had. Swap in FixedChange where determinism matters.
type RandomChange struct {
	rng *rand.Rand
}

func NewRandomChange() *RandomChange {
	return &RandomChange{rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (r *RandomChange) CrFraction() float64  { return r.rng.Float64() * 0.05 }
func (r *RandomChange) DrFraction() float64  { return r.rng.Float64() * 0.03 }
func (r *RandomChange) NetFraction() float64 { return r.rng.Float64()*0.1 - 0.04 }

// FixedChange returns constant fractions.
type FixedChange struct {
	Cr, Dr, Net float64
}

func (f FixedChange) CrFraction() float64  { return f.Cr }
func (f FixedChange) DrFraction() float64  { return f.Dr }
func (f FixedChange) NetFraction() float64 { return f.Net }
