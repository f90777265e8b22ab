package weekly

import (
	"github.com/shopspring/decimal"

	"CoopBankOffice/internal/config"
	"CoopBankOffice/internal/store"
)

// HistoryEntry is one week of reconstructed movement, newest week first in a
// history slice.
type HistoryEntry struct {
	WeekEnding     string  `json:"week_ending"`
	WeeklyCr       float64 `json:"weekly_cr"`
	WeeklyDr       float64 `json:"weekly_dr"`
	ClosingBalance float64 `json:"closing_balance"`
}

// History reconstructs a client's weekly movement backward from the stored
// current balance across the most recent effective weeks (capped at
// config.HistoryWindow). weeks must be newest first, as the ledger returns
// them.
//
// Each step records the week's closing balance, then scales it back by the
// estimator's factor to obtain the prior week's closing balance; the
// difference is the week's movement, booked as CR or DR, never both. The
// first entry's closing balance is exactly the stored balance, and for every
// consecutive pair closing[i] - cr[i] + dr[i] == closing[i+1].
func History(c store.ClientProfile, weeks []string, est MovementEstimator) []HistoryEntry {
	if len(weeks) > config.HistoryWindow {
		weeks = weeks[:config.HistoryWindow]
	}
	history := make([]HistoryEntry, 0, len(weeks))
	balance := decimal.NewFromFloat(c.AccountBalance)

	for _, week := range weeks {
		prior := balance.Mul(est.HistoryFactor(week, c.PANPrimary)).Round(0)
		change := balance.Sub(prior)

		entry := HistoryEntry{
			WeekEnding:     week,
			ClosingBalance: balance.InexactFloat64(),
		}
		if change.IsPositive() {
			entry.WeeklyCr = change.InexactFloat64()
		} else {
			entry.WeeklyDr = change.Neg().InexactFloat64()
		}
		history = append(history, entry)
		balance = prior
	}
	return history
}

// Snapshot derives a single selected week's view of a client, anchored on
// the current stored balance: one factor application, not a walk.
//
// This intentionally differs from History even for the most recent week:
// History walks from the same anchor with a different factor formula, so the
// two paths can disagree in magnitude for the same week. Both are kept as
// separate named operations until product settles which one the client list
// should show.
func Snapshot(c store.ClientProfile, week string, est MovementEstimator) store.ClientWithMovement {
	factor := est.SnapshotFactor(week, c.PANPrimary)
	balance := decimal.NewFromFloat(c.AccountBalance)
	shifted := balance.Mul(factor).Round(0)
	change := shifted.Sub(balance)

	out := store.ClientWithMovement{ClientProfile: c, ID: c.Key().String()}
	out.AccountBalance = shifted.InexactFloat64()
	out.FreeBalance = decimal.NewFromFloat(c.FreeBalance).Mul(factor).Round(0).InexactFloat64()
	if change.IsPositive() {
		out.WeeklyCr = change.InexactFloat64()
		out.PledgeBalance = c.PledgeBalance + change.InexactFloat64()*0.1
	} else {
		out.WeeklyDr = change.Neg().InexactFloat64()
	}
	return out
}

// Annotate attaches proportional CR/DR estimates to a scoped client list
// (per-RM and per-family-group expansions) without shifting any balances.
func Annotate(clients []store.ClientProfile, est ChangeEstimator) []store.ClientWithMovement {
	out := make([]store.ClientWithMovement, 0, len(clients))
	for _, c := range clients {
		out = append(out, store.ClientWithMovement{
			ClientProfile: c,
			ID:            c.Key().String(),
			WeeklyCr:      c.AccountBalance * est.CrFraction(),
			WeeklyDr:      c.AccountBalance * est.DrFraction(),
		})
	}
	return out
}
