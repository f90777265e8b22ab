// Package rollup aggregates client rows into the branch report views. All
// functions are pure over store snapshots; groups come back in discovery
// order (first client seen founds the group) and any presentation ordering is
// the view layer's job.
package rollup

import (
	"github.com/shopspring/decimal"

	"CoopBankOffice/internal/store"
	"CoopBankOffice/internal/weekly"
)

type CategoryRow struct {
	CategoryName string  `json:"category_name"`
	TotalClients int     `json:"total_clients"`
	Balance      float64 `json:"balance"`
	Cr           float64 `json:"cr"`
	Dr           float64 `json:"dr"`
}

// Placeholder weekly-movement proxies for the category view. The upstream
// feed carries no per-category deltas yet; once it does, these become sums of
// real weekly CR/DR per category.
var (
	categoryCrRate = decimal.RequireFromString("0.10")
	categoryDrRate = decimal.RequireFromString("0.08")
)

// CategoryBreakdown groups a branch's clients by account category. The join
// runs over AccountCategory.Code, which is what client rows carry, and an
// unknown code falls back to displaying the raw code.
func CategoryBreakdown(clients []store.ClientProfile, cats []store.AccountCategory) []CategoryRow {
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.Code] = c.Name
	}

	index := make(map[string]int)
	var rows []CategoryRow
	for _, c := range clients {
		name, ok := names[c.AccountCategory]
		if !ok {
			name = c.AccountCategory
		}
		i, ok := index[name]
		if !ok {
			i = len(rows)
			index[name] = i
			rows = append(rows, CategoryRow{CategoryName: name})
		}
		bal := decimal.NewFromFloat(c.AccountBalance)
		rows[i].TotalClients++
		rows[i].Balance += c.AccountBalance
		rows[i].Cr += bal.Mul(categoryCrRate).InexactFloat64()
		rows[i].Dr += bal.Mul(categoryDrRate).InexactFloat64()
	}
	return rows
}

type RMRow struct {
	RMID           string  `json:"rm_id"`
	RMName         string  `json:"rm_name"`
	Clients        int     `json:"clients"`
	TotalPortfolio float64 `json:"total_portfolio"`
	WeeklyChange   float64 `json:"weekly_change"`
}

// RMPerformance sums each RM's book. WeeklyChange is an estimator draw over
// the portfolio; the production replacement is sum(weeklyCr)-sum(weeklyDr)
// from real per-week deltas.
func RMPerformance(rms []store.RM, clients []store.ClientProfile, est weekly.ChangeEstimator) []RMRow {
	rows := make([]RMRow, 0, len(rms))
	for _, rm := range rms {
		row := RMRow{RMID: rm.ID, RMName: rm.Name}
		portfolio := decimal.Zero
		for _, c := range clients {
			if c.RMID != rm.ID {
				continue
			}
			row.Clients++
			portfolio = portfolio.Add(decimal.NewFromFloat(c.AccountBalance))
		}
		row.TotalPortfolio = portfolio.InexactFloat64()
		row.WeeklyChange = row.TotalPortfolio * est.NetFraction()
		rows = append(rows, row)
	}
	return rows
}

type FamilyRow struct {
	GroupID         string  `json:"group_id"`
	GroupName       string  `json:"group_name"`
	Clients         int     `json:"clients"`
	CombinedBalance float64 `json:"combined_balance"`
}

// FamilyGroupSummary groups a branch's clients by family group. Clients with
// no group, or whose group id no longer resolves, are excluded.
func FamilyGroupSummary(clients []store.ClientProfile, groups []store.FamilyGroup) []FamilyRow {
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}

	index := make(map[string]int)
	var rows []FamilyRow
	for _, c := range clients {
		if c.FamilyGroupID == "" {
			continue
		}
		name, ok := names[c.FamilyGroupID]
		if !ok {
			continue
		}
		i, ok := index[c.FamilyGroupID]
		if !ok {
			i = len(rows)
			index[c.FamilyGroupID] = i
			rows = append(rows, FamilyRow{GroupID: c.FamilyGroupID, GroupName: name})
		}
		rows[i].Clients++
		rows[i].CombinedBalance += c.AccountBalance
	}
	return rows
}
