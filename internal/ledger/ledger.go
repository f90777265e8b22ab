// Package ledger resolves which upload batch is effective for a branch and
// week. It is pure: callers fetch a branch's batches from the store and hand
// them in. A branch with no uploads at all is a normal state (new branch),
// never an error.
package ledger

import (
	"sort"
	"time"

	"CoopBankOffice/internal/store"
)

// EffectiveWeeks returns the week-ending dates for which the branch has an
// effective upload, newest first, one entry per week. A week only counts when
// it has an Active batch; Pending batches never surface, and Corrected
// batches alone (an Active one revoked without replacement) do not either.
func EffectiveWeeks(batches []store.UploadBatch, branchID string) []string {
	seen := make(map[string]bool)
	weeks := []string{}
	for _, b := range batches {
		if b.BranchID != branchID || b.Status != store.BatchActive {
			continue
		}
		if !seen[b.WeekEnding] {
			seen[b.WeekEnding] = true
			weeks = append(weeks, b.WeekEnding)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(weeks)))
	return weeks
}

// EffectiveBatch returns the Active batch for (branch, week). With the
// supersede rule there is at most one; the highest version wins if the store
// ever holds more.
func EffectiveBatch(batches []store.UploadBatch, branchID, week string) (store.UploadBatch, bool) {
	var best store.UploadBatch
	found := false
	for _, b := range batches {
		if b.BranchID != branchID || b.WeekEnding != week || b.Status != store.BatchActive {
			continue
		}
		if !found || b.Version > best.Version {
			best = b
			found = true
		}
	}
	return best, found
}

// LatestActive returns the most recently uploaded Active batch for a branch,
// regardless of week. Used for the dashboard net-movement figure.
func LatestActive(batches []store.UploadBatch, branchID string) (store.UploadBatch, bool) {
	var best store.UploadBatch
	found := false
	for _, b := range batches {
		if b.BranchID != branchID || b.Status != store.BatchActive {
			continue
		}
		if !found || b.UploadTime > best.UploadTime {
			best = b
			found = true
		}
	}
	return best, found
}

// WeekEndingDates returns the last n week-ending Saturdays on or before now,
// newest first, formatted YYYY-MM-DD.
func WeekEndingDates(now time.Time, n int) []string {
	offset := (int(now.Weekday()) + 1) % 7
	d := now.AddDate(0, 0, -offset)
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, d.Format("2006-01-02"))
		d = d.AddDate(0, 0, -7)
	}
	return dates
}
