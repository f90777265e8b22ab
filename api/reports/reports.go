// Package reports serves the branch report views: dashboard stats, the
// report tabs, weekly client snapshots and the aggregate bundle.
package reports

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"CoopBankOffice/api"
	"CoopBankOffice/internal/config"
	"CoopBankOffice/internal/ledger"
	"CoopBankOffice/internal/query"
	"CoopBankOffice/internal/rollup"
	"CoopBankOffice/internal/store"
	"CoopBankOffice/internal/weekly"
)

// BranchStats is the dashboard headline block for one branch.
type BranchStats struct {
	TotalClients  int     `json:"total_clients"`
	TotalBalance  float64 `json:"total_balance"`
	WeeklyCr      float64 `json:"weekly_cr"`
	WeeklyDr      float64 `json:"weekly_dr"`
	ActiveVersion string  `json:"active_version,omitempty"`
	UploadWarning string  `json:"upload_warning,omitempty"`
}

// GetBranchStats sums the branch book and reports net movement from the
// latest Active batch. The warning fires when the branch has no Active batch
// for the most recent week-ending date.
func GetBranchStats(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID := mux.Vars(r)["id"]
		ctx := r.Context()
		if _, err := st.GetBranch(ctx, branchID); err != nil {
			api.RespondStoreError(w, err)
			return
		}
		clients, err := st.ClientsByBranch(ctx, branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		batches, err := st.UploadsByBranch(ctx, branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}

		stats := BranchStats{TotalClients: len(clients)}
		total := decimal.Zero
		for _, c := range clients {
			total = total.Add(decimal.NewFromFloat(c.AccountBalance))
		}
		stats.TotalBalance = total.InexactFloat64()

		if latest, ok := ledger.LatestActive(batches, branchID); ok {
			stats.WeeklyCr = latest.TotalCR
			stats.WeeklyDr = latest.TotalDR
			stats.ActiveVersion = fmt.Sprintf("v%d (%s)", latest.Version, latest.WeekEnding)
		}

		currentWeek := ledger.WeekEndingDates(timeNow(), 1)[0]
		if _, ok := ledger.EffectiveBatch(batches, branchID, currentWeek); !ok {
			stats.UploadWarning = fmt.Sprintf("no active upload for week ending %s", currentWeek)
		}

		api.RespondWithPayload(w, true, "", stats)
	}
}

func GetWeeklySummary(st store.SummaryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := st.WeeklySummary(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", rows)
	}
}

func GetCategoryBreakdown(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clients, err := st.ClientsByBranch(ctx, mux.Vars(r)["id"])
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		cats, err := st.ListAccountCategories(ctx)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", rollup.CategoryBreakdown(clients, cats))
	}
}

func GetRMPerformance(st store.Store, est weekly.ChangeEstimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID := mux.Vars(r)["id"]
		ctx := r.Context()
		rms, err := st.ListRMs(ctx)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		branchRMs := rms[:0:0]
		for _, rm := range rms {
			if rm.BranchID == branchID {
				branchRMs = append(branchRMs, rm)
			}
		}
		clients, err := st.ClientsByBranch(ctx, branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", rollup.RMPerformance(branchRMs, clients, est))
	}
}

func GetFamilyGroupSummary(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clients, err := st.ClientsByBranch(ctx, mux.Vars(r)["id"])
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		groups, err := st.ListFamilyGroups(ctx)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", rollup.FamilyGroupSummary(clients, groups))
	}
}

// GetClientsForWeek returns one page of a branch's clients at a reference
// week, with deterministic snapshot movement, after server-side filter, sort
// and pagination. A week with no Active batch yields an empty page.
func GetClientsForWeek(st store.Store, est weekly.MovementEstimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID := mux.Vars(r)["id"]
		week := r.URL.Query().Get("week")
		if week == "" {
			api.RespondWithError(w, http.StatusBadRequest, "week is required")
			return
		}
		ctx := r.Context()
		batches, err := st.UploadsByBranch(ctx, branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("page_size"))

		if _, ok := ledger.EffectiveBatch(batches, branchID, week); !ok {
			api.RespondWithPayload(w, true, "", query.Paginate(nil, page, size))
			return
		}

		clients, err := st.ClientsByBranch(ctx, branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		rows := make([]store.ClientWithMovement, 0, len(clients))
		for _, c := range clients {
			rows = append(rows, weekly.Snapshot(c, week, est))
		}

		f := query.Filter{
			Name:          q.Get("name"),
			PAN:           q.Get("pan"),
			AccountNumber: q.Get("account_number"),
			MinCr:         q.Get("min_cr"),
			MinDr:         q.Get("min_dr"),
			MinBalance:    q.Get("min_balance"),
		}
		rows = f.Apply(rows)

		sortState := query.SortState{Key: q.Get("sort"), Ascending: q.Get("dir") != "desc"}
		sortState.Apply(rows)

		api.RespondWithPayload(w, true, "", query.Paginate(rows, page, size))
	}
}

// GetClientHistory reconstructs a client's weekly ledger over the branch's
// effective weeks, newest first, capped at the history window. A branch with
// no effective weeks yields an empty history.
func GetClientHistory(st store.Store, est weekly.MovementEstimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := store.ParseClientKey(mux.Vars(r)["id"])
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		ctx := r.Context()
		c, err := st.GetClient(ctx, key)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		batches, err := st.UploadsByBranch(ctx, key.BranchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		weeks := ledger.EffectiveWeeks(batches, key.BranchID)
		api.RespondWithPayload(w, true, "", weekly.History(c, weeks, est))
	}
}

// ReportBundle is every tab of the branch report fetched in one call.
type ReportBundle struct {
	Stats           BranchStats              `json:"stats"`
	WeeklySummary   []store.WeeklySummaryRow `json:"weekly_summary"`
	Categories      []rollup.CategoryRow     `json:"categories"`
	RMPerformance   []rollup.RMRow           `json:"rm_performance"`
	FamilyGroups    []rollup.FamilyRow       `json:"family_groups"`
	EffectiveWeeks  []string                 `json:"effective_weeks"`
	WeekEndingDates []string                 `json:"week_ending_dates"`
}

// GetReportBundle assembles the full report concurrently. The reads commute,
// so the bundle is identical to fetching each tab alone.
func GetReportBundle(st store.Store, est weekly.ChangeEstimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID := mux.Vars(r)["id"]
		bundle, err := buildBundle(r, st, est, branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", bundle)
	}
}

func buildBundle(r *http.Request, st store.Store, est weekly.ChangeEstimator, branchID string) (*ReportBundle, error) {
	if _, err := st.GetBranch(r.Context(), branchID); err != nil {
		return nil, err
	}

	var bundle ReportBundle
	var clients []store.ClientProfile
	var batches []store.UploadBatch

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		clients, err = st.ClientsByBranch(ctx, branchID)
		return err
	})
	g.Go(func() error {
		var err error
		batches, err = st.UploadsByBranch(ctx, branchID)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.WeeklySummary, err = st.WeeklySummary(ctx, branchID)
		return err
	})
	var cats []store.AccountCategory
	g.Go(func() error {
		var err error
		cats, err = st.ListAccountCategories(ctx)
		return err
	})
	var rms []store.RM
	g.Go(func() error {
		var err error
		rms, err = st.ListRMs(ctx)
		return err
	})
	var groups []store.FamilyGroup
	g.Go(func() error {
		var err error
		groups, err = st.ListFamilyGroups(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle.Stats.TotalClients = len(clients)
	total := decimal.Zero
	for _, c := range clients {
		total = total.Add(decimal.NewFromFloat(c.AccountBalance))
	}
	bundle.Stats.TotalBalance = total.InexactFloat64()
	if latest, ok := ledger.LatestActive(batches, branchID); ok {
		bundle.Stats.WeeklyCr = latest.TotalCR
		bundle.Stats.WeeklyDr = latest.TotalDR
		bundle.Stats.ActiveVersion = fmt.Sprintf("v%d (%s)", latest.Version, latest.WeekEnding)
	}
	currentWeek := ledger.WeekEndingDates(timeNow(), 1)[0]
	if _, ok := ledger.EffectiveBatch(batches, branchID, currentWeek); !ok {
		bundle.Stats.UploadWarning = fmt.Sprintf("no active upload for week ending %s", currentWeek)
	}

	branchRMs := rms[:0:0]
	for _, rm := range rms {
		if rm.BranchID == branchID {
			branchRMs = append(branchRMs, rm)
		}
	}
	bundle.Categories = rollup.CategoryBreakdown(clients, cats)
	bundle.RMPerformance = rollup.RMPerformance(branchRMs, clients, est)
	bundle.FamilyGroups = rollup.FamilyGroupSummary(clients, groups)
	bundle.EffectiveWeeks = ledger.EffectiveWeeks(batches, branchID)
	bundle.WeekEndingDates = ledger.WeekEndingDates(timeNow(), config.WeekPickerDepth)
	return &bundle, nil
}

// timeNow is swapped in tests.
var timeNow = time.Now
