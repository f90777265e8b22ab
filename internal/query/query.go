// Package query implements the server-side filter, sort and pagination
// applied to week snapshot rows before they go out on the wire.
package query

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"CoopBankOffice/internal/config"
	"CoopBankOffice/internal/store"
)

// Filter holds the conjunctive client filters. Text fields match as
// case-insensitive substrings; numeric fields are minimum thresholds where an
// empty or unparsable value means no constraint.
type Filter struct {
	Name          string
	PAN           string
	AccountNumber string
	MinCr         string
	MinDr         string
	MinBalance    string
}

func minOf(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func containsFold(hay, needle string) bool {
	return strings.Contains(strings.ToLower(hay), strings.ToLower(needle))
}

// Apply keeps the rows matching every active filter.
func (f Filter) Apply(rows []store.ClientWithMovement) []store.ClientWithMovement {
	minCr, hasCr := minOf(f.MinCr)
	minDr, hasDr := minOf(f.MinDr)
	minBal, hasBal := minOf(f.MinBalance)

	out := make([]store.ClientWithMovement, 0, len(rows))
	for _, r := range rows {
		if f.Name != "" && !containsFold(r.NameFirstHolder, f.Name) {
			continue
		}
		if f.PAN != "" && !containsFold(r.PANPrimary, f.PAN) {
			continue
		}
		if f.AccountNumber != "" && !containsFold(r.AccountNumber, f.AccountNumber) {
			continue
		}
		if hasCr && r.WeeklyCr < minCr {
			continue
		}
		if hasDr && r.WeeklyDr < minDr {
			continue
		}
		if hasBal && r.AccountBalance < minBal {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort keys accepted by SortState. Anything else leaves the order untouched.
const (
	ByName     = "name"
	ByPAN      = "pan"
	ByWeeklyCr = "weeklyCr"
	ByWeeklyDr = "weeklyDr"
	ByBalance  = "balance"
)

type SortState struct {
	Key       string `json:"key"`
	Ascending bool   `json:"ascending"`
}

// Toggle applies a header click: the same key flips direction, a new key
// starts ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		return SortState{Key: key, Ascending: !s.Ascending}
	}
	return SortState{Key: key, Ascending: true}
}

var nameCollator = collate.New(language.English, collate.Loose)

// Apply sorts rows in place by the state's key. String keys compare with a
// locale-aware collator; numeric keys treat missing values as zero. A stable
// sort keeps ties in their incoming order.
func (s SortState) Apply(rows []store.ClientWithMovement) {
	var less func(a, b store.ClientWithMovement) bool
	switch s.Key {
	case ByName:
		less = func(a, b store.ClientWithMovement) bool {
			return nameCollator.CompareString(a.NameFirstHolder, b.NameFirstHolder) < 0
		}
	case ByPAN:
		less = func(a, b store.ClientWithMovement) bool {
			return nameCollator.CompareString(a.PANPrimary, b.PANPrimary) < 0
		}
	case ByWeeklyCr:
		less = func(a, b store.ClientWithMovement) bool { return a.WeeklyCr < b.WeeklyCr }
	case ByWeeklyDr:
		less = func(a, b store.ClientWithMovement) bool { return a.WeeklyDr < b.WeeklyDr }
	case ByBalance:
		less = func(a, b store.ClientWithMovement) bool { return a.AccountBalance < b.AccountBalance }
	default:
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if s.Ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

type Page struct {
	Rows       []store.ClientWithMovement `json:"rows"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalRows  int                        `json:"total_rows"`
	TotalPages int                        `json:"total_pages"`
}

// Paginate slices rows into a 1-based page. A size outside the allowed set
// falls back to the smallest allowed size, and an out-of-range page clamps
// into [1, totalPages].
func Paginate(rows []store.ClientWithMovement, page, size int) Page {
	allowed := false
	for _, s := range config.PageSizes {
		if size == s {
			allowed = true
			break
		}
	}
	if !allowed {
		size = config.PageSizes[0]
	}

	total := len(rows)
	pages := (total + size - 1) / size
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page{
		Rows:       rows[start:end],
		Page:       page,
		PageSize:   size,
		TotalRows:  total,
		TotalPages: pages,
	}
}
