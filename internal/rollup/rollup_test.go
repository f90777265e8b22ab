package rollup

import (
	"math"
	"testing"

	"CoopBankOffice/internal/store"
	"CoopBankOffice/internal/weekly"
)

func client(pan, branch, rm, group, category string, balance float64) store.ClientProfile {
	return store.ClientProfile{
		PANPrimary:      pan,
		BranchID:        branch,
		RMID:            rm,
		FamilyGroupID:   group,
		AccountCategory: category,
		AccountBalance:  balance,
	}
}

var testCategories = []store.AccountCategory{
	{ID: "ac1", Name: "Owner", Code: "PR"},
	{ID: "ac2", Name: "Retail", Code: "RT"},
}

func TestCategoryBreakdownJoinsByCode(t *testing.T) {
	clients := []store.ClientProfile{
		client("AAAAA1111A", "b1", "rm1", "", "RT", 100000),
		client("BBBBB2222B", "b1", "rm1", "", "RT", 50000),
		client("CCCCC3333C", "b1", "rm2", "", "PR", 200000),
	}
	rows := CategoryBreakdown(clients, testCategories)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Discovery order: RT first because its client appears first.
	if rows[0].CategoryName != "Retail" || rows[1].CategoryName != "Owner" {
		t.Fatalf("order = %s, %s", rows[0].CategoryName, rows[1].CategoryName)
	}
	if rows[0].TotalClients != 2 || rows[0].Balance != 150000 {
		t.Fatalf("Retail row = %+v", rows[0])
	}
	if math.Abs(rows[0].Cr-15000) > 1e-9 || math.Abs(rows[0].Dr-12000) > 1e-9 {
		t.Fatalf("Retail cr/dr = %v/%v, want 15000/12000", rows[0].Cr, rows[0].Dr)
	}
}

func TestCategoryBreakdownUnknownCodeFallsBack(t *testing.T) {
	clients := []store.ClientProfile{client("AAAAA1111A", "b1", "rm1", "", "ZZ", 10000)}
	rows := CategoryBreakdown(clients, testCategories)
	if len(rows) != 1 || rows[0].CategoryName != "ZZ" {
		t.Fatalf("rows = %+v, want raw code fallback", rows)
	}
}

func TestRMPerformance(t *testing.T) {
	rms := []store.RM{
		{ID: "rm1", Name: "Ravi Kumar", BranchID: "b1"},
		{ID: "rm2", Name: "Sunita Sharma", BranchID: "b1"},
	}
	clients := []store.ClientProfile{
		client("AAAAA1111A", "b1", "rm1", "", "RT", 100000),
		client("BBBBB2222B", "b1", "rm1", "", "RT", 200000),
		client("CCCCC3333C", "b1", "rm2", "", "PR", 50000),
	}
	rows := RMPerformance(rms, clients, weekly.FixedChange{Net: 0.01})
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Clients != 2 || rows[0].TotalPortfolio != 300000 {
		t.Fatalf("rm1 row = %+v", rows[0])
	}
	if math.Abs(rows[0].WeeklyChange-3000) > 1e-9 {
		t.Fatalf("rm1 weekly change = %v, want 3000", rows[0].WeeklyChange)
	}
	if rows[1].Clients != 1 || rows[1].TotalPortfolio != 50000 {
		t.Fatalf("rm2 row = %+v", rows[1])
	}
}

func TestRMPerformanceKeepsEmptyBooks(t *testing.T) {
	rms := []store.RM{{ID: "rm9", Name: "No Clients", BranchID: "b1"}}
	rows := RMPerformance(rms, nil, weekly.FixedChange{})
	if len(rows) != 1 || rows[0].Clients != 0 || rows[0].TotalPortfolio != 0 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestFamilyGroupSummaryExcludesUngroupedAndUnknown(t *testing.T) {
	groups := []store.FamilyGroup{
		{ID: "fg1", Name: "Patel Family", BranchID: "b1"},
	}
	clients := []store.ClientProfile{
		client("AAAAA1111A", "b1", "rm1", "fg1", "RT", 100000),
		client("BBBBB2222B", "b1", "rm1", "", "RT", 50000),      // no group
		client("CCCCC3333C", "b1", "rm2", "fg-gone", "PR", 999), // deleted group
		client("DDDDD4444D", "b1", "rm2", "fg1", "PR", 200000),
	}
	rows := FamilyGroupSummary(clients, groups)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].GroupName != "Patel Family" || rows[0].Clients != 2 || rows[0].CombinedBalance != 300000 {
		t.Fatalf("row = %+v", rows[0])
	}
}
