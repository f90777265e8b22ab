package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock(m *Memory) {
	base := time.Date(2024, 7, 8, 10, 0, 0, 0, time.UTC)
	n := 0
	m.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
}

func TestParseClientKey(t *testing.T) {
	key, err := ParseClientKey("ABCDE1234F_b1")
	if err != nil {
		t.Fatal(err)
	}
	if key.PAN != "ABCDE1234F" || key.BranchID != "b1" {
		t.Fatalf("key = %+v", key)
	}
	if key.String() != "ABCDE1234F_b1" {
		t.Fatalf("round trip = %s", key.String())
	}
	for _, bad := range []string{"", "nounderscore", "_b1", "PAN_"} {
		if _, err := ParseClientKey(bad); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseClientKey(%q) err = %v, want validation", bad, err)
		}
	}
}

func TestDefaultBranchStatus(t *testing.T) {
	if got := defaultBranchStatus(""); got != BranchPending {
		t.Fatalf("default status = %q, want %q", got, BranchPending)
	}
	if got := defaultBranchStatus(BranchInactive); got != BranchInactive {
		t.Fatalf("explicit status = %q, want it kept", got)
	}
}

func TestBranchCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	b, err := m.CreateBranch(ctx, Branch{Name: "Nagpur Branch", Location: "Nagpur"})
	if err != nil {
		t.Fatal(err)
	}
	if b.ID == "" || b.Status != BranchPending {
		t.Fatalf("created = %+v", b)
	}

	name := "Nagpur Central"
	status := BranchActive
	b, err = m.UpdateBranch(ctx, b.ID, BranchUpdate{Name: &name, Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "Nagpur Central" || b.Status != BranchActive {
		t.Fatalf("updated = %+v", b)
	}

	if err := m.DeleteBranch(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetBranch(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
}

func TestCreateBranchValidation(t *testing.T) {
	m := NewMemory()
	if _, err := m.CreateBranch(context.Background(), Branch{Name: " "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestCreateUploadVersioningAndSupersede(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	fixedClock(m)

	v1, err := m.CreateUpload(ctx, UploadBatch{BranchID: "b1", WeekEnding: "2024-07-06", TotalCR: 100})
	if err != nil {
		t.Fatal(err)
	}
	if v1.Version != 1 || v1.Status != BatchActive {
		t.Fatalf("v1 = %+v", v1)
	}

	v2, err := m.CreateUpload(ctx, UploadBatch{BranchID: "b1", WeekEnding: "2024-07-06", TotalCR: 120})
	if err != nil {
		t.Fatal(err)
	}
	if v2.Version != 2 {
		t.Fatalf("v2 version = %d", v2.Version)
	}

	all, _ := m.UploadsByBranch(ctx, "b1")
	var active, corrected int
	for _, u := range all {
		switch u.Status {
		case BatchActive:
			active++
		case BatchCorrected:
			corrected++
		}
	}
	if active != 1 || corrected != 1 {
		t.Fatalf("active=%d corrected=%d, want 1/1 (old version retained)", active, corrected)
	}
}

func TestCreateUploadPendingDoesNotSupersede(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	fixedClock(m)

	if _, err := m.CreateUpload(ctx, UploadBatch{BranchID: "b1", WeekEnding: "2024-07-06"}); err != nil {
		t.Fatal(err)
	}
	p, err := m.CreateUpload(ctx, UploadBatch{BranchID: "b1", WeekEnding: "2024-07-06", Status: BatchPending})
	if err != nil {
		t.Fatal(err)
	}
	if p.Version != 2 {
		t.Fatalf("pending version = %d", p.Version)
	}
	all, _ := m.UploadsByBranch(ctx, "b1")
	for _, u := range all {
		if u.Version == 1 && u.Status != BatchActive {
			t.Fatalf("v1 status = %s, a Pending upload must not supersede", u.Status)
		}
	}
}

func TestCreateUploadBadWeek(t *testing.T) {
	m := NewMemory()
	if _, err := m.CreateUpload(context.Background(), UploadBatch{BranchID: "b1", WeekEnding: "06-07-2024"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestListUploadsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	fixedClock(m)
	m.CreateUpload(ctx, UploadBatch{BranchID: "b1", WeekEnding: "2024-06-29"})
	m.CreateUpload(ctx, UploadBatch{BranchID: "b2", WeekEnding: "2024-07-06"})

	all, err := m.ListUploads(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].BranchID != "b2" {
		t.Fatalf("order = %+v", all)
	}
}

func TestBulkUpdateAssignmentsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithFixtures()

	rm := "rm2"
	keys := []ClientKey{
		{PAN: "ABCDE1234F", BranchID: "b1"},
		{PAN: "NOPAN9999X", BranchID: "b1"}, // does not exist
	}
	if _, err := m.BulkUpdateAssignments(ctx, keys, AssignmentUpdate{RMID: &rm}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	c, err := m.GetClient(ctx, keys[0])
	if err != nil {
		t.Fatal(err)
	}
	if c.RMID == "rm2" {
		t.Fatal("failed bulk update must not change any row")
	}
}

func TestBulkUpdateClearsFamilyGroup(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithFixtures()

	key := ClientKey{PAN: "ABCDE1234F", BranchID: "b1"}
	n, err := m.BulkUpdateAssignments(ctx, []ClientKey{key}, AssignmentUpdate{ClearFamilyGroup: true})
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	c, _ := m.GetClient(ctx, key)
	if c.FamilyGroupID != "" {
		t.Fatalf("family group = %q, want cleared", c.FamilyGroupID)
	}
}

func TestSamePANAcrossBranches(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithFixtures()

	rows, err := m.ClientsByPAN(ctx, "ABCDE1234F")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want independent accounts at two branches", len(rows))
	}
	branches := map[string]bool{}
	for _, c := range rows {
		branches[c.BranchID] = true
	}
	if !branches["b1"] || !branches["b3"] {
		t.Fatalf("branches = %v", branches)
	}
}

func TestWeeklySummaryAscending(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithFixtures()

	rows, err := m.WeeklySummary(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Week >= rows[i].Week {
			t.Fatalf("weeks not ascending: %s then %s", rows[i-1].Week, rows[i].Week)
		}
	}
}
