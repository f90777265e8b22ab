package weekly

import (
	"math"
	"reflect"
	"testing"

	"CoopBankOffice/internal/store"
)

var testWeeks = []string{
	"2024-07-06", "2024-06-29", "2024-06-22", "2024-06-15",
	"2024-06-08", "2024-06-01", "2024-05-25", "2024-05-18",
	"2024-05-11", "2024-05-04",
}

func testClient(balance float64) store.ClientProfile {
	return store.ClientProfile{
		BranchID:        "b1",
		PANPrimary:      "ABCDE1234F",
		NameFirstHolder: "Amit Patel",
		AccountBalance:  balance,
		FreeBalance:     balance * 0.9,
		PledgeBalance:   balance * 0.1,
	}
}

func TestHistoryWindowCap(t *testing.T) {
	h := History(testClient(850000), testWeeks, Seeded{})
	if len(h) != 8 {
		t.Fatalf("history length = %d, want 8", len(h))
	}
	for i, e := range h {
		if e.WeekEnding != testWeeks[i] {
			t.Fatalf("entry %d week = %s, want %s", i, e.WeekEnding, testWeeks[i])
		}
	}
}

func TestHistoryAnchorsOnStoredBalance(t *testing.T) {
	h := History(testClient(850000), testWeeks[:3], Seeded{})
	if h[0].ClosingBalance != 850000 {
		t.Fatalf("newest closing balance = %v, want the stored balance", h[0].ClosingBalance)
	}
}

func TestHistoryMovementExclusive(t *testing.T) {
	h := History(testClient(850000), testWeeks, Seeded{})
	for i, e := range h {
		if e.WeeklyCr != 0 && e.WeeklyDr != 0 {
			t.Fatalf("entry %d has both cr=%v and dr=%v", i, e.WeeklyCr, e.WeeklyDr)
		}
		if e.WeeklyCr < 0 || e.WeeklyDr < 0 {
			t.Fatalf("entry %d has negative movement: %+v", i, e)
		}
	}
}

func TestHistoryRecurrence(t *testing.T) {
	h := History(testClient(850000), testWeeks, Seeded{})
	for i := 0; i < len(h)-1; i++ {
		got := h[i].ClosingBalance - h[i].WeeklyCr + h[i].WeeklyDr
		if math.Abs(got-h[i+1].ClosingBalance) > 1e-9 {
			t.Fatalf("recurrence broken at %d: %v - %v + %v = %v, want %v",
				i, h[i].ClosingBalance, h[i].WeeklyCr, h[i].WeeklyDr, got, h[i+1].ClosingBalance)
		}
	}
}

func TestHistoryDeterministic(t *testing.T) {
	a := History(testClient(850000), testWeeks, Seeded{})
	b := History(testClient(850000), testWeeks, Seeded{})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("history is not reproducible for the same client and weeks")
	}
}

func TestHistoryEmptyWeeks(t *testing.T) {
	if h := History(testClient(850000), nil, Seeded{}); len(h) != 0 {
		t.Fatalf("expected empty history without effective weeks, got %v", h)
	}
}

func TestSnapshotMovementExclusive(t *testing.T) {
	c := testClient(850000)
	for _, week := range testWeeks {
		snap := Snapshot(c, week, Seeded{})
		if snap.WeeklyCr != 0 && snap.WeeklyDr != 0 {
			t.Fatalf("week %s has both cr=%v and dr=%v", week, snap.WeeklyCr, snap.WeeklyDr)
		}
		if snap.ID != "ABCDE1234F_b1" {
			t.Fatalf("snapshot id = %s", snap.ID)
		}
	}
}

func TestSnapshotDeterministic(t *testing.T) {
	c := testClient(850000)
	a := Snapshot(c, "2024-07-06", Seeded{})
	b := Snapshot(c, "2024-07-06", Seeded{})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("snapshot is not reproducible for the same client and week")
	}
}

func TestSnapshotDoesNotMutateProfile(t *testing.T) {
	c := testClient(850000)
	Snapshot(c, "2024-07-06", Seeded{})
	if c.AccountBalance != 850000 {
		t.Fatalf("stored balance changed to %v", c.AccountBalance)
	}
}

func TestAnnotateProportionalMovement(t *testing.T) {
	clients := []store.ClientProfile{testClient(100000)}
	got := Annotate(clients, FixedChange{Cr: 0.02, Dr: 0.01})
	if len(got) != 1 {
		t.Fatalf("got %d rows", len(got))
	}
	if got[0].WeeklyCr != 2000 || got[0].WeeklyDr != 1000 {
		t.Fatalf("cr=%v dr=%v, want 2000/1000", got[0].WeeklyCr, got[0].WeeklyDr)
	}
	if got[0].AccountBalance != 100000 {
		t.Fatal("annotate must not shift the balance")
	}
}
