package jobs

import (
	"context"
	"testing"
	"time"

	"CoopBankOffice/internal/store"
)

func TestMissingBranches(t *testing.T) {
	m := NewUploadMonitor(store.NewMemoryWithFixtures(), nil)
	// Latest week ending for this date is 2024-07-06; b1, b2 and b3 have
	// Active batches for it, b4 only has a Pending one, and b5 is not an
	// Active branch.
	m.now = func() time.Time { return time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC) }

	missing, err := m.MissingBranches(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 || missing[0].ID != "b4" {
		t.Fatalf("missing = %+v, want b4 only", missing)
	}
}

func TestRunWithoutPoolDoesNotPanic(t *testing.T) {
	m := NewUploadMonitor(store.NewMemoryWithFixtures(), nil)
	m.now = func() time.Time { return time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC) }
	m.Run()
}
