package jobs

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"CoopBankOffice/internal/config"
	"CoopBankOffice/internal/ledger"
	"CoopBankOffice/internal/store"
)

// UploadMonitor flags branches that missed the weekly upload window and
// retires batches stuck in Pending.
type UploadMonitor struct {
	store store.Store
	pool  *pgxpool.Pool
	now   func() time.Time
}

func NewUploadMonitor(st store.Store, pool *pgxpool.Pool) *UploadMonitor {
	return &UploadMonitor{store: st, pool: pool, now: time.Now}
}

func (m *UploadMonitor) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if missing, err := m.MissingBranches(ctx); err != nil {
		log.Println("[ERROR] upload monitor:", err)
	} else {
		for _, b := range missing {
			log.Printf("[WARN] branch %s (%s) has no active upload for the latest week ending", b.ID, b.Name)
		}
	}

	if m.pool != nil {
		if err := m.retireStalePending(ctx); err != nil {
			log.Println("[ERROR] upload monitor maintenance:", err)
		}
	}
}

// MissingBranches lists Active branches without an Active batch for the most
// recent week-ending date.
func (m *UploadMonitor) MissingBranches(ctx context.Context) ([]store.Branch, error) {
	branches, err := m.store.ListBranches(ctx)
	if err != nil {
		return nil, err
	}
	batches, err := m.store.ListUploads(ctx)
	if err != nil {
		return nil, err
	}

	week := ledger.WeekEndingDates(m.now(), 1)[0]
	var missing []store.Branch
	for _, b := range branches {
		if b.Status != store.BranchActive {
			continue
		}
		if _, ok := ledger.EffectiveBatch(batches, b.ID, week); !ok {
			missing = append(missing, b)
		}
	}
	return missing, nil
}

// retireStalePending marks batches left Pending past the stale window as
// Corrected so the registry shows them as abandoned rather than in flight.
// The rows are kept for audit.
func (m *UploadMonitor) retireStalePending(ctx context.Context) error {
	cutoff := m.now().AddDate(0, 0, -config.PendingStaleDays).UTC().Format(time.RFC3339)
	tag, err := m.pool.Exec(ctx,
		`UPDATE upload_batches SET status = $1 WHERE status = $2 AND upload_time < $3`,
		store.BatchCorrected, store.BatchPending, cutoff,
	)
	if err != nil {
		return err
	}
	if n := tag.RowsAffected(); n > 0 {
		log.Printf("[INFO] upload monitor retired %d stale pending batches", n)
	}
	return nil
}
