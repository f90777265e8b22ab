package jobs

import (
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"CoopBankOffice/internal/config"
	"CoopBankOffice/internal/logger"
	"CoopBankOffice/internal/serviceiface"
	"CoopBankOffice/internal/store"
)

type CronService struct {
	config map[string]interface{}
	store  store.Store
	pool   *pgxpool.Pool
	cron   *cron.Cron
}

// NewCronService builds the background job runner. The pgx pool is optional;
// without it the SQL maintenance step is skipped.
func NewCronService(cfg map[string]interface{}, st store.Store, pool *pgxpool.Pool) serviceiface.Service {
	return &CronService{config: cfg, store: st, pool: pool}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	schedule := config.UploadMonitorSchedule
	if s.config != nil {
		if v, ok := s.config["upload_monitor_schedule"].(string); ok && v != "" {
			schedule = v
		}
	}

	loc, err := time.LoadLocation(config.DefaultTimeZone)
	if err != nil {
		loc = time.Local
	}
	s.cron = cron.New(cron.WithLocation(loc))

	monitor := NewUploadMonitor(s.store, s.pool)
	if _, err := s.cron.AddFunc(schedule, monitor.Run); err != nil {
		return err
	}
	s.cron.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("upload monitor scheduled: " + schedule)
	}
	log.Println("Cron service started, upload monitor scheduled:", schedule)
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("Cron service stopped.")
	return nil
}
