package office

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"CoopBankOffice/internal/serviceiface"
	"CoopBankOffice/internal/store"
	"CoopBankOffice/internal/weekly"
)

type OfficeService struct {
	config map[string]interface{}
	store  store.Store
	server *http.Server
}

func NewOfficeService(cfg map[string]interface{}, st store.Store) serviceiface.Service {
	return &OfficeService{config: cfg, store: st}
}

func (s *OfficeService) Name() string {
	return "office"
}

func (s *OfficeService) Start() error {
	port := 4143
	if s.config != nil {
		switch v := s.config["port"].(type) {
		case int:
			if v > 0 {
				port = v
			}
		case float64:
			if v > 0 {
				port = int(v)
			}
		}
	}

	router := NewRouter(s.store, weekly.Seeded{}, weekly.NewRandomChange())
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}
	go func() {
		log.Printf("Office Service started on :%d", port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Office Service failed: %v", err)
		}
	}()
	return nil
}

func (s *OfficeService) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
