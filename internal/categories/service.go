package categories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// Syncer brings one client's readings current through targetEnd.
type Syncer interface {
	Sync(ctx context.Context, scno string, targetEnd time.Time) (int, error)
}

// Service refreshes every client's category in one pass. Clients are
// synced and classified on a bounded worker pool, then the results are
// upserted in a single batch.
type Service struct {
	clientRepo contracts.ClientRepository
	readings   contracts.ConsumptionRepository
	categories contracts.CategoryRepository
	syncer     Syncer

	workers int
	ignore  map[string]bool
	logger  *logger.Logger
}

// NewService wires the category refresh.
func NewService(
	clientRepo contracts.ClientRepository,
	readings contracts.ConsumptionRepository,
	categories contracts.CategoryRepository,
	syncer Syncer,
	cfg config.SyncConfig,
	log *logger.Logger,
) *Service {
	ignore := make(map[string]bool, len(cfg.IgnoreSCNOs))
	for _, s := range cfg.IgnoreSCNOs {
		ignore[s] = true
	}

	return &Service{
		clientRepo: clientRepo,
		readings:   readings,
		categories: categories,
		syncer:     syncer,
		workers:    cfg.Workers,
		ignore:     ignore,
		logger:     log.WithField("module", "categories"),
	}
}

// Refresh recomputes categories for all clients through targetEnd.
// Returns how many clients were categorized. Per-client failures are
// logged and skipped; only listing or persistence failures abort.
func (s *Service) Refresh(ctx context.Context, targetEnd time.Time) (int, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list clients: %w", err)
	}

	roster := make([]contracts.Client, 0, len(clients))
	for _, c := range clients {
		if !s.ignore[c.SCNO] {
			roster = append(roster, c)
		}
	}

	jobs := make(chan contracts.Client)
	var mu sync.Mutex
	var results []contracts.Category
	var wg sync.WaitGroup

	workers := s.workers
	if workers > len(roster) {
		workers = len(roster)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for client := range jobs {
				cat, err := s.categorize(ctx, client, targetEnd)
				if err != nil {
					s.logger.WithError(err).WithField("scno", client.SCNO).Warn("Categorization failed")
					continue
				}
				if cat == nil {
					continue
				}
				mu.Lock()
				results = append(results, *cat)
				mu.Unlock()
			}
		}()
	}

	for _, client := range roster {
		jobs <- client
	}
	close(jobs)
	wg.Wait()

	if len(results) > 0 {
		if err := s.categories.SaveBatch(ctx, results); err != nil {
			return 0, fmt.Errorf("save categories: %w", err)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"clients":     len(roster),
		"categorized": len(results),
	}).Info("Category refresh completed")

	return len(results), nil
}

// categorize syncs one client and classifies its stored history.
func (s *Service) categorize(ctx context.Context, client contracts.Client, targetEnd time.Time) (*contracts.Category, error) {
	if _, err := s.syncer.Sync(ctx, client.SCNO, targetEnd); err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	readings, err := s.readings.ListBySCNO(ctx, client.SCNO)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}

	return Classify(client, readings), nil
}
