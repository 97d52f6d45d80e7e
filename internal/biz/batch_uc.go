package biz

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type BatchUsecase struct {
	repo      CollectionRepo
	extractor SiteExtractor
	cfg       BatchConfig

	gen    atomic.Int64
	mu     sync.Mutex
	latest *Summary
}

func NewBatchUsecase(repo CollectionRepo, ex SiteExtractor, cfg BatchConfig) *BatchUsecase {
	return &BatchUsecase{repo: repo, extractor: ex, cfg: cfg}
}

// ProcessText splits the pasted block into lines, aggregates them, and
// persists the run. Each call claims a new generation; if a newer call
// arrives before this one finishes, the older result is discarded with
// ErrStaleRun so an overlapping run can never clobber a newer run's output.
//
// When aggregation succeeds but persistence fails, the Summary is returned
// alongside the error: the caller still has a displayable result.
func (uc *BatchUsecase) ProcessText(ctx context.Context, text string, onProgress ProgressFunc) (*Summary, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidArgument.WithMessage("input text cannot be empty")
	}
	if uc == nil || uc.extractor == nil {
		return nil, ErrInvalidArgument.WithMessage("extractor not configured")
	}

	gen := uc.gen.Add(1)
	lines := strings.Split(text, "\n")
	summary, err := Aggregate(ctx, uc.extractor, lines, uc.cfg, onProgress)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	if gen != uc.gen.Load() {
		uc.mu.Unlock()
		return nil, ErrStaleRun
	}
	uc.latest = summary
	uc.mu.Unlock()

	if uc.repo == nil || len(summary.Results) == 0 {
		return summary, nil
	}
	if err := uc.persistRun(ctx, summary); err != nil {
		return summary, ErrInternalError.WithMessage(err.Error())
	}
	return summary, nil
}

func (uc *BatchUsecase) persistRun(ctx context.Context, summary *Summary) error {
	now := time.Now()
	valid := 0
	for _, r := range summary.Results {
		if !r.IsError {
			valid++
		}
	}
	run := &ExtractionRun{
		ID:               uuid.NewString(),
		CreatedAt:        now,
		TotalLines:       len(summary.Results),
		ValidLines:       valid,
		UniqueInputCount: summary.UniqueInputCount,
	}
	records := make([]*SiteCollectionRecord, 0, len(summary.Unique))
	for _, u := range summary.Unique {
		records = append(records, &SiteCollectionRecord{
			ID:             uuid.NewString(),
			RunID:          run.ID,
			CreatedAt:      now,
			SiteCollection: u.SiteCollection,
			Count:          u.Count,
		})
	}
	return uc.repo.CreateRun(ctx, run, records)
}

// Latest returns the most recently applied Summary, or nil before the
// first completed run.
func (uc *BatchUsecase) Latest() *Summary {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.latest
}

func (uc *BatchUsecase) GetBySiteCollection(ctx context.Context, siteCollection string) ([]*SiteCollectionRecord, error) {
	if siteCollection == "" {
		return nil, ErrInvalidArgument.WithMessage("the site collection you want to search can't be empty")
	}
	return uc.repo.GetBySiteCollection(ctx, siteCollection)
}

func (uc *BatchUsecase) GetByTimeRange(ctx context.Context, start, end time.Time, tenant string) ([]*SiteCollectionRecord, error) {
	if end.After(time.Now()) {
		return nil, ErrInvalidArgument.WithMessage("can't query records from the future")
	}
	if !end.After(start) {
		return nil, ErrInvalidArgument.WithMessage("start time can't be after end time")
	}
	// limit the range to 15 days
	if end.Sub(start) > 15*24*time.Hour {
		return nil, ErrInvalidArgument.WithMessage("time range can't be longer than 15 days")
	}
	return uc.repo.GetByTimeRange(ctx, start, end, tenant)
}

func (uc *BatchUsecase) GetAllGroupedByTenant(ctx context.Context) (map[string][]*SiteCollectionRecord, error) {
	return uc.repo.GetAllGroupedByTenant(ctx)
}
