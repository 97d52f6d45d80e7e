package biz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type memRepo struct {
	runs    []*ExtractionRun
	records []*SiteCollectionRecord
	err     error
}

func (m *memRepo) CreateRun(ctx context.Context, run *ExtractionRun, records []*SiteCollectionRecord) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	m.records = append(m.records, records...)
	return nil
}

func (m *memRepo) GetBySiteCollection(ctx context.Context, sc string) ([]*SiteCollectionRecord, error) {
	var out []*SiteCollectionRecord
	for _, r := range m.records {
		if r.SiteCollection == sc {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) GetByTimeRange(ctx context.Context, start, end time.Time, tenant string) ([]*SiteCollectionRecord, error) {
	return m.records, nil
}

func (m *memRepo) GetAllGroupedByTenant(ctx context.Context) (map[string][]*SiteCollectionRecord, error) {
	grouped := make(map[string][]*SiteCollectionRecord)
	for _, r := range m.records {
		grouped[r.Tenant] = append(grouped[r.Tenant], r)
	}
	return grouped, nil
}

func TestProcessText_PersistsRun(t *testing.T) {
	repo := &memRepo{}
	uc := NewBatchUsecase(repo, &fakeExtractor{}, BatchConfig{})

	text := "https://a.example/sites/X\nbad line\nhttps://a.example/sites/X\n\n"
	summary, err := uc.ProcessText(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.runs) != 1 {
		t.Fatalf("expected 1 persisted run, got %d", len(repo.runs))
	}
	run := repo.runs[0]
	if run.TotalLines != 3 || run.ValidLines != 2 || run.UniqueInputCount != 2 {
		t.Fatalf("unexpected run stats: %+v", run)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(repo.records))
	}
	if repo.records[0].SiteCollection != "https://a.example/sites/X" || repo.records[0].Count != 2 {
		t.Fatalf("unexpected record: %+v", repo.records[0])
	}
	if repo.records[0].RunID != run.ID || run.ID == "" {
		t.Fatalf("record not linked to run: %+v", repo.records[0])
	}
	if got := uc.Latest(); got != summary {
		t.Fatalf("Latest() should return the applied summary")
	}
}

func TestProcessText_EmptyText(t *testing.T) {
	uc := NewBatchUsecase(&memRepo{}, &fakeExtractor{}, BatchConfig{})
	if _, err := uc.ProcessText(context.Background(), "   \n  ", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestProcessText_PersistFailureStillReturnsSummary(t *testing.T) {
	repo := &memRepo{err: errors.New("disk full")}
	uc := NewBatchUsecase(repo, &fakeExtractor{}, BatchConfig{})

	summary, err := uc.ProcessText(context.Background(), "https://a.example/sites/X", nil)
	if !errors.Is(err, ErrInternalError) {
		t.Fatalf("expected ErrInternalError, got %v", err)
	}
	if summary == nil || len(summary.Results) != 1 {
		t.Fatalf("summary should survive a persistence failure, got %+v", summary)
	}
}

// gatedExtractor blocks on lines prefixed "wait" until released, so a test
// can hold one run open while a newer one completes.
type gatedExtractor struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedExtractor) Extract(line string) ExtractionResult {
	if strings.HasPrefix(line, "wait") {
		g.started <- struct{}{}
		<-g.release
	}
	return ExtractionResult{Original: line, SiteCollection: line}
}

func TestProcessText_StaleRunDiscarded(t *testing.T) {
	ex := &gatedExtractor{started: make(chan struct{}), release: make(chan struct{})}
	uc := NewBatchUsecase(nil, ex, BatchConfig{})

	oldDone := make(chan error, 1)
	go func() {
		_, err := uc.ProcessText(context.Background(), "wait-old-run", nil)
		oldDone <- err
	}()
	<-ex.started

	newer, err := uc.ProcessText(context.Background(), "newer-run", nil)
	if err != nil {
		t.Fatalf("newer run failed: %v", err)
	}

	close(ex.release)
	if err := <-oldDone; !errors.Is(err, ErrStaleRun) {
		t.Fatalf("expected ErrStaleRun for the superseded run, got %v", err)
	}
	if got := uc.Latest(); got != newer {
		t.Fatalf("a stale run must not clobber the newer summary")
	}
}
