package biz

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// fakeExtractor treats lines starting with "bad" as failures and returns
// every other line unchanged as its site collection.
type fakeExtractor struct {
	calls int
}

func (f *fakeExtractor) Extract(line string) ExtractionResult {
	f.calls++
	if strings.HasPrefix(line, "bad") {
		return ExtractionResult{Original: line, IsError: true, ErrorReason: ReasonNotSharePoint}
	}
	return ExtractionResult{Original: line, SiteCollection: line}
}

func TestAggregate_EmptyInput(t *testing.T) {
	ex := &fakeExtractor{}
	progressCalls := 0
	summary, err := Aggregate(context.Background(), ex, []string{"", "   ", "\t"}, BatchConfig{}, func(p, tot int) {
		progressCalls++
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Results) != 0 || len(summary.Unique) != 0 || summary.UniqueInputCount != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	if progressCalls != 0 {
		t.Fatalf("progress must not fire on empty input, fired %d times", progressCalls)
	}
	if ex.calls != 0 {
		t.Fatalf("extractor must not run on empty input, ran %d times", ex.calls)
	}
}

func TestAggregate_ProgressPattern(t *testing.T) {
	lines := make([]string, 2500)
	for i := range lines {
		lines[i] = fmt.Sprintf("https://t.example/sites/s%d", i)
	}
	var processed []int
	_, err := Aggregate(context.Background(), &fakeExtractor{}, lines, BatchConfig{ChunkSize: 1000}, func(p, tot int) {
		if tot != 2500 {
			t.Fatalf("expected total 2500, got %d", tot)
		}
		processed = append(processed, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(processed, []int{1000, 2000, 2500}) {
		t.Fatalf("expected progress 1000,2000,2500, got %v", processed)
	}
}

func TestAggregate_ChunkSizeDoesNotChangeResults(t *testing.T) {
	lines := []string{
		"https://a.example/sites/X",
		"bad line",
		"https://b.example/sites/Y",
		"https://a.example/sites/X",
		"  ",
		"https://A.example/sites/x",
	}
	big, err := Aggregate(context.Background(), &fakeExtractor{}, lines, BatchConfig{ChunkSize: 1000}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	small, err := Aggregate(context.Background(), &fakeExtractor{}, lines, BatchConfig{ChunkSize: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(big, small) {
		t.Fatalf("chunk size changed the summary:\n%+v\nvs\n%+v", big, small)
	}
}

func TestAggregate_UniqueCountsAndSort(t *testing.T) {
	lines := []string{
		"https://b.example/sites/Beta",
		"https://a.example/sites/Alpha",
		"https://b.example/sites/Beta",
		"https://B.example/sites/beta",
	}
	summary, err := Aggregate(context.Background(), &fakeExtractor{}, lines, BatchConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// grouping is case-sensitive: the case-variant stays its own entry
	if len(summary.Unique) != 3 {
		t.Fatalf("expected 3 unique entries, got %+v", summary.Unique)
	}
	if summary.Unique[0].SiteCollection != "https://a.example/sites/Alpha" {
		t.Fatalf("expected alpha first, got %q", summary.Unique[0].SiteCollection)
	}
	// case-insensitive sort puts the two beta variants together; the tie
	// keeps first-seen order
	if summary.Unique[1].SiteCollection != "https://b.example/sites/Beta" || summary.Unique[1].Count != 2 {
		t.Fatalf("unexpected entry 1: %+v", summary.Unique[1])
	}
	if summary.Unique[2].SiteCollection != "https://B.example/sites/beta" || summary.Unique[2].Count != 1 {
		t.Fatalf("unexpected entry 2: %+v", summary.Unique[2])
	}
}

func TestAggregate_UniqueInputCountFoldsCase(t *testing.T) {
	lines := []string{
		"https://a.sharepoint.com/sites/X",
		"HTTPS://A.SHAREPOINT.COM/SITES/X",
		"  https://a.sharepoint.com/sites/X  ",
	}
	summary, err := Aggregate(context.Background(), &fakeExtractor{}, lines, BatchConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.UniqueInputCount != 1 {
		t.Fatalf("expected 1 distinct input, got %d", summary.UniqueInputCount)
	}
	// the extracted values differ in case, so they stay distinct entries
	if len(summary.Unique) != 2 {
		t.Fatalf("expected 2 unique entries, got %+v", summary.Unique)
	}
}

func TestAggregate_FailuresDoNotAbort(t *testing.T) {
	lines := []string{"bad one", "https://a.example/sites/X", "bad two"}
	summary, err := Aggregate(context.Background(), &fakeExtractor{}, lines, BatchConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(summary.Results))
	}
	if !summary.Results[0].IsError || summary.Results[1].IsError || !summary.Results[2].IsError {
		t.Fatalf("unexpected error flags: %+v", summary.Results)
	}
	if len(summary.Unique) != 1 {
		t.Fatalf("expected 1 unique entry, got %+v", summary.Unique)
	}
}

func TestAggregate_CancelBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines := []string{"a", "b", "c", "d", "e"}
	ex := &fakeExtractor{}
	_, err := Aggregate(ctx, ex, lines, BatchConfig{ChunkSize: 2}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// the first chunk completes before the boundary check
	if ex.calls != 2 {
		t.Fatalf("expected 2 extractions before cancel, got %d", ex.calls)
	}
}
