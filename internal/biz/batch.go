package biz

import (
	"context"
	"sort"
	"strings"
)

// DefaultChunkSize is the number of lines processed between progress
// reports when the caller does not configure one.
const DefaultChunkSize = 1000

// BatchConfig carries the aggregation knobs. The zero value works and uses
// DefaultChunkSize. Values are immutable once handed to the usecase.
type BatchConfig struct {
	ChunkSize int
}

func (c BatchConfig) chunkSize() int {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return DefaultChunkSize
}

// ProgressFunc receives cumulative counts after each processed chunk.
type ProgressFunc func(processed, total int)

// Aggregate runs the extractor over every non-blank line of the input, in
// order, in chunks of cfg.ChunkSize. After each chunk it reports cumulative
// progress and, between chunks, honors ctx cancellation. Per-line failures
// are recorded in the Summary and never abort the batch; the only error
// returned is ctx.Err() when the caller cancels mid-run.
//
// Chunking affects only the progress invocation pattern: the returned
// Summary is identical for any chunk size.
func Aggregate(ctx context.Context, ex SiteExtractor, lines []string, cfg BatchConfig, onProgress ProgressFunc) (*Summary, error) {
	canonical := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			canonical = append(canonical, trimmed)
		}
	}

	summary := &Summary{
		Results: make([]ExtractionResult, 0, len(canonical)),
		Unique:  []UniqueEntry{},
	}
	total := len(canonical)
	if total == 0 {
		return summary, nil
	}

	chunk := cfg.chunkSize()
	seenInputs := make(map[string]struct{}, total)
	counts := make(map[string]int)
	var firstSeen []string

	for start := 0; start < total; start += chunk {
		end := start + chunk
		if end > total {
			end = total
		}
		for _, line := range canonical[start:end] {
			seenInputs[strings.ToLower(line)] = struct{}{}
			res := ex.Extract(line)
			summary.Results = append(summary.Results, res)
			if res.IsError {
				continue
			}
			if _, ok := counts[res.SiteCollection]; !ok {
				firstSeen = append(firstSeen, res.SiteCollection)
			}
			counts[res.SiteCollection]++
		}
		if onProgress != nil {
			onProgress(end, total)
		}
		if end < total {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
	}

	for _, sc := range firstSeen {
		summary.Unique = append(summary.Unique, UniqueEntry{SiteCollection: sc, Count: counts[sc]})
	}
	// Case folding applies to ordering only; case-variant keys stay
	// distinct entries and ties keep first-seen order.
	sort.SliceStable(summary.Unique, func(i, j int) bool {
		return strings.ToLower(summary.Unique[i].SiteCollection) < strings.ToLower(summary.Unique[j].SiteCollection)
	})
	summary.UniqueInputCount = len(seenInputs)
	return summary, nil
}
