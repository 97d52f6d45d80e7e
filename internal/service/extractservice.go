package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/Zerg00s/extract-site-collection-url/internal/biz"
	"github.com/Zerg00s/extract-site-collection-url/internal/logx"
)

// progressDisplayThreshold: inputs at or below this many lines finish fast
// enough that progress reporting is just noise.
const progressDisplayThreshold = 100

type ExtractService struct {
	uc *biz.BatchUsecase
}

type ExtractRequest struct {
	Text string `json:"text"`
}

// ExtractResponse carries the Summary plus the two display projections the
// front-end renders: one line per input, and the copyable unique list
// (site collections only, counts excluded).
type ExtractResponse struct {
	Summary    *biz.Summary `json:"summary"`
	Lines      []string     `json:"lines"`
	UniqueText string       `json:"uniqueText"`
}

type GetByTimeRangeRequest struct {
	Tenant string     `json:"tenant"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}

func NewService(uc *biz.BatchUsecase) *ExtractService {
	return &ExtractService{
		uc: uc,
	}
}

func (s *ExtractService) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	ctx := r.Context()
	summary, err := s.uc.ProcessText(ctx, req.Text, progressLogger(ctx))

	switch {
	case errors.Is(err, biz.ErrStaleRun):
		writeError(w, http.StatusConflict, "superseded by a newer extraction")
		return
	case errors.Is(err, biz.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil && summary == nil:
		logx.FromContext(ctx).Error("extraction failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	case err != nil:
		// run computed fine, only persistence failed; still render it
		logx.FromContext(ctx).Warn("run persistence failed", "err", err)
	}

	writeJSON(w, http.StatusOK, renderResponse(summary))
}

// progressLogger reports per-chunk progress for large inputs only.
func progressLogger(ctx context.Context) biz.ProgressFunc {
	return func(processed, total int) {
		if total <= progressDisplayThreshold {
			return
		}
		pct := int(math.Round(float64(processed) / float64(total) * 100))
		logx.FromContext(ctx).Info("extraction progress",
			"processed", processed,
			"total", total,
			"percent", pct,
		)
	}
}

func renderResponse(summary *biz.Summary) ExtractResponse {
	lines := make([]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		if res.IsError {
			lines = append(lines, "[INVALID] "+res.BestEffort())
		} else {
			lines = append(lines, res.SiteCollection)
		}
	}
	uniques := make([]string, 0, len(summary.Unique))
	for _, u := range summary.Unique {
		uniques = append(uniques, u.SiteCollection)
	}
	return ExtractResponse{
		Summary:    summary,
		Lines:      lines,
		UniqueText: strings.Join(uniques, "\n"),
	}
}

func (s *ExtractService) GetCollections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sc := r.FormValue("siteCollection"); sc != "" {
		records, err := s.uc.GetBySiteCollection(ctx, sc)
		if err != nil {
			logx.FromContext(ctx).Error("get by site collection failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}
	grouped, err := s.uc.GetAllGroupedByTenant(ctx)
	if err != nil {
		logx.FromContext(ctx).Error("get grouped collections failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (s *ExtractService) GetByTimeRange(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req GetByTimeRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}
	// default to the last 24 hours when the caller gives no range
	if req.End == nil {
		t := time.Now()
		req.End = &t
	}
	if req.Start == nil {
		t := req.End.Add(-24 * time.Hour)
		req.Start = &t
	}
	records, err := s.uc.GetByTimeRange(r.Context(), *req.Start, *req.End, req.Tenant)
	if err != nil {
		if errors.Is(err, biz.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logx.FromContext(r.Context()).Error("get by time range failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	type ErrorResponse struct {
		Error string `json:"error"`
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logx.FromContext(context.TODO()).Error("encode response failed", "err", err)
	}
}
