package handler

import (
	"net/http"

	"github.com/hszk-dev/notecanvas/internal/infrastructure/cache"
	"github.com/hszk-dev/notecanvas/internal/usecase"
)

type CacheStatsResponse struct {
	OCREntries        int `json:"ocr_entries"`
	TranscriptEntries int `json:"transcript_entries"`
	TotalEntries      int `json:"total_entries"`
}

type CachePurgeResponse struct {
	Removed int                `json:"removed"`
	Stats   CacheStatsResponse `json:"stats"`
}

// CacheHandler exposes result cache maintenance.
type CacheHandler struct {
	svc usecase.CacheAdminService
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(svc usecase.CacheAdminService) *CacheHandler {
	return &CacheHandler{svc: svc}
}

// Stats handles GET /v1/cache/stats
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, toCacheStatsResponse(h.svc.Stats()))
}

// Purge handles POST /v1/cache/purge
func (h *CacheHandler) Purge(w http.ResponseWriter, r *http.Request) {
	result := h.svc.PurgeExpired()
	JSON(w, http.StatusOK, CachePurgeResponse{
		Removed: result.Removed,
		Stats:   toCacheStatsResponse(result.Remaining),
	})
}

func toCacheStatsResponse(s cache.Stats) CacheStatsResponse {
	return CacheStatsResponse{
		OCREntries:        s.OCRCount,
		TranscriptEntries: s.TranscriptCount,
		TotalEntries:      s.TotalCount,
	}
}
