package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Thinkelution/slasher-tv-ai/internal/assets"
	"github.com/Thinkelution/slasher-tv-ai/internal/db"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
	"github.com/Thinkelution/slasher-tv-ai/internal/queue"
)

type Handler struct {
	db     *db.DB
	queue  *queue.Queue
	assets *assets.Store
}

func NewHandler(database *db.DB, q *queue.Queue, store *assets.Store) *Handler {
	return &Handler{
		db:     database,
		queue:  q,
		assets: store,
	}
}

// Generate handles POST /v1/generate: stores the listing, creates a tracking
// job and queues the asset stage.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.StockNumber == "" {
		respondError(w, http.StatusBadRequest, "stock_number is required")
		return
	}
	if req.Year == 0 || req.Model == "" {
		respondError(w, http.StatusBadRequest, "year and model are required")
		return
	}
	if req.Price <= 0 {
		respondError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	listing := req.Listing()
	if len(listing.PhotoURLs) == 0 {
		respondError(w, http.StatusBadRequest, "at least one photo URL is required")
		return
	}

	if err := h.db.UpsertListing(r.Context(), listing); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store listing")
		return
	}

	style := models.ParseScriptStyle(req.VoiceStyle)

	job := &models.RenderJob{
		ID:          uuid.New(),
		Type:        models.JobTypeGenerateAssets,
		DealerID:    listing.DealerID,
		StockNumber: listing.StockNumber,
		Style:       style,
		Status:      models.JobStatusQueued,
	}
	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.EnqueueGenerateAssets(r.Context(), job.ID, listing, style); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	dir, _ := h.assets.ListingDir(listing.DealerID, listing.StockNumber)

	respondJSON(w, http.StatusAccepted, models.GenerateResponse{
		JobID:       job.ID,
		StockNumber: listing.StockNumber,
		Status:      job.Status,
		ListingDir:  dir,
	})
}

// GetJob handles GET /v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.db.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Job not found")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// ListListings handles GET /v1/listings?limit=N
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	listings, err := h.db.ListListings(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list listings")
		return
	}

	summaries := make([]models.ListingSummary, 0, len(listings))
	for _, l := range listings {
		summaries = append(summaries, l.Summary())
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"listings": summaries,
		"count":    len(summaries),
	})
}

// GetAssets handles GET /v1/assets/{dealerId}/{stockNumber}: reports what the
// listing's working directory contains, plus render metadata when present.
func (h *Handler) GetAssets(w http.ResponseWriter, r *http.Request) {
	dealerID := chi.URLParam(r, "dealerId")
	stockNumber := chi.URLParam(r, "stockNumber")
	if dealerID == "" || stockNumber == "" {
		respondError(w, http.StatusBadRequest, "dealerId and stockNumber are required")
		return
	}

	dir, err := h.assets.ListingDir(dealerID, stockNumber)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve listing dir")
		return
	}

	summary, err := assets.Summarize(dir)
	if err != nil {
		respondError(w, http.StatusNotFound, "No assets for listing")
		return
	}

	response := map[string]interface{}{"summary": summary}
	if meta, err := assets.ReadMetadata(dir); err == nil {
		response["metadata"] = meta
	}
	if h.db != nil {
		if listing, err := h.db.GetListing(r.Context(), stockNumber); err == nil {
			response["listing"] = listing.Summary()
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
