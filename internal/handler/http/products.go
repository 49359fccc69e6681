package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
	"github.com/kryptonum-dev/audiofast-filters/internal/service"
	"github.com/kryptonum-dev/audiofast-filters/pkg/httputil"
	"github.com/kryptonum-dev/audiofast-filters/pkg/pagination"
	"github.com/kryptonum-dev/audiofast-filters/pkg/validator"
)

// --- Request DTOs ---

// UpsertProductRequest is the JSON request body for adding or updating a
// product's filter record.
type UpsertProductRequest struct {
	ID             string                  `json:"id" validate:"required"`
	Name           string                  `json:"name" validate:"required,min=1"`
	Slug           string                  `json:"slug"`
	CategoryPath   string                  `json:"category_path"`
	CategoryPaths  []string                `json:"category_paths"`
	BrandSlug      string                  `json:"brand_slug"`
	BasePriceCents *int64                  `json:"base_price_cents"`
	CertifiedUsed  bool                    `json:"certified_used"`
	Attributes     []domain.AttributeValue `json:"attributes"`
}

func (req *UpsertProductRequest) toInput() service.UpsertProductInput {
	return service.UpsertProductInput{
		ID:             req.ID,
		Name:           req.Name,
		Slug:           req.Slug,
		CategoryPath:   req.CategoryPath,
		CategoryPaths:  req.CategoryPaths,
		BrandSlug:      req.BrandSlug,
		BasePriceCents: req.BasePriceCents,
		CertifiedUsed:  req.CertifiedUsed,
		Attributes:     req.Attributes,
	}
}

// BulkUpsertRequest is the JSON request body for bulk catalog updates.
type BulkUpsertRequest struct {
	Products []UpsertProductRequest `json:"products" validate:"required,min=1,max=500,dive"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *FilterHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	active, err := parseActiveFilters(r)
	if err != nil {
		writeInvalidParameter(w, err.Error())
		return
	}

	sortBy := domain.SortOrder(r.URL.Query().Get("sort"))
	if sortBy != "" && !sortBy.Valid() {
		writeInvalidParameter(w, "sort must be one of: name_asc, name_desc, price_asc, price_desc")
		return
	}

	result, err := h.service.ListProducts(r.Context(), *active, sortBy, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// UpsertProduct handles POST /api/v1/products
func (h *FilterHandler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpsertProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := req.toInput()
	if err := h.service.UpsertProduct(r.Context(), &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": req.ID, "status": "upserted"}})
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *FilterHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeInvalidParameter(w, "id is required")
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// BulkUpsert handles POST /api/v1/products/bulk
func (h *FilterHandler) BulkUpsert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit for bulk endpoint

	var req BulkUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	inputs := make([]service.UpsertProductInput, 0, len(req.Products))
	for i := range req.Products {
		inputs = append(inputs, req.Products[i].toInput())
	}

	if err := h.service.BulkUpsert(r.Context(), inputs); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"upserted": len(inputs), "status": "ok"}})
}

// Reindex handles POST /api/v1/products/reindex
func (h *FilterHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if h.service.ReindexRunning() {
		httputil.WriteJSON(w, http.StatusConflict, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "CONFLICT", Message: service.ErrReindexInProgress.Error()},
		})
		return
	}

	go func() {
		ctx := context.Background()
		if err := h.service.Reindex(ctx); err != nil && !errors.Is(err, service.ErrReindexInProgress) {
			h.logger.ErrorContext(ctx, "background reindex failed", "error", err)
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "reindex started"}})
}
