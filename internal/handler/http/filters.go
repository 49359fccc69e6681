package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
	"github.com/kryptonum-dev/audiofast-filters/internal/service"
	"github.com/kryptonum-dev/audiofast-filters/pkg/httputil"
)

// FilterHandler handles HTTP requests for filter computation endpoints.
type FilterHandler struct {
	service *service.FilterService
	logger  *slog.Logger
}

// NewFilterHandler creates a new filter HTTP handler.
func NewFilterHandler(svc *service.FilterService, logger *slog.Logger) *FilterHandler {
	return &FilterHandler{
		service: svc,
		logger:  logger,
	}
}

// ComputeFilters handles GET /api/v1/filters
func (h *FilterHandler) ComputeFilters(w http.ResponseWriter, r *http.Request) {
	active, err := parseActiveFilters(r)
	if err != nil {
		writeInvalidParameter(w, err.Error())
		return
	}

	result, err := h.service.ComputeFilters(r.Context(), *active)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

func writeInvalidParameter(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}

// parseActiveFilters reconstructs the active selection from query
// parameters. The shape mirrors a storefront URL: repeated "brand", repeated
// "attr=Name:Value", repeated "range=Name:min:max" (empty segment leaves
// that bound open), "category" in short or full form, price bounds in cents.
func parseActiveFilters(r *http.Request) (*domain.ActiveFilters, error) {
	q := r.URL.Query()
	active := &domain.ActiveFilters{}

	if v := q.Get("category"); v != "" {
		active.CategoryPath = &v
	}

	for _, b := range q["brand"] {
		if b = strings.TrimSpace(b); b != "" {
			active.Brands = append(active.Brands, b)
		}
	}

	if v := q.Get("min_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("min_price must be a valid number")
		}
		if price < 0 {
			return nil, fmt.Errorf("min_price must not be negative")
		}
		active.MinPriceCents = &price
	}
	if v := q.Get("max_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("max_price must be a valid number")
		}
		if price < 0 {
			return nil, fmt.Errorf("max_price must not be negative")
		}
		active.MaxPriceCents = &price
	}
	if active.MinPriceCents != nil && active.MaxPriceCents != nil && *active.MinPriceCents > *active.MaxPriceCents {
		return nil, fmt.Errorf("min_price must not exceed max_price")
	}

	for _, raw := range q["attr"] {
		name, value, ok := strings.Cut(raw, ":")
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("attr must be in Name:Value form, got %q", raw)
		}
		active.Attributes = append(active.Attributes, domain.AttributeMatch{Name: name, Value: value})
	}

	for _, raw := range q["range"] {
		rm, err := parseRangeParam(raw)
		if err != nil {
			return nil, err
		}
		active.Ranges = append(active.Ranges, *rm)
	}

	if v := q.Get("certified"); v != "" {
		certified, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("certified must be a boolean")
		}
		active.CertifiedOnly = certified
	}

	return active, nil
}

// parseRangeParam parses "Name:min:max". An empty min or max segment leaves
// that bound open; "Moc:100:" means at least 100.
func parseRangeParam(raw string) (*domain.RangeMatch, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] == "" {
		return nil, fmt.Errorf("range must be in Name:min:max form, got %q", raw)
	}

	rm := &domain.RangeMatch{Name: parts[0]}

	if parts[1] != "" {
		min, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("range %s: min must be a valid number", parts[0])
		}
		rm.Min = &min
	}
	if parts[2] != "" {
		max, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("range %s: max must be a valid number", parts[0])
		}
		rm.Max = &max
	}
	if rm.Min != nil && rm.Max != nil && *rm.Min > *rm.Max {
		return nil, fmt.Errorf("range %s: min must not exceed max", parts[0])
	}

	return rm, nil
}
