// Package cms fetches product filter metadata from the headless CMS. The CMS
// is the source of truth for the catalog; this service only mirrors the flat
// per-product records it needs for filter computation.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
	"github.com/kryptonum-dev/audiofast-filters/pkg/httpclient"
)

const defaultPerPage = 100

// getter is the transport surface the client needs. Both httpclient.Client
// and httpclient.CircuitBreakerClient satisfy it.
type getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client fetches filter metadata pages from the CMS content API.
type Client struct {
	baseURL string
	http    getter
	logger  *slog.Logger
	perPage int
}

// NewClient creates a CMS client backed by a circuit-breaker protected
// HTTP client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("cms"),
		logger,
	)
	return &Client{
		baseURL: baseURL,
		http:    cb,
		logger:  logger,
		perPage: defaultPerPage,
	}
}

// NewClientWithTransport creates a CMS client over an explicit transport.
// Used in tests and when the caller manages its own breaker.
func NewClientWithTransport(baseURL string, transport getter, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    transport,
		logger:  logger,
		perPage: defaultPerPage,
	}
}

// metadataPage is the paginated envelope the CMS content API returns.
type metadataPage struct {
	Data       []domain.ProductFilterMetadata `json:"data"`
	TotalCount int                            `json:"total_count"`
	Page       int                            `json:"page"`
	TotalPages int                            `json:"total_pages"`
}

// FetchAll retrieves every product filter record, walking the paginated
// endpoint until the last page. Records without an ID are skipped with a
// warning rather than failing the whole fetch.
func (c *Client) FetchAll(ctx context.Context) ([]domain.ProductFilterMetadata, error) {
	var products []domain.ProductFilterMetadata

	page := 1
	for {
		result, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch products page %d: %w", page, err)
		}

		for i := range result.Data {
			p := result.Data[i]
			if p.ID == "" {
				c.logger.WarnContext(ctx, "skipping product without id",
					slog.Int("page", page),
					slog.String("slug", p.Slug),
				)
				continue
			}
			products = append(products, p)
		}

		if page >= result.TotalPages {
			break
		}
		page++
	}

	c.logger.InfoContext(ctx, "fetched product filter metadata",
		slog.Int("count", len(products)),
		slog.Int("pages", page),
	)

	return products, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*metadataPage, error) {
	endpoint := fmt.Sprintf("%s/api/v1/products/filter-metadata?%s", c.baseURL, url.Values{
		"page":     []string{fmt.Sprintf("%d", page)},
		"per_page": []string{fmt.Sprintf("%d", c.perPage)},
	}.Encode())

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result metadataPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}
