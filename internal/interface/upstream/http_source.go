package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"build-route-api/internal/domain/entity"
	"build-route-api/internal/domain/repository"
	"build-route-api/pkg/logger"
)

// HTTPAvailabilitySource fetches normalized availability from the partner
// API over HTTP. Airline-specific scraping lives behind that API; this
// client only speaks its normalized JSON contract and surfaces rate-limit
// metadata from response headers.
type HTTPAvailabilitySource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

// NewHTTPAvailabilitySource creates a new partner API client
func NewHTTPAvailabilitySource(baseURL, apiKey string, timeout time.Duration, logger logger.Logger) *HTTPAvailabilitySource {
	return &HTTPAvailabilitySource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

var _ repository.AvailabilitySource = (*HTTPAvailabilitySource)(nil)

type fetchResponse struct {
	Groups  []entity.AvailabilityGroup `json:"groups"`
	Pricing []entity.PricingEntry      `json:"pricing"`
}

// Fetch requests availability for one route over a date window.
func (s *HTTPAvailabilitySource) Fetch(ctx context.Context, req entity.FetchRequest) (*entity.FetchPayload, error) {
	query := url.Values{}
	query.Set("origin", req.Origin)
	query.Set("destination", req.Destination)
	query.Set("startDate", req.StartDate)
	query.Set("endDate", req.EndDate)
	if req.Cabin != "" {
		query.Set("cabin", req.Cabin)
	}
	if len(req.Carriers) > 0 {
		query.Set("carriers", strings.Join(req.Carriers, ","))
	}
	if req.Seats > 0 {
		query.Set("seats", strconv.Itoa(req.Seats))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/availability?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Partner-Authorization", s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s-%s: %v", entity.ErrUpstreamUnavailable, req.Origin, req.Destination, err)
	}
	defer resp.Body.Close()

	remaining, reset := rateLimitHeaders(resp)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &entity.RateLimitError{RetryAfter: retryAfter(resp, reset)}
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s-%s: status %d", entity.ErrUpstreamUnavailable, req.Origin, req.Destination, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s-%s: unexpected status %d", entity.ErrUpstreamUnavailable, req.Origin, req.Destination, resp.StatusCode)
	}

	var body fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %s-%s: decode: %v", entity.ErrUpstreamUnavailable, req.Origin, req.Destination, err)
	}

	return &entity.FetchPayload{
		Groups:             body.Groups,
		Pricing:            body.Pricing,
		RateLimitRemaining: remaining,
		RateLimitReset:     reset,
	}, nil
}

func rateLimitHeaders(resp *http.Response) (remaining, reset int) {
	remaining, reset = -1, -1
	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			reset = n
		}
	}
	return remaining, reset
}

func retryAfter(resp *http.Response, reset int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	if reset > 0 {
		return time.Duration(reset) * time.Second
	}
	return 30 * time.Second
}
