package gammaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/liamashdown/polyview/internal/config"
	"github.com/liamashdown/polyview/internal/metrics"
	"github.com/liamashdown/polyview/internal/ratelimit"
	"github.com/sirupsen/logrus"
)

const (
	apiName = "gamma"

	// DefaultLimit is used when a list call leaves Limit at zero
	DefaultLimit = 50
	// MaxLimit is the largest page a list call may request
	MaxLimit = 100

	maxErrorBody = 512
)

// OrderBy selects the descending sort key of a market list
type OrderBy string

const (
	OrderByVolume  OrderBy = "volume"
	OrderByCreated OrderBy = "created"
)

// Status filters lists by resolution state
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
	StatusAll      Status = "all"
)

// ListParams are the filters of ListMarkets. Zero values mean limit 50,
// order by volume, active only.
type ListParams struct {
	Limit       int     `validate:"gte=0,lte=100"`
	OrderBy     OrderBy `validate:"omitempty,oneof=volume created"`
	Status      Status  `validate:"omitempty,oneof=active resolved all"`
	Competitive *bool
}

// EventListParams are the filters of ListEvents
type EventListParams struct {
	Limit  int    `validate:"gte=0,lte=100"`
	Status Status `validate:"omitempty,oneof=active resolved all"`
}

// Client handles communication with the Polymarket Gamma API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	validate   *validator.Validate
	log        *logrus.Logger
}

// NewClient creates a new Gamma API client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL:    cfg.GammaAPIBaseURL,
		httpClient: &http.Client{Timeout: cfg.GammaAPITimeout},
		limiter:    ratelimit.New(cfg.GammaAPIRPS),
		validate:   validator.New(),
		log:        log,
	}
}

// ListMarkets fetches markets ordered descending by params.OrderBy.
func (c *Client) ListMarkets(ctx context.Context, params ListParams) ([]MarketSummary, error) {
	params, err := c.normalizeListParams(params)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("order", orderField(params.OrderBy))
	q.Set("ascending", "false")
	setClosed(q, params.Status)
	if params.Competitive != nil {
		q.Set("competitive", strconv.FormatBool(*params.Competitive))
	}

	body, err := c.get(ctx, "/markets", "/markets", q)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	var markets []MarketSummary
	if err := c.decodeList("/markets", body, &markets); err != nil {
		return nil, err
	}

	// The upstream does not always honour closed/order; apply both again.
	markets = filterByStatus(markets, params.Status, func(m MarketSummary) bool { return m.Closed })
	sortMarkets(markets, params.OrderBy)
	if len(markets) > params.Limit {
		markets = markets[:params.Limit]
	}

	c.log.WithFields(logrus.Fields{
		"order":  params.OrderBy,
		"status": params.Status,
		"count":  len(markets),
	}).Debug("Listed markets")

	return markets, nil
}

// ListEvents fetches events ordered by volume, descending.
func (c *Client) ListEvents(ctx context.Context, params EventListParams) ([]EventSummary, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if params.Limit == 0 {
		params.Limit = DefaultLimit
	}
	if params.Status == "" {
		params.Status = StatusActive
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("order", "volume")
	q.Set("ascending", "false")
	setClosed(q, params.Status)

	body, err := c.get(ctx, "/events", "/events", q)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var events []EventSummary
	if err := c.decodeList("/events", body, &events); err != nil {
		return nil, err
	}

	events = filterByStatus(events, params.Status, func(e EventSummary) bool { return e.Closed })
	sort.SliceStable(events, func(i, j int) bool { return events[i].Volume > events[j].Volume })
	if len(events) > params.Limit {
		events = events[:params.Limit]
	}

	return events, nil
}

// GetMarketBySlug fetches market details by slug
func (c *Client) GetMarketBySlug(ctx context.Context, slug string) (*MarketDetail, error) {
	if slug == "" {
		return nil, &NotFoundError{Kind: "market", Key: "slug="}
	}

	body, err := c.get(ctx, "/markets/slug", "/markets/slug/"+url.PathEscape(slug), nil)
	if isStatus(err, http.StatusNotFound) {
		return nil, &NotFoundError{Kind: "market", Key: "slug=" + slug}
	}
	if err != nil {
		return nil, fmt.Errorf("get market by slug: %w", err)
	}

	market, found, err := decodeOne[MarketDetail](body, nil)
	if err != nil {
		return nil, &DecodeError{Endpoint: "/markets/slug", Err: err}
	}
	if !found || market.ID == "" {
		return nil, &NotFoundError{Kind: "market", Key: "slug=" + slug}
	}
	if err := c.check("/markets/slug", market); err != nil {
		return nil, err
	}

	return &market, nil
}

// GetMarketByID fetches market details by ID. The Gamma API has no usable
// by-id path, so this filters the list endpoint and picks the exact match.
func (c *Client) GetMarketByID(ctx context.Context, id string) (*MarketDetail, error) {
	if id == "" {
		return nil, &NotFoundError{Kind: "market", Key: "id="}
	}

	q := url.Values{}
	q.Set("id", id)

	body, err := c.get(ctx, "/markets", "/markets", q)
	if err != nil {
		return nil, fmt.Errorf("get market by id: %w", err)
	}

	// The id filter is not trusted; only an exact id match counts.
	market, found, err := decodeOne(body, func(m MarketDetail) bool { return m.ID == id })
	if err != nil {
		return nil, &DecodeError{Endpoint: "/markets", Err: err}
	}
	if !found || market.ID == "" {
		return nil, &NotFoundError{Kind: "market", Key: "id=" + id}
	}
	if err := c.check("/markets", market); err != nil {
		return nil, err
	}

	return &market, nil
}

// GetEventBySlug fetches event details by slug
func (c *Client) GetEventBySlug(ctx context.Context, slug string) (*EventDetail, error) {
	if slug == "" {
		return nil, &NotFoundError{Kind: "event", Key: "slug="}
	}

	body, err := c.get(ctx, "/events/slug", "/events/slug/"+url.PathEscape(slug), nil)
	if isStatus(err, http.StatusNotFound) {
		return nil, &NotFoundError{Kind: "event", Key: "slug=" + slug}
	}
	if err != nil {
		return nil, fmt.Errorf("get event by slug: %w", err)
	}

	event, found, err := decodeOne[EventDetail](body, nil)
	if err != nil {
		return nil, &DecodeError{Endpoint: "/events/slug", Err: err}
	}
	if !found || event.ID == "" {
		return nil, &NotFoundError{Kind: "event", Key: "slug=" + slug}
	}
	if err := c.check("/events/slug", event); err != nil {
		return nil, err
	}

	return &event, nil
}

func (c *Client) normalizeListParams(params ListParams) (ListParams, error) {
	if err := c.validate.Struct(params); err != nil {
		return params, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if params.Limit == 0 {
		params.Limit = DefaultLimit
	}
	if params.OrderBy == "" {
		params.OrderBy = OrderByVolume
	}
	if params.Status == "" {
		params.Status = StatusActive
	}
	return params, nil
}

// get performs a rate-limited GET and returns the body of a 2xx response.
// endpoint is the low-cardinality label used for metrics and errors.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(apiName, endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPIRequest(apiName, endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("read body: %w", err)
	}

	duration := time.Since(start)
	c.log.WithFields(logrus.Fields{
		"endpoint":    endpoint,
		"status":      resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Gamma API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status := "error"
		if resp.StatusCode == http.StatusNotFound {
			status = "not_found"
		}
		metrics.RecordAPIRequest(apiName, endpoint, status, duration)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(body)),
		}
	}

	metrics.RecordAPIRequest(apiName, endpoint, "success", duration)
	return body, nil
}

func (c *Client) decodeList(endpoint string, body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}

	switch items := dst.(type) {
	case *[]MarketSummary:
		for i := range *items {
			if err := c.check(endpoint, (*items)[i]); err != nil {
				return err
			}
		}
	case *[]EventSummary:
		for i := range *items {
			if err := c.check(endpoint, (*items)[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Client) check(endpoint string, record any) error {
	if err := c.validate.Struct(record); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("validate: %w", err)}
	}
	return nil
}

// decodeOne accepts either a single object or an array and returns the first
// element accepted by match (any element when match is nil). found is false
// for a null body or when nothing matches.
func decodeOne[T any](body []byte, match func(T) bool) (T, bool, error) {
	var zero T
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return zero, false, nil
	}

	if body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return zero, false, err
		}
		for _, item := range items {
			if match == nil || match(item) {
				return item, true, nil
			}
		}
		return zero, false, nil
	}

	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		return zero, false, err
	}
	if match != nil && !match(item) {
		return zero, false, nil
	}
	return item, true, nil
}

func orderField(o OrderBy) string {
	if o == OrderByCreated {
		return "createdAt"
	}
	return "volumeNum"
}

func setClosed(q url.Values, status Status) {
	switch status {
	case StatusActive:
		q.Set("closed", "false")
	case StatusResolved:
		q.Set("closed", "true")
	}
}

func filterByStatus[T any](items []T, status Status, closed func(T) bool) []T {
	if status == StatusAll {
		return items
	}
	wantClosed := status == StatusResolved
	out := items[:0]
	for _, item := range items {
		if closed(item) == wantClosed {
			out = append(out, item)
		}
	}
	return out
}

func sortMarkets(markets []MarketSummary, order OrderBy) {
	if order == OrderByCreated {
		sort.SliceStable(markets, func(i, j int) bool {
			ti, okI := markets[i].CreatedTime()
			tj, okJ := markets[j].CreatedTime()
			if okI && okJ {
				return ti.After(tj)
			}
			return okI && !okJ
		})
		return
	}
	sort.SliceStable(markets, func(i, j int) bool {
		return markets[i].VolumeNum > markets[j].VolumeNum
	})
}
