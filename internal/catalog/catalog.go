// Package catalog is the read path behind the pages: the Gamma client,
// optionally fronted by a response cache.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/liamashdown/polyview/internal/cache"
	"github.com/liamashdown/polyview/internal/metrics"
	"github.com/liamashdown/polyview/internal/polymarket/gammaapi"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "polyview:"

// Source provides markets and events. *gammaapi.Client satisfies it.
type Source interface {
	ListMarkets(ctx context.Context, params gammaapi.ListParams) ([]gammaapi.MarketSummary, error)
	ListEvents(ctx context.Context, params gammaapi.EventListParams) ([]gammaapi.EventSummary, error)
	GetMarketByID(ctx context.Context, id string) (*gammaapi.MarketDetail, error)
	GetMarketBySlug(ctx context.Context, slug string) (*gammaapi.MarketDetail, error)
	GetEventBySlug(ctx context.Context, slug string) (*gammaapi.EventDetail, error)
}

var _ Source = (*gammaapi.Client)(nil)

// CachedSource serves repeated reads from a cache for ttl.
// Errors, not-found included, always go back to the source next time.
type CachedSource struct {
	src   Source
	cache cache.Cache[[]byte]
	ttl   time.Duration
	log   *logrus.Logger
}

// NewCachedSource wraps src. Entries are stored as JSON.
func NewCachedSource(src Source, c cache.Cache[[]byte], ttl time.Duration, log *logrus.Logger) *CachedSource {
	return &CachedSource{src: src, cache: c, ttl: ttl, log: log}
}

func (s *CachedSource) ListMarkets(ctx context.Context, params gammaapi.ListParams) ([]gammaapi.MarketSummary, error) {
	key := keyPrefix + "markets:" + marketListKey(params)
	return cached(ctx, s, "list_markets", key, func() ([]gammaapi.MarketSummary, error) {
		return s.src.ListMarkets(ctx, params)
	})
}

func (s *CachedSource) ListEvents(ctx context.Context, params gammaapi.EventListParams) ([]gammaapi.EventSummary, error) {
	key := fmt.Sprintf("%sevents:%d:%s", keyPrefix, params.Limit, params.Status)
	return cached(ctx, s, "list_events", key, func() ([]gammaapi.EventSummary, error) {
		return s.src.ListEvents(ctx, params)
	})
}

func (s *CachedSource) GetMarketByID(ctx context.Context, id string) (*gammaapi.MarketDetail, error) {
	return cached(ctx, s, "market_by_id", keyPrefix+"market:id:"+id, func() (*gammaapi.MarketDetail, error) {
		return s.src.GetMarketByID(ctx, id)
	})
}

func (s *CachedSource) GetMarketBySlug(ctx context.Context, slug string) (*gammaapi.MarketDetail, error) {
	return cached(ctx, s, "market_by_slug", keyPrefix+"market:slug:"+slug, func() (*gammaapi.MarketDetail, error) {
		return s.src.GetMarketBySlug(ctx, slug)
	})
}

func (s *CachedSource) GetEventBySlug(ctx context.Context, slug string) (*gammaapi.EventDetail, error) {
	return cached(ctx, s, "event_by_slug", keyPrefix+"event:slug:"+slug, func() (*gammaapi.EventDetail, error) {
		return s.src.GetEventBySlug(ctx, slug)
	})
}

// cached is read-through: hit returns the decoded entry, anything else calls
// fetch and stores a successful result. Cache faults never fail the request.
func cached[T any](ctx context.Context, s *CachedSource, op, key string, fetch func() (T, error)) (T, error) {
	logger := s.log.WithFields(logrus.Fields{"operation": op, "key": key})

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		uerr := json.Unmarshal(data, &v)
		if uerr == nil {
			metrics.RecordCacheLookup(op, "hit")
			return v, nil
		}
		logger.WithError(uerr).Warn("Discarding unreadable cache entry")
		metrics.RecordCacheLookup(op, "error")
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.RecordCacheLookup(op, "miss")
	default:
		logger.WithError(err).Warn("Cache lookup failed")
		metrics.RecordCacheLookup(op, "error")
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	data, err = json.Marshal(v)
	if err != nil {
		logger.WithError(err).Warn("Failed to encode cache entry")
		return v, nil
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		logger.WithError(err).Warn("Failed to store cache entry")
	}
	return v, nil
}

func marketListKey(p gammaapi.ListParams) string {
	competitive := "any"
	if p.Competitive != nil {
		competitive = strconv.FormatBool(*p.Competitive)
	}
	return fmt.Sprintf("%d:%s:%s:%s", p.Limit, p.OrderBy, p.Status, competitive)
}
