package catalog

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/liamashdown/polyview/internal/cache"
	"github.com/liamashdown/polyview/internal/polymarket/gammaapi"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListMarkets(ctx context.Context, params gammaapi.ListParams) ([]gammaapi.MarketSummary, error) {
	args := m.Called(ctx, params)
	markets, _ := args.Get(0).([]gammaapi.MarketSummary)
	return markets, args.Error(1)
}

func (m *mockSource) ListEvents(ctx context.Context, params gammaapi.EventListParams) ([]gammaapi.EventSummary, error) {
	args := m.Called(ctx, params)
	events, _ := args.Get(0).([]gammaapi.EventSummary)
	return events, args.Error(1)
}

func (m *mockSource) GetMarketByID(ctx context.Context, id string) (*gammaapi.MarketDetail, error) {
	args := m.Called(ctx, id)
	market, _ := args.Get(0).(*gammaapi.MarketDetail)
	return market, args.Error(1)
}

func (m *mockSource) GetMarketBySlug(ctx context.Context, slug string) (*gammaapi.MarketDetail, error) {
	args := m.Called(ctx, slug)
	market, _ := args.Get(0).(*gammaapi.MarketDetail)
	return market, args.Error(1)
}

func (m *mockSource) GetEventBySlug(ctx context.Context, slug string) (*gammaapi.EventDetail, error) {
	args := m.Called(ctx, slug)
	event, _ := args.Get(0).(*gammaapi.EventDetail)
	return event, args.Error(1)
}

// brokenCache fails every call
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Delete(context.Context, string) error { return nil }
func (brokenCache) Close() error                         { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sampleMarket() *gammaapi.MarketDetail {
	bid := 0.48
	return &gammaapi.MarketDetail{
		MarketSummary: gammaapi.MarketSummary{
			ID:            "101",
			Question:      "Will it rain?",
			Slug:          "will-it-rain",
			Active:        true,
			VolumeNum:     12_345,
			Outcomes:      gammaapi.NewEmbeddedList("Yes", "No"),
			OutcomePrices: gammaapi.NewEmbeddedList("0.48", "0.52"),
		},
		BestBid: &bid,
		Tags:    []gammaapi.Tag{{ID: "1", Label: "Weather"}},
	}
}

func TestCachedSourceServesRepeatReadsFromCache(t *testing.T) {
	src := new(mockSource)
	ctx := context.Background()
	want := sampleMarket()
	src.On("GetMarketByID", ctx, "101").Return(want, nil).Once()

	mem := cache.NewMemoryCache[[]byte](0)
	defer mem.Close()
	s := NewCachedSource(src, mem, time.Minute, quietLogger())

	first, err := s.GetMarketByID(ctx, "101")
	require.NoError(t, err)
	second, err := s.GetMarketByID(ctx, "101")
	require.NoError(t, err)

	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	src.AssertExpectations(t)
}

func TestCachedSourceDoesNotCacheNotFound(t *testing.T) {
	src := new(mockSource)
	ctx := context.Background()
	notFound := &gammaapi.NotFoundError{Kind: "market", Key: "nope"}
	src.On("GetMarketBySlug", ctx, "nope").Return(nil, notFound).Twice()

	mem := cache.NewMemoryCache[[]byte](0)
	defer mem.Close()
	s := NewCachedSource(src, mem, time.Minute, quietLogger())

	for range 2 {
		_, err := s.GetMarketBySlug(ctx, "nope")
		assert.True(t, gammaapi.IsNotFound(err))
	}
	assert.Equal(t, 0, mem.Len())
	src.AssertExpectations(t)
}

func TestCachedSourceDoesNotCacheUpstreamErrors(t *testing.T) {
	src := new(mockSource)
	ctx := context.Background()
	upstream := &gammaapi.UpstreamError{Endpoint: "/events/slug", StatusCode: 503}
	src.On("GetEventBySlug", ctx, "election").Return(nil, upstream).Once()
	src.On("GetEventBySlug", ctx, "election").Return(&gammaapi.EventDetail{
		EventSummary: gammaapi.EventSummary{ID: "e1", Title: "Election", Slug: "election"},
	}, nil).Once()

	mem := cache.NewMemoryCache[[]byte](0)
	defer mem.Close()
	s := NewCachedSource(src, mem, time.Minute, quietLogger())

	_, err := s.GetEventBySlug(ctx, "election")
	assert.True(t, gammaapi.IsUpstream(err))

	event, err := s.GetEventBySlug(ctx, "election")
	require.NoError(t, err)
	assert.Equal(t, "Election", event.Title)
	src.AssertExpectations(t)
}

func TestCachedSourceKeysListsByParams(t *testing.T) {
	src := new(mockSource)
	ctx := context.Background()
	yes := true
	byVolume := gammaapi.ListParams{Limit: 10, OrderBy: gammaapi.OrderByVolume, Competitive: &yes}
	byCreated := gammaapi.ListParams{Limit: 10, OrderBy: gammaapi.OrderByCreated}

	src.On("ListMarkets", ctx, byVolume).Return([]gammaapi.MarketSummary{{ID: "1", Question: "a"}}, nil).Once()
	src.On("ListMarkets", ctx, byCreated).Return([]gammaapi.MarketSummary{{ID: "2", Question: "b"}}, nil).Once()

	mem := cache.NewMemoryCache[[]byte](0)
	defer mem.Close()
	s := NewCachedSource(src, mem, time.Minute, quietLogger())

	for range 2 {
		got, err := s.ListMarkets(ctx, byVolume)
		require.NoError(t, err)
		assert.Equal(t, "1", got[0].ID)

		got, err = s.ListMarkets(ctx, byCreated)
		require.NoError(t, err)
		assert.Equal(t, "2", got[0].ID)
	}
	src.AssertExpectations(t)
}

func TestCachedSourceFallsThroughWhenCacheFails(t *testing.T) {
	src := new(mockSource)
	ctx := context.Background()
	params := gammaapi.EventListParams{Limit: 5}
	src.On("ListEvents", ctx, params).Return([]gammaapi.EventSummary{{ID: "e", Title: "T"}}, nil).Twice()

	s := NewCachedSource(src, brokenCache{}, time.Minute, quietLogger())

	for range 2 {
		events, err := s.ListEvents(ctx, params)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	}
	src.AssertExpectations(t)
}

func TestCachedSourceDiscardsUnreadableEntry(t *testing.T) {
	src := new(mockSource)
	ctx := context.Background()
	src.On("GetMarketByID", ctx, "101").Return(sampleMarket(), nil).Once()

	mem := cache.NewMemoryCache[[]byte](0)
	defer mem.Close()
	require.NoError(t, mem.Set(ctx, "polyview:market:id:101", []byte("{broken"), time.Minute))

	s := NewCachedSource(src, mem, time.Minute, quietLogger())
	got, err := s.GetMarketByID(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "101", got.ID)

	// the bad entry was replaced
	_, err = s.GetMarketByID(ctx, "101")
	require.NoError(t, err)
	src.AssertExpectations(t)
}

func TestCachedSourceWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache[[]byte](cache.RedisOptions{Addr: mr.Addr()})
	defer rc.Close()

	src := new(mockSource)
	ctx := context.Background()
	want := sampleMarket()
	src.On("GetMarketBySlug", ctx, "will-it-rain").Return(want, nil).Once()

	s := NewCachedSource(src, rc, 30*time.Second, quietLogger())

	_, err := s.GetMarketBySlug(ctx, "will-it-rain")
	require.NoError(t, err)
	assert.True(t, mr.Exists("polyview:market:slug:will-it-rain"))
	assert.Equal(t, 30*time.Second, mr.TTL("polyview:market:slug:will-it-rain"))

	got, err := s.GetMarketBySlug(ctx, "will-it-rain")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "0.52", got.OutcomePrices.At(1, "0"))
	src.AssertExpectations(t)
}
