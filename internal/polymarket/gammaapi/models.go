package gammaapi

import (
	"time"
)

// Tag is an event/market label
type Tag struct {
	ID        string `json:"id" validate:"required"`
	Label     string `json:"label"`
	Slug      string `json:"slug"`
	ForceShow bool   `json:"forceShow"`
	ForceHide bool   `json:"forceHide"`
}

// MarketSummary is the market shape returned by list endpoints
type MarketSummary struct {
	ID            string       `json:"id" validate:"required"`
	Question      string       `json:"question" validate:"required"`
	Slug          string       `json:"slug"`
	Category      string       `json:"category"`
	Active        bool         `json:"active"`
	Closed        bool         `json:"closed"`
	VolumeNum     float64      `json:"volumeNum" validate:"gte=0"`
	LiquidityNum  float64      `json:"liquidityNum" validate:"gte=0"`
	Outcomes      EmbeddedList `json:"outcomes"`
	OutcomePrices EmbeddedList `json:"outcomePrices"`
	EndDate       string       `json:"endDate,omitempty"`
	CreatedAt     string       `json:"createdAt,omitempty"`
	Image         string       `json:"image,omitempty"`
	Icon          string       `json:"icon,omitempty"`
}

// EndTime parses EndDate; ok is false when absent or unparseable.
func (m MarketSummary) EndTime() (time.Time, bool) {
	return parseTimestamp(m.EndDate)
}

// CreatedTime parses CreatedAt; ok is false when absent or unparseable.
func (m MarketSummary) CreatedTime() (time.Time, bool) {
	return parseTimestamp(m.CreatedAt)
}

// EventRef is the lightweight event a market points back to
type EventRef struct {
	ID     string  `json:"id" validate:"required"`
	Slug   string  `json:"slug"`
	Title  string  `json:"title"`
	Volume float64 `json:"volume"`
	Active bool    `json:"active"`
	Closed bool    `json:"closed"`
}

// MarketDetail is a single market with its trading and history fields.
// Optional numerics stay nil when the upstream omits them.
type MarketDetail struct {
	MarketSummary

	Description      string `json:"description,omitempty"`
	ResolutionSource string `json:"resolutionSource,omitempty"`
	StartDate        string `json:"startDate,omitempty"`

	BestBid        *float64 `json:"bestBid,omitempty"`
	BestAsk        *float64 `json:"bestAsk,omitempty"`
	Spread         *float64 `json:"spread,omitempty"`
	LastTradePrice *float64 `json:"lastTradePrice,omitempty"`

	Volume24hr *float64 `json:"volume24hr,omitempty"`
	Volume1wk  *float64 `json:"volume1wk,omitempty"`
	Volume1mo  *float64 `json:"volume1mo,omitempty"`
	Volume1yr  *float64 `json:"volume1yr,omitempty"`

	OneHourPriceChange  *float64 `json:"oneHourPriceChange,omitempty"`
	OneDayPriceChange   *float64 `json:"oneDayPriceChange,omitempty"`
	OneWeekPriceChange  *float64 `json:"oneWeekPriceChange,omitempty"`
	OneMonthPriceChange *float64 `json:"oneMonthPriceChange,omitempty"`
	OneYearPriceChange  *float64 `json:"oneYearPriceChange,omitempty"`

	Tags   []Tag      `json:"tags,omitempty" validate:"dive"`
	Events []EventRef `json:"events,omitempty" validate:"dive"`
}

// EventSummary is the event shape returned by list endpoints
type EventSummary struct {
	ID        string          `json:"id" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Slug      string          `json:"slug"`
	Tags      []Tag           `json:"tags,omitempty" validate:"dive"`
	Markets   []MarketSummary `json:"markets,omitempty" validate:"dive"`
	Volume    float64         `json:"volume" validate:"gte=0"`
	Liquidity float64         `json:"liquidity" validate:"gte=0"`
	Active    bool            `json:"active"`
	Closed    bool            `json:"closed"`
}

// EventDetail is a single event. Its Markets field shadows the summary's so
// nested markets carry their price-change fields.
type EventDetail struct {
	EventSummary

	Description      string  `json:"description,omitempty"`
	ResolutionSource string  `json:"resolutionSource,omitempty"`
	StartDate        string  `json:"startDate,omitempty"`
	EndDate          string  `json:"endDate,omitempty"`
	Volume24hr       float64 `json:"volume24hr"`
	Volume1wk        float64 `json:"volume1wk"`
	Volume1mo        float64 `json:"volume1mo"`
	Volume1yr        float64 `json:"volume1yr"`
	OpenInterest     float64 `json:"openInterest"`
	Competitive      float64 `json:"competitive"`
	CommentCount     int     `json:"commentCount"`
	NegRisk          bool    `json:"negRisk"`

	Markets []MarketDetail `json:"markets,omitempty" validate:"dive"`
}

// EndTime parses EndDate; ok is false when absent or unparseable.
func (e EventDetail) EndTime() (time.Time, bool) {
	return parseTimestamp(e.EndDate)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
