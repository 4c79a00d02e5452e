package view

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/liamashdown/polyview/internal/polymarket/gammaapi"
)

// OutcomeRow is one outcome with its price
type OutcomeRow struct {
	Label   string `json:"label"`
	Price   string `json:"price"`
	Percent string `json:"percent"`
}

// Stat is a labelled figure on a detail page
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Change is a labelled percentage move
type Change struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Positive bool   `json:"positive"`
}

// EventLink points at an event page
type EventLink struct {
	Title  string `json:"title"`
	Href   string `json:"href"`
	Volume string `json:"volume"`
	Status string `json:"status"`
}

// MarketCard is what list pages show per market
type MarketCard struct {
	ID       string       `json:"id"`
	Href     string       `json:"href"`
	Question string       `json:"question"`
	Category string       `json:"category,omitempty"`
	Status   string       `json:"status"`
	Volume   string       `json:"volume"`
	YesLabel string       `json:"yesLabel"`
	NoLabel  string       `json:"noLabel"`
	YesPrice string       `json:"yesPrice"`
	NoPrice  string       `json:"noPrice"`
	EndsIn   string       `json:"endsIn,omitempty"`
	Outcomes []OutcomeRow `json:"outcomes,omitempty"`
}

// MarketPage is the market detail page
type MarketPage struct {
	MarketCard
	Description      string      `json:"description,omitempty"`
	ResolutionSource string      `json:"resolutionSource,omitempty"`
	PrimaryTag       string      `json:"primaryTag,omitempty"`
	Tags             []string    `json:"tags,omitempty"`
	Trading          []Stat      `json:"trading,omitempty"`
	Volumes          []Stat      `json:"volumes,omitempty"`
	PriceChanges     []Change    `json:"priceChanges,omitempty"`
	RelatedEvents    []EventLink `json:"relatedEvents,omitempty"`
}

// AggregateCard is the averaged yes/no figures of an event
type AggregateCard struct {
	YesLabel       string `json:"yesLabel"`
	NoLabel        string `json:"noLabel"`
	YesPrice       string `json:"yesPrice"`
	NoPrice        string `json:"noPrice"`
	Change         string `json:"change"`
	ChangePositive bool   `json:"changePositive"`
	ActiveMarkets  int    `json:"activeMarkets"`
}

// EventPage is the event detail page
type EventPage struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	Description      string         `json:"description,omitempty"`
	ResolutionSource string         `json:"resolutionSource,omitempty"`
	Status           string         `json:"status"`
	PrimaryTag       string         `json:"primaryTag,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	EndsIn           string         `json:"endsIn,omitempty"`
	Volumes          []Stat         `json:"volumes,omitempty"`
	Details          []Stat         `json:"details,omitempty"`
	Aggregate        *AggregateCard `json:"aggregate,omitempty"`
	Markets          []MarketCard   `json:"markets,omitempty"`
}

// EventCard is what list pages show per event
type EventCard struct {
	Title      string `json:"title"`
	Href       string `json:"href"`
	PrimaryTag string `json:"primaryTag,omitempty"`
	Volume     string `json:"volume"`
	Markets    int    `json:"markets"`
	Status     string `json:"status"`
}

// NewMarketCard builds the list card for one market
func NewMarketCard(m gammaapi.MarketSummary, now time.Time) MarketCard {
	yes, no := PricesFor(m)
	yesLabel, noLabel := OutcomeLabels(m)

	labels := m.Outcomes.Or([]string{"Yes", "No"})
	rows := make([]OutcomeRow, 0, len(labels))
	for i, label := range labels {
		price := m.OutcomePrices.At(i, "0")
		rows = append(rows, OutcomeRow{
			Label:   label,
			Price:   Price(price, 3),
			Percent: Percent(price),
		})
	}

	card := MarketCard{
		ID:       m.ID,
		Href:     "/markets/" + m.ID,
		Question: m.Question,
		Category: m.Category,
		Status:   status(m.Active, m.Closed),
		Volume:   ScaledCurrency(m.VolumeNum, 2),
		YesLabel: yesLabel,
		NoLabel:  noLabel,
		YesPrice: Price(yes, 2),
		NoPrice:  Price(no, 2),
		Outcomes: rows,
	}
	if end, ok := m.EndTime(); ok {
		card.EndsIn = humanize.RelTime(end, now, "ago", "from now")
	}
	return card
}

// NewMarketCards maps NewMarketCard over a list
func NewMarketCards(markets []gammaapi.MarketSummary, now time.Time) []MarketCard {
	cards := make([]MarketCard, 0, len(markets))
	for _, m := range markets {
		cards = append(cards, NewMarketCard(m, now))
	}
	return cards
}

// NewMarketPage builds the market detail page
func NewMarketPage(m gammaapi.MarketDetail, now time.Time) MarketPage {
	page := MarketPage{
		MarketCard:       NewMarketCard(m.MarketSummary, now),
		Description:      m.Description,
		ResolutionSource: m.ResolutionSource,
		Tags:             tagLabels(m.Tags),
		Trading: []Stat{
			{"Best Bid", optionalPrice(m.BestBid)},
			{"Best Ask", optionalPrice(m.BestAsk)},
			{"Spread", optionalPrice(m.Spread)},
			{"Last Trade", optionalPrice(m.LastTradePrice)},
		},
		Volumes: []Stat{
			{"Total Volume", ScaledCurrency(m.VolumeNum, 2)},
			{"Liquidity", ScaledCurrency(m.LiquidityNum, 2)},
			{"24h Volume", OptionalCurrency(m.Volume24hr, 2)},
			{"1w Volume", OptionalCurrency(m.Volume1wk, 2)},
			{"1m Volume", OptionalCurrency(m.Volume1mo, 2)},
			{"1y Volume", OptionalCurrency(m.Volume1yr, 2)},
		},
	}
	if tag, ok := PrimaryTag(m.Tags); ok {
		page.PrimaryTag = tag.Label
	}

	for _, c := range []struct {
		label string
		value *float64
	}{
		{"1 Hour", m.OneHourPriceChange},
		{"24 Hours", m.OneDayPriceChange},
		{"1 Week", m.OneWeekPriceChange},
		{"1 Month", m.OneMonthPriceChange},
		{"1 Year", m.OneYearPriceChange},
	} {
		if v, ok := OptionalPercent(c.value); ok {
			page.PriceChanges = append(page.PriceChanges, Change{Label: c.label, Value: v, Positive: *c.value >= 0})
		}
	}

	for _, e := range m.Events {
		page.RelatedEvents = append(page.RelatedEvents, EventLink{
			Title:  e.Title,
			Href:   "/events/" + e.Slug,
			Volume: ScaledCurrency(e.Volume, 1),
			Status: status(e.Active, e.Closed),
		})
	}
	return page
}

// NewEventPage builds the event detail page
func NewEventPage(e gammaapi.EventDetail, now time.Time) EventPage {
	page := EventPage{
		ID:               e.ID,
		Title:            e.Title,
		Slug:             e.Slug,
		Description:      e.Description,
		ResolutionSource: e.ResolutionSource,
		Status:           status(e.Active, e.Closed),
		Tags:             tagLabels(e.Tags),
		Volumes: []Stat{
			{"Total Volume", ScaledCurrency(e.Volume, 2)},
			{"Liquidity", ScaledCurrency(e.Liquidity, 2)},
			{"24h Volume", ScaledCurrency(e.Volume24hr, 2)},
			{"1w Volume", ScaledCurrency(e.Volume1wk, 2)},
			{"1m Volume", ScaledCurrency(e.Volume1mo, 2)},
			{"1y Volume", ScaledCurrency(e.Volume1yr, 2)},
		},
		Details: []Stat{
			{"Open Interest", ScaledCurrency(e.OpenInterest, 2)},
			{"Competitive", Fixed(e.Competitive, 3)},
			{"Comments", humanize.Comma(int64(e.CommentCount))},
		},
	}
	if tag, ok := PrimaryTag(e.Tags); ok {
		page.PrimaryTag = tag.Label
	}
	if end, ok := e.EndTime(); ok {
		page.EndsIn = humanize.RelTime(end, now, "ago", "from now")
	}

	if agg := AggregateEvent(e); agg != nil {
		page.Aggregate = &AggregateCard{
			YesLabel:       agg.YesLabel,
			NoLabel:        agg.NoLabel,
			YesPrice:       PriceFloat(agg.AvgYesPrice, 3),
			NoPrice:        PriceFloat(agg.AvgNoPrice, 3),
			Change:         PercentChange(agg.AvgPriceChange),
			ChangePositive: agg.AvgPriceChange >= 0,
			ActiveMarkets:  agg.ActiveMarkets,
		}
	}

	for _, m := range e.Markets {
		page.Markets = append(page.Markets, NewMarketCard(m.MarketSummary, now))
	}
	return page
}

// NewEventCard builds the list card for one event
func NewEventCard(e gammaapi.EventSummary) EventCard {
	card := EventCard{
		Title:   e.Title,
		Href:    "/events/" + e.Slug,
		Volume:  ScaledCurrency(e.Volume, 2),
		Markets: len(e.Markets),
		Status:  status(e.Active, e.Closed),
	}
	if tag, ok := PrimaryTag(e.Tags); ok {
		card.PrimaryTag = tag.Label
	}
	return card
}

func optionalPrice(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return PriceFloat(*v, 3)
}

func tagLabels(tags []gammaapi.Tag) []string {
	var labels []string
	for _, t := range tags {
		if t.ForceHide {
			continue
		}
		labels = append(labels, t.Label)
	}
	return labels
}

func status(active, closed bool) string {
	switch {
	case closed:
		return "Resolved"
	case active:
		return "Active"
	default:
		return "Inactive"
	}
}
