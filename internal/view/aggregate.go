package view

import (
	"math"
	"strconv"
	"strings"

	"github.com/liamashdown/polyview/internal/polymarket/gammaapi"
)

// PricesFor returns the first two outcome prices as decimal strings,
// "0" for any element the upstream did not send.
func PricesFor(m gammaapi.MarketSummary) (yes, no string) {
	return m.OutcomePrices.At(0, "0"), m.OutcomePrices.At(1, "0")
}

// OutcomeLabels returns the first two outcome labels, "Yes"/"No" by default.
func OutcomeLabels(m gammaapi.MarketSummary) (first, second string) {
	return m.Outcomes.At(0, "Yes"), m.Outcomes.At(1, "No")
}

// ParsePrice reads a decimal price string; anything unparseable is 0.
func ParsePrice(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// AverageAcrossMarkets is the arithmetic mean of extractor over markets.
// ok is false for an empty set: there is no average to show, and callers
// must not print one.
func AverageAcrossMarkets[M any](markets []M, extractor func(M) float64) (avg float64, ok bool) {
	if len(markets) == 0 {
		return 0, false
	}
	var sum float64
	for _, m := range markets {
		sum += extractor(m)
	}
	return sum / float64(len(markets)), true
}

// PrimaryTag picks the first tag flagged forceShow, else the first tag.
func PrimaryTag(tags []gammaapi.Tag) (gammaapi.Tag, bool) {
	for _, t := range tags {
		if t.ForceShow {
			return t, true
		}
	}
	if len(tags) > 0 {
		return tags[0], true
	}
	return gammaapi.Tag{}, false
}

// EventAggregate summarizes the active markets of an event
type EventAggregate struct {
	ActiveMarkets  int
	YesLabel       string
	NoLabel        string
	AvgYesPrice    float64
	AvgNoPrice     float64
	AvgPriceChange float64
}

// AggregateEvent averages prices and one-day change across the event's
// active markets. Labels come from the first active market. It returns nil
// when no market is active.
func AggregateEvent(e gammaapi.EventDetail) *EventAggregate {
	var active []gammaapi.MarketDetail
	for _, m := range e.Markets {
		if m.Active {
			active = append(active, m)
		}
	}

	avgYes, ok := AverageAcrossMarkets(active, func(m gammaapi.MarketDetail) float64 {
		yes, _ := PricesFor(m.MarketSummary)
		return ParsePrice(yes)
	})
	if !ok {
		return nil
	}
	avgNo, _ := AverageAcrossMarkets(active, func(m gammaapi.MarketDetail) float64 {
		_, no := PricesFor(m.MarketSummary)
		return ParsePrice(no)
	})
	avgChange, _ := AverageAcrossMarkets(active, func(m gammaapi.MarketDetail) float64 {
		if m.OneDayPriceChange == nil {
			return 0
		}
		return *m.OneDayPriceChange
	})

	yesLabel, noLabel := OutcomeLabels(active[0].MarketSummary)

	return &EventAggregate{
		ActiveMarkets:  len(active),
		YesLabel:       yesLabel,
		NoLabel:        noLabel,
		AvgYesPrice:    avgYes,
		AvgNoPrice:     avgNo,
		AvgPriceChange: avgChange,
	}
}
