package coinmarketcap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/reconcile"
	"github.com/shopspring/decimal"
)

// errorCode accepts both the numeric code of v2 endpoints and the string
// code of v3 endpoints.
type errorCode int

func (c *errorCode) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("error_code %q: %w", b, err)
	}
	*c = errorCode(n)
	return nil
}

type status struct {
	ErrorCode    errorCode `json:"error_code"`
	ErrorMessage *string   `json:"error_message"`
}

// failed reports whether the API flagged the request as failed.
func (s status) failed() bool { return s.ErrorCode != 0 }

// APIError is a failure reported in the response status object.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

func (s status) err() error {
	if !s.failed() {
		return nil
	}
	msg := ""
	if s.ErrorMessage != nil {
		msg = *s.ErrorMessage
	}
	return &APIError{Code: int(s.ErrorCode), Message: msg}
}

type quotesResponse struct {
	Status status `json:"status"`
	// Keyed by CoinMarketCap numeric id. Some API versions return a list per
	// key, so entries are decoded lazily.
	Data map[string]json.RawMessage `json:"data"`
}

type cryptoEntry struct {
	Name   string           `json:"name"`
	Symbol string           `json:"symbol"`
	Slug   string           `json:"slug"`
	Quote  map[string]quote `json:"quote"`
}

type quote struct {
	Price            decimal.NullDecimal `json:"price"`
	Volume24h        decimal.NullDecimal `json:"volume_24h"`
	VolumeChange24h  decimal.NullDecimal `json:"volume_change_24h"`
	PercentChange1h  decimal.NullDecimal `json:"percent_change_1h"`
	PercentChange24h decimal.NullDecimal `json:"percent_change_24h"`
	PercentChange7d  decimal.NullDecimal `json:"percent_change_7d"`
	PercentChange30d decimal.NullDecimal `json:"percent_change_30d"`
	PercentChange90d decimal.NullDecimal `json:"percent_change_90d"`
	MarketCap        decimal.NullDecimal `json:"market_cap"`
}

func (e cryptoEntry) fields() (domain.MarketFields, bool) {
	q, ok := e.Quote[convert]
	if !ok || !q.Price.Valid {
		return domain.MarketFields{}, false
	}
	return domain.MarketFields{
		Symbol:           e.Symbol,
		Name:             e.Name,
		Price:            q.Price.Decimal,
		Volume24h:        q.Volume24h,
		VolumeChange24h:  q.VolumeChange24h,
		MarketCap:        q.MarketCap,
		PercentChange1h:  q.PercentChange1h,
		PercentChange24h: q.PercentChange24h,
		PercentChange7d:  q.PercentChange7d,
		PercentChange30d: q.PercentChange30d,
		PercentChange90d: q.PercentChange90d,
	}, true
}

func decodeEntries(raw json.RawMessage) []cryptoEntry {
	var one cryptoEntry
	if err := json.Unmarshal(raw, &one); err == nil {
		return []cryptoEntry{one}
	}
	var many []cryptoEntry
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// looseName folds a name or slug so "Wrapped-Bitcoin", "wrapped_bitcoin"
// and "Wrapped Bitcoin" compare equal.
func looseName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// matchQuotes assigns each requested id its entry, by slug first and then by
// folded name.
func matchQuotes(ids []domain.TokenID, data map[string]json.RawMessage) reconcile.Snapshot {
	bySlug := make(map[string]domain.MarketFields)
	byName := make(map[string]domain.MarketFields)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, e := range decodeEntries(data[k]) {
			f, ok := e.fields()
			if !ok {
				continue
			}
			if e.Slug != "" {
				if _, dup := bySlug[e.Slug]; !dup {
					bySlug[e.Slug] = f
				}
			}
			if n := looseName(e.Name); n != "" {
				if _, dup := byName[n]; !dup {
					byName[n] = f
				}
			}
		}
	}

	snap := make(reconcile.Snapshot, len(ids))
	for _, id := range ids {
		if f, ok := bySlug[id.String()]; ok {
			snap[id] = f
			continue
		}
		if f, ok := byName[looseName(id.String())]; ok {
			snap[id] = f
		}
	}
	return snap
}

type fearGreedResponse struct {
	Status status           `json:"status"`
	Data   []fearGreedEntry `json:"data"`
}

type fearGreedEntry struct {
	Timestamp      json.Number `json:"timestamp"`
	Value          int         `json:"value"`
	Classification string      `json:"value_classification"`
}

func (r fearGreedResponse) series() (domain.FearGreedSeries, error) {
	out := make(domain.FearGreedSeries, 0, len(r.Data))
	for _, e := range r.Data {
		secs, err := strconv.ParseInt(e.Timestamp.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("timestamp %q: %w", e.Timestamp, err)
		}
		out = append(out, domain.FearGreedPoint{
			Timestamp:      time.Unix(secs, 0).UTC(),
			Value:          e.Value,
			Classification: e.Classification,
		})
	}
	// Newest first regardless of the order the API used.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
