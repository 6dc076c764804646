package token

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
)

// ErrFeedUnavailable marks any failure to obtain prices from the feed.
var ErrFeedUnavailable = errors.New("price feed unavailable")

// ErrMalformedEntry is returned for feed records that fail validation.
var ErrMalformedEntry = errors.New("malformed price entry")

// RawPrice is one record of the price feed as it arrives on the wire.
// A record whose fields have the wrong JSON type still decodes; the
// problem is kept and reported when the record is parsed, so one bad
// entry never spoils the rest of the feed.
type RawPrice struct {
	Currency string      `json:"currency"`
	Price    json.Number `json:"price"`
	Date     string      `json:"date"`

	decodeErr error
}

// dateLayouts are tried in order; the feed normally sends RFC 3339.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON decodes one feed element field by field.
func (r *RawPrice) UnmarshalJSON(data []byte) error {
	var fields struct {
		Currency json.RawMessage `json:"currency"`
		Price    json.RawMessage `json:"price"`
		Date     json.RawMessage `json:"date"`
	}
	*r = RawPrice{}
	if err := json.Unmarshal(data, &fields); err != nil {
		r.decodeErr = fmt.Errorf("%w: %s", ErrMalformedEntry, truncate(data))
		return nil
	}

	if err := decodeString(fields.Currency, &r.Currency); err != nil {
		r.decodeErr = fmt.Errorf("%w: currency %s", ErrMalformedEntry, truncate(fields.Currency))
		return nil
	}
	if err := decodeString(fields.Date, &r.Date); err != nil {
		r.decodeErr = fmt.Errorf("%w: %s: date %s", ErrMalformedEntry, r.Currency, truncate(fields.Date))
		return nil
	}

	switch price := bytes.TrimSpace(fields.Price); {
	case len(price) == 0 || string(price) == "null":
	case price[0] == '"':
		var text string
		if err := json.Unmarshal(price, &text); err != nil {
			r.decodeErr = fmt.Errorf("%w: %s: price %s", ErrMalformedEntry, r.Currency, truncate(price))
			return nil
		}
		r.Price = json.Number(strings.TrimSpace(text))
	default:
		var n json.Number
		if err := json.Unmarshal(price, &n); err != nil {
			r.decodeErr = fmt.Errorf("%w: %s: price %s", ErrMalformedEntry, r.Currency, truncate(price))
			return nil
		}
		r.Price = n
	}
	return nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func truncate(b []byte) string {
	const limit = 40
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// FeedClient fetches raw price records.
type FeedClient interface {
	FetchPrices(ctx context.Context) ([]RawPrice, error)
}

// HTTPFeed reads the price feed over HTTP.
type HTTPFeed struct {
	url    string
	client *http.Client
}

// NewHTTPFeed returns a feed client for url with the given request timeout.
func NewHTTPFeed(url string, timeout time.Duration) *HTTPFeed {
	return &HTTPFeed{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// FetchPrices performs a GET on the feed URL. Client errors and decode
// failures are permanent; server errors and transport failures may be retried.
func (f *HTTPFeed) FetchPrices(ctx context.Context) ([]RawPrice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: build request: %v", ErrFeedUnavailable, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("%w: HTTP status %d", ErrFeedUnavailable, resp.StatusCode)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	// Only a body that is not a JSON array fails here; bad elements are
	// carried through and rejected by Normalize.
	var raw []RawPrice
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: decode: %v", ErrFeedUnavailable, err))
	}
	return raw, nil
}

// parse validates a raw record and turns it into a Token.
// An unreadable date leaves Date zero, so the record only loses the
// newest-quote tie-break.
func (r RawPrice) parse(iconBase string) (Token, error) {
	if r.decodeErr != nil {
		return Token{}, r.decodeErr
	}
	symbol := strings.TrimSpace(r.Currency)
	if symbol == "" {
		return Token{}, fmt.Errorf("%w: empty currency", ErrMalformedEntry)
	}
	price, err := decimal.NewFromString(r.Price.String())
	if err != nil {
		return Token{}, fmt.Errorf("%w: %s: price %q", ErrMalformedEntry, symbol, r.Price)
	}
	return Token{
		Symbol:   symbol,
		Price:    price,
		USDPrice: price,
		IconURL:  IconURL(iconBase, symbol),
		Date:     parseDate(r.Date),
	}, nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Normalize turns raw feed records into a catalog: the newest quote per
// currency wins, non-positive prices are dropped and the result is sorted
// by symbol. Rejected records are reported alongside the catalog.
func Normalize(raw []RawPrice, iconBase string) (Catalog, []error) {
	var rejected []error
	latest := make(map[string]Token, len(raw))
	for _, r := range raw {
		tok, err := r.parse(iconBase)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		prev, seen := latest[tok.Symbol]
		if !seen || tok.Date.After(prev.Date) {
			latest[tok.Symbol] = tok
		}
	}

	tokens := make([]Token, 0, len(latest))
	for _, tok := range latest {
		if tok.Price.IsPositive() {
			tokens = append(tokens, tok)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Symbol < tokens[j].Symbol
	})
	return NewCatalog(tokens...), rejected
}
