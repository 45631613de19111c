package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/singleflight"
)

const defaultCacheSize = 4096

// Client wraps the external card-catalog API. Price lookups are cached and
// coalesced: the matching job asks for the same printings over and over.
type Client struct {
	baseURL    string
	httpClient *http.Client
	prices     *lru.Cache
	group      singleflight.Group
}

func NewClient(baseURL string, cacheSize int, timeout time.Duration) (*Client, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create price cache: %w", err)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		prices:     cache,
	}, nil
}

// Prices is the market price pair for one printing. Either side may be
// absent; that is an expected catalog answer, not an error.
type Prices struct {
	Base *float64
	Foil *float64
}

type cardResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Set    string `json:"set"`
	Prices struct {
		USD     *string `json:"usd"`
		USDFoil *string `json:"usd_foil"`
	} `json:"prices"`
}

// Prices fetches (or serves from cache) market prices for a printing.
func (c *Client) Prices(ctx context.Context, printingID string) (Prices, error) {
	if cached, ok := c.prices.Get(printingID); ok {
		return cached.(Prices), nil
	}

	v, err, _ := c.group.Do(printingID, func() (interface{}, error) {
		var card cardResponse
		if err := c.getJSON(ctx, "/cards/"+url.PathEscape(printingID), &card); err != nil {
			return Prices{}, err
		}
		p := Prices{
			Base: parsePrice(card.Prices.USD),
			Foil: parsePrice(card.Prices.USDFoil),
		}
		c.prices.Add(printingID, p)
		return p, nil
	})
	if err != nil {
		return Prices{}, err
	}
	return v.(Prices), nil
}

// Card is one catalog search result.
type Card struct {
	PrintingID string
	OracleID   string
	Name       string
	SetCode    string
}

type searchResponse struct {
	Data []struct {
		ID       string `json:"id"`
		OracleID string `json:"oracle_id"`
		Name     string `json:"name"`
		Set      string `json:"set"`
	} `json:"data"`
}

// Search proxies a catalog full-text search.
func (c *Client) Search(ctx context.Context, query string) ([]Card, error) {
	var resp searchResponse
	if err := c.getJSON(ctx, "/cards/search?q="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}

	cards := make([]Card, 0, len(resp.Data))
	for _, d := range resp.Data {
		cards = append(cards, Card{
			PrintingID: d.ID,
			OracleID:   d.OracleID,
			Name:       d.Name,
			SetCode:    d.Set,
		})
	}
	return cards, nil
}

type autocompleteResponse struct {
	Data []string `json:"data"`
}

// Autocomplete returns name completions, re-ranked with fuzzy matching so a
// typo-ed query still surfaces the intended card first.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]string, error) {
	var resp autocompleteResponse
	if err := c.getJSON(ctx, "/cards/autocomplete?q="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}

	matches := fuzzy.Find(query, resp.Data)
	if len(matches) == 0 {
		return resp.Data, nil
	}

	ranked := make([]string, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, resp.Data[m.Index])
	}
	return ranked, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown printings simply have no data; decode into the zero value.
		return nil
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("catalog returned %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

func parsePrice(s *string) *float64 {
	if s == nil || *s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &v
}
