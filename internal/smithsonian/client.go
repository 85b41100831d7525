// Package smithsonian fetches stamp records from the Smithsonian Open
// Access search API.
package smithsonian

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mnav0/major-studio-1/pkg/stamps/record"
)

const (
	DefaultBaseURL  = "https://api.si.edu/openaccess/api/v1.0"
	DefaultPageSize = 1000
)

// DefaultSearches cover the NPM postage stamps plus the 1780s postal
// markings and the early embossed tax stamps the main search misses.
var DefaultSearches = []string{
	`unit_code:"NPM" AND object_type:"Postage stamps"`,
	`stamp AND unit_code:"NPM" AND date:"1780s"`,
	`unit_code:"NPM" AND object_type:"Tax stamps" AND date:"1800s"`,
}

// Client calls the search endpoint.
type Client struct {
	BaseURL  string
	APIKey   string
	PageSize int

	HTTPClient *http.Client
	// Limiter paces requests; nil means unpaced.
	Limiter *rate.Limiter
	// Cache stores raw responses; nil disables caching.
	Cache  PageCache
	Logger *zap.Logger
}

type searchResponse struct {
	Response struct {
		RowCount int             `json:"rowCount"`
		Rows     []record.Record `json:"rows"`
	} `json:"response"`
}

// PageRange is one paginated request.
type PageRange struct {
	Start int
	Rows  int
}

// Plan splits rowCount rows into pages of pageSize. The last page asks for
// exactly the remaining rows.
func Plan(rowCount, pageSize int) []PageRange {
	if rowCount <= 0 || pageSize <= 0 {
		return nil
	}
	pages := make([]PageRange, 0, (rowCount+pageSize-1)/pageSize)
	for start := 0; start < rowCount; start += pageSize {
		rows := pageSize
		if remaining := rowCount - start; remaining < rows {
			rows = remaining
		}
		pages = append(pages, PageRange{Start: start, Rows: rows})
	}
	return pages
}

// Count returns the number of rows matching query.
func (c *Client) Count(ctx context.Context, query string) (int, error) {
	resp, err := c.get(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	return resp.Response.RowCount, nil
}

// Page fetches one page of rows.
func (c *Client) Page(ctx context.Context, query string, page PageRange) ([]record.Record, error) {
	resp, err := c.get(ctx, query, &page)
	if err != nil {
		return nil, err
	}
	return resp.Response.Rows, nil
}

// Search fetches every row for query. Pages are requested concurrently and
// merged in page order. A failed count or page is logged and contributes
// no rows; only context cancellation is returned as an error.
func (c *Client) Search(ctx context.Context, query string) ([]record.Record, error) {
	log := c.logger().With(zap.String("query", query))

	total, err := c.Count(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("count failed", zap.Error(err))
		return []record.Record{}, nil
	}

	pages := Plan(total, c.pageSize())
	results := make([][]record.Record, len(pages))
	var wg sync.WaitGroup
	for i, p := range pages {
		wg.Add(1)
		go func(i int, p PageRange) {
			defer wg.Done()
			rows, err := c.Page(ctx, query, p)
			if err != nil {
				log.Warn("page failed", zap.Int("start", p.Start), zap.Int("rows", p.Rows), zap.Error(err))
				return
			}
			results[i] = rows
		}(i, p)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []record.Record{}
	for _, rows := range results {
		out = append(out, rows...)
	}
	log.Info("search complete", zap.Int("row_count", total), zap.Int("pages", len(pages)), zap.Int("rows", len(out)))
	return out, nil
}

// SearchAll runs the queries concurrently and concatenates their rows in
// query order. Requests from every query share the client's rate limiter.
func (c *Client) SearchAll(ctx context.Context, queries []string) ([]record.Record, error) {
	results := make([][]record.Record, len(queries))
	errs := make([]error, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			results[i], errs[i] = c.Search(ctx, q)
		}(i, q)
	}
	wg.Wait()

	out := []record.Record{}
	for i := range queries {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out = append(out, results[i]...)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, query string, page *PageRange) (*searchResponse, error) {
	key := cacheKey(query, page)
	if c.Cache != nil {
		if body, ok, err := c.Cache.Get(key); err != nil {
			c.logger().Debug("cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			var resp searchResponse
			if err := json.Unmarshal(body, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(query, page), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: unexpected status %d: %s", res.StatusCode, snippet(body))
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if c.Cache != nil {
		if err := c.Cache.Put(key, body); err != nil {
			c.logger().Debug("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return &resp, nil
}

func (c *Client) searchURL(query string, page *PageRange) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("q", query)
	if page != nil {
		params.Set("start", strconv.Itoa(page.Start))
		params.Set("rows", strconv.Itoa(page.Rows))
	}
	return strings.TrimRight(base, "/") + "/search?" + params.Encode()
}

func cacheKey(query string, page *PageRange) string {
	if page == nil {
		return "count|" + query
	}
	return fmt.Sprintf("page|%s|%d|%d", query, page.Start, page.Rows)
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

func (c *Client) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return DefaultPageSize
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
