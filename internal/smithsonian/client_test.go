package smithsonian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves rowCount synthetic rows per query and records requests.
type fakeAPI struct {
	rowCount int
	failAt   int // start offset that returns 500, -1 for none

	mu       sync.Mutex
	requests []string
	hits     atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	q := r.URL.Query()
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.RawQuery)
	f.mu.Unlock()

	if r.URL.Path != "/search" || q.Get("api_key") != "test-key" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	rows := []map[string]any{}
	if q.Has("start") {
		start, _ := strconv.Atoi(q.Get("start"))
		n, _ := strconv.Atoi(q.Get("rows"))
		if start == f.failAt {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		for i := start; i < start+n && i < f.rowCount; i++ {
			rows = append(rows, map[string]any{"id": fmt.Sprintf("%s-%d", q.Get("q"), i), "title": "row"})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"response": map[string]any{"rowCount": f.rowCount, "rows": rows},
	})
}

func newClient(srv *httptest.Server) *Client {
	return &Client{BaseURL: srv.URL, APIKey: "test-key", PageSize: 10, HTTPClient: srv.Client()}
}

func TestPlan(t *testing.T) {
	assert.Equal(t, []PageRange{{0, 1000}, {1000, 1000}, {2000, 345}}, Plan(2345, 1000))
	assert.Equal(t, []PageRange{{0, 1000}}, Plan(1000, 1000))
	assert.Equal(t, []PageRange{{0, 7}}, Plan(7, 1000))
	assert.Nil(t, Plan(0, 1000))
	assert.Nil(t, Plan(10, 0))
}

func TestSearchMergesPagesInOrder(t *testing.T) {
	api := &fakeAPI{rowCount: 25, failAt: -1}
	srv := httptest.NewServer(api)
	defer srv.Close()

	rows, err := newClient(srv).Search(context.Background(), "q1")
	require.NoError(t, err)
	require.Len(t, rows, 25)
	for i, r := range rows {
		assert.Equal(t, fmt.Sprintf("q1-%d", i), r.ID)
	}
	// one count request plus three pages
	assert.Equal(t, int32(4), api.hits.Load())
	assert.Contains(t, api.requests, "api_key=test-key&q=q1&rows=5&start=20")
}

func TestSearchTreatsFailedPageAsEmpty(t *testing.T) {
	api := &fakeAPI{rowCount: 25, failAt: 10}
	srv := httptest.NewServer(api)
	defer srv.Close()

	rows, err := newClient(srv).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, rows, 15)
	assert.Equal(t, "q-20", rows[10].ID)
}

func TestSearchCountFailureIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	rows, err := newClient(srv).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSearchHonorsCancellation(t *testing.T) {
	api := &fakeAPI{rowCount: 5, failAt: -1}
	srv := httptest.NewServer(api)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newClient(srv).Search(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchAll(t *testing.T) {
	api := &fakeAPI{rowCount: 3, failAt: -1}
	srv := httptest.NewServer(api)
	defer srv.Close()

	rows, err := newClient(srv).SearchAll(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "a-0", rows[0].ID)
	assert.Equal(t, "b-2", rows[5].ID)
}

func TestSearchAllRunsQueriesConcurrently(t *testing.T) {
	const queries = 3
	var (
		mu      sync.Mutex
		counted int
	)
	allCounted := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rowCount := 1
		rows := []map[string]any{}
		if q.Has("start") {
			rows = append(rows, map[string]any{"id": q.Get("q"), "title": "row"})
		} else {
			// each count waits until every query has issued its own
			mu.Lock()
			counted++
			if counted == queries {
				close(allCounted)
			}
			mu.Unlock()
			select {
			case <-allCounted:
			case <-time.After(2 * time.Second):
				rowCount = 0
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{"rowCount": rowCount, "rows": rows},
		})
	}))
	defer srv.Close()

	rows, err := newClient(srv).SearchAll(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, rows, queries)
	assert.Equal(t, []string{"a", "b", "c"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestSearchAllReturnsCancellation(t *testing.T) {
	api := &fakeAPI{rowCount: 3, failAt: -1}
	srv := httptest.NewServer(api)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newClient(srv).SearchAll(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchUsesCache(t *testing.T) {
	api := &fakeAPI{rowCount: 12, failAt: -1}
	srv := httptest.NewServer(api)
	defer srv.Close()

	cache, err := OpenBoltCache(filepath.Join(t.TempDir(), "pages.db"), 0)
	require.NoError(t, err)
	defer cache.Close()

	c := newClient(srv)
	c.Cache = cache

	first, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	hits := api.hits.Load()

	second, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, hits, api.hits.Load(), "second search should be served from cache")
	assert.Equal(t, first, second)

	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSearchURL(t *testing.T) {
	c := &Client{BaseURL: "https://example.test/v1/", APIKey: "k"}
	assert.Equal(t,
		"https://example.test/v1/search?api_key=k&q=unit_code%3A%22NPM%22&rows=10&start=20",
		c.searchURL(`unit_code:"NPM"`, &PageRange{Start: 20, Rows: 10}))
	assert.Equal(t, DefaultBaseURL+"/search?api_key=&q=x", (&Client{}).searchURL("x", nil))
}
