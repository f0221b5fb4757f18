package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedServer serves fixed pages of integer items keyed by page number
func pagedServer(t *testing.T, pages map[int][]int) (*httptest.Server, *int) {
	t.Helper()
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		items := pages[page]
		payload := make([]map[string]int, len(items))
		for i, id := range items {
			payload[i] = map[string]int{"id": id}
		}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	return server, &fetches
}

func collectIDs(t *testing.T, p *Paginator) []int {
	t.Helper()
	var ids []int
	for p.Next(context.Background()) {
		var item struct {
			ID int `json:"id"`
		}
		require.NoError(t, json.Unmarshal(p.Item(), &item))
		ids = append(ids, item.ID)
	}
	return ids
}

func TestPaginator_YieldsAllPagesInOrder(t *testing.T) {
	server, _ := pagedServer(t, map[int][]int{
		1: {1, 2},
		2: {3},
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	query := url.Values{}
	query.Set("per_page", "2")

	p := client.Paginate("products", query)
	ids := collectIDs(t, p)
	require.NoError(t, p.Err())
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestPaginator_StopsOnEmptyFirstPage(t *testing.T) {
	server, fetches := pagedServer(t, map[int][]int{})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	p := client.Paginate("products", nil)
	ids := collectIDs(t, p)
	require.NoError(t, p.Err())
	assert.Empty(t, ids)
	assert.Equal(t, 1, *fetches)
}

func TestPaginator_ShortPageTerminatesWithoutExtraFetch(t *testing.T) {
	server, fetches := pagedServer(t, map[int][]int{
		1: {1, 2, 3},
		2: {4},
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	query := url.Values{}
	query.Set("per_page", "3")

	p := client.Paginate("products", query)
	ids := collectIDs(t, p)
	require.NoError(t, p.Err())
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
	assert.Equal(t, 2, *fetches)
}

func TestPaginator_ExplicitStartPage(t *testing.T) {
	server, _ := pagedServer(t, map[int][]int{
		1: {1, 2},
		2: {3, 4},
		3: {5},
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	query := url.Values{}
	query.Set("per_page", "2")
	query.Set("page", "2")

	p := client.Paginate("products", query)
	ids := collectIDs(t, p)
	require.NoError(t, p.Err())
	assert.Equal(t, []int{3, 4, 5}, ids)
}

func TestPaginator_LoopGuard(t *testing.T) {
	// A server that always serves full pages never terminates naturally.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[{"id":1}]`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	query := url.Values{}
	query.Set("per_page", "1")

	p := client.Paginate("products", query)
	count := 0
	for p.Next(context.Background()) {
		count++
	}
	assert.ErrorIs(t, p.Err(), ErrPaginationLoopGuard)
	assert.Equal(t, MaxPages, count)

	// the guard is terminal
	assert.False(t, p.Next(context.Background()))
}

func TestPaginator_SurfacesRequestFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	p := client.Paginate("products", nil)
	assert.False(t, p.Next(context.Background()))
	require.Error(t, p.Err())
	assert.Contains(t, p.Err().Error(), "403")
}
