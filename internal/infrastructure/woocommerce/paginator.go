package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

const (
	// DefaultPerPage is the page size requested from the store
	DefaultPerPage = 100
	// MaxPages is the hard iteration ceiling; a store that keeps serving
	// full pages past it is misbehaving and the walk is aborted
	MaxPages = 10_000
)

// ErrPaginationLoopGuard indicates the page ceiling was hit. Fatal and
// non-retryable; the caller must not resume the walk.
var ErrPaginationLoopGuard = errors.New("woocommerce: pagination exceeded maximum page count")

// Paginator walks a paged collection one item at a time, fetching pages
// lazily. Strictly sequential and ordered by page number. Restartable (a
// fresh Paginate call starts over) but not resumable after a failure.
//
// Usage mirrors bufio.Scanner:
//
//	p := client.Paginate("products", nil)
//	for p.Next(ctx) {
//	    item := p.Item()
//	    ...
//	}
//	if err := p.Err(); err != nil { ... }
type Paginator struct {
	client  *Client
	path    string
	query   url.Values
	perPage int

	page    int
	pages   int
	items   []json.RawMessage
	current json.RawMessage
	idx     int
	done    bool
	err     error
}

// Paginate prepares a lazy walk over the collection at path. The query may
// pin "per_page" and a starting "page"; otherwise per_page defaults to 100
// and the walk starts at page 1.
func (c *Client) Paginate(path string, query url.Values) *Paginator {
	perPage := DefaultPerPage
	page := 1
	cleaned := url.Values{}
	for k, vs := range query {
		switch k {
		case "per_page":
			if n, err := strconv.Atoi(query.Get(k)); err == nil && n > 0 {
				perPage = n
			}
		case "page":
			if n, err := strconv.Atoi(query.Get(k)); err == nil && n > 0 {
				page = n
			}
		default:
			for _, v := range vs {
				cleaned.Add(k, v)
			}
		}
	}
	return &Paginator{
		client:  c,
		path:    path,
		query:   cleaned,
		perPage: perPage,
		page:    page,
	}
}

// Next advances to the next item, fetching the next page when the buffered
// one is exhausted. Returns false when the walk terminates or fails; Err
// distinguishes the two.
func (p *Paginator) Next(ctx context.Context) bool {
	if p.err != nil {
		return false
	}
	if p.idx < len(p.items) {
		p.current = p.items[p.idx]
		p.idx++
		return true
	}
	if p.done {
		return false
	}
	if err := p.fetchPage(ctx); err != nil {
		p.err = err
		return false
	}
	if len(p.items) == 0 {
		return false
	}
	p.current = p.items[0]
	p.idx = 1
	return true
}

// Item returns the raw JSON of the item Next advanced to
func (p *Paginator) Item() json.RawMessage {
	return p.current
}

// Err returns the error that terminated the walk, if any
func (p *Paginator) Err() error {
	return p.err
}

// fetchPage retrieves the next page and records whether it was the last one:
// a short or empty page means the collection is exhausted.
func (p *Paginator) fetchPage(ctx context.Context) error {
	if p.pages >= MaxPages {
		return ErrPaginationLoopGuard
	}

	query := url.Values{}
	for k, vs := range p.query {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("per_page", strconv.Itoa(p.perPage))
	query.Set("page", strconv.Itoa(p.page))

	resp, err := p.client.Get(ctx, p.path, query)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("woocommerce: pagination request failed with status %d", resp.Status)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		return fmt.Errorf("woocommerce: failed to decode page %d: %w", p.page, err)
	}

	p.items = items
	p.idx = 0
	p.page++
	p.pages++
	if len(items) < p.perPage {
		p.done = true
	}
	return nil
}
