package arp

import (
	"context"
	"sync"
	"time"

	"arpscout/internal/core/apperror"
)

// ErrNavigationInFlight is returned when a search or page move arrives while
// another one is still running on the same Pager.
var ErrNavigationInFlight = apperror.NewConflict("a search is already in progress")

// Searcher loads one page of results.
type Searcher interface {
	Search(ctx context.Context, filters SearchFilters, opts SearchOptions) (*SearchPage, error)
}

// PageState is the navigation state exposed to clients.
type PageState struct {
	Page         int  `json:"page"`
	PageSize     int  `json:"pageSize"`
	TotalPages   int  `json:"totalPages"`
	TotalRecords int  `json:"totalRecords"`
	HasPrevious  bool `json:"hasPrevious"`
	HasNext      bool `json:"hasNext"`
}

// Pager keeps the filters of the last search and moves between its pages.
// Only one request runs at a time; state changes only when a request succeeds.
type Pager struct {
	searcher Searcher
	now      func() time.Time

	mu       sync.Mutex
	inFlight bool
	loaded   bool
	filters  SearchFilters
	opts     SearchOptions
	state    PageState
	last     *SearchPage
}

// NewPager creates an empty Pager.
func NewPager(searcher Searcher) *Pager {
	return &Pager{searcher: searcher, now: time.Now}
}

// Search runs a new search starting at page 1 and replaces the stored filters.
func (p *Pager) Search(ctx context.Context, filters SearchFilters, opts SearchOptions) (*SearchPage, error) {
	filters.Page = 1
	filters.Normalize(p.now())

	if err := p.begin(); err != nil {
		return nil, err
	}
	page, err := p.searcher.Search(ctx, filters, opts)
	p.finish(filters, opts, page, err)
	return page, err
}

// GoTo loads page using the stored filters. It does nothing and returns
// moved=false when no search ran yet, when page < 1, or when page is beyond
// max(totalPages, 1).
func (p *Pager) GoTo(ctx context.Context, page int) (*SearchPage, bool, error) {
	p.mu.Lock()
	if !p.loaded || page < 1 || page > max(p.state.TotalPages, 1) {
		p.mu.Unlock()
		return nil, false, nil
	}
	if p.inFlight {
		p.mu.Unlock()
		return nil, false, ErrNavigationInFlight
	}
	p.inFlight = true
	filters, opts := p.filters, p.opts
	p.mu.Unlock()

	filters.Page = page
	result, err := p.searcher.Search(ctx, filters, opts)
	p.finish(filters, opts, result, err)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

// Next moves one page forward.
func (p *Pager) Next(ctx context.Context) (*SearchPage, bool, error) {
	return p.GoTo(ctx, p.State().Page+1)
}

// Previous moves one page back.
func (p *Pager) Previous(ctx context.Context) (*SearchPage, bool, error) {
	return p.GoTo(ctx, p.State().Page-1)
}

// State returns a snapshot of the navigation state.
func (p *Pager) State() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Last returns the most recently loaded page, or nil.
func (p *Pager) Last() *SearchPage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Pager) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return ErrNavigationInFlight
	}
	p.inFlight = true
	return nil
}

func (p *Pager) finish(filters SearchFilters, opts SearchOptions, page *SearchPage, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if err != nil || page == nil {
		return
	}

	p.loaded = true
	p.filters = filters
	p.opts = opts
	p.last = page

	current := page.Page
	if current < 1 {
		current = filters.Page
	}
	p.state = PageState{
		Page:         current,
		PageSize:     filters.PageSize,
		TotalPages:   page.TotalPages,
		TotalRecords: page.TotalRecords,
		HasPrevious:  current > 1,
		HasNext:      current < page.TotalPages,
	}
}
