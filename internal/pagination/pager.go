// Package pagination manages forward/backward paging state for
// cursor-based listing endpoints.
package pagination

import "mcpdock/pkg/logging"

// InvalidateFunc is called on Reset so the owner can drop cached pages.
type InvalidateFunc func()

// Pager tracks the position inside a cursor-paginated listing. Pages are
// 1-based for display; cursors are recorded per page so going backwards
// never re-fetches a cursor value. A changed filter or search term must go
// through Reset, never through direct page mutation.
type Pager struct {
	currentPage int
	cursors     []string
	hasNextPage bool
	invalidate  InvalidateFunc
}

// NewPager creates a pager positioned on page 1 with an empty cursor
// history. The invalidate callback may be nil.
func NewPager(invalidate InvalidateFunc) *Pager {
	return &Pager{
		currentPage: 1,
		cursors:     []string{""},
		invalidate:  invalidate,
	}
}

// CurrentPage returns the 1-based page number.
func (p *Pager) CurrentPage() int {
	return p.currentPage
}

// Cursor returns the cursor for the current page ("" on page 1).
func (p *Pager) Cursor() string {
	idx := p.currentPage - 1
	if idx < 0 || idx >= len(p.cursors) {
		return ""
	}
	return p.cursors[idx]
}

// HasNextPage reports whether the listing advertised a further page.
func (p *Pager) HasNextPage() bool {
	return p.hasNextPage
}

// SetHasNextPage records whether the just-fetched page advertised a
// follow-up cursor.
func (p *Pager) SetHasNextPage(has bool) {
	p.hasNextPage = has
}

// GoToNext advances to the next page using the given cursor. An empty
// cursor is a no-op: the pager never issues a fetch with an undefined
// cursor. A cursor already recorded for the next page is not overwritten,
// so a page is never re-fetched with a stale token.
func (p *Pager) GoToNext(cursor string) {
	if cursor == "" {
		return
	}
	if len(p.cursors) <= p.currentPage {
		p.cursors = append(p.cursors, cursor)
	}
	p.currentPage++
}

// GoToPrevious steps back one page. It is a no-op on page 1 and relies on
// the recorded cursor history; cursor values are never re-fetched.
func (p *Pager) GoToPrevious() {
	if p.currentPage <= 1 {
		return
	}
	p.currentPage--
}

// Reset returns to page 1, clears the cursor history and the next-page
// flag, and invokes the cache-invalidation callback.
func (p *Pager) Reset() {
	p.currentPage = 1
	p.cursors = []string{""}
	p.hasNextPage = false
	if p.invalidate != nil {
		p.invalidate()
	}
	logging.Debug("Pagination", "Pager reset to page 1")
}
