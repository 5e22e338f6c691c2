// Package search coordinates the dashboard's text input, debounce timer, and
// page counter. Keystrokes restart a trailing-edge debounce window; when the
// window closes on a changed term, the page resets to 1 and one fetch fires.
// Page navigation fetches immediately without touching the committed search.
//
// Every fetch carries a generation number. Responses apply only while their
// generation is still the latest, which closes the race where a slow,
// superseded fetch overwrites the result of a newer one.
package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet window after the last keystroke.
const DefaultDebounce = 300 * time.Millisecond

// Request describes one fetch the coordinator decided to run.
type Request struct {
	Page       int
	Search     string
	Generation uint64
}

// FetchFunc runs the actual list call. It is invoked on the coordinator's
// timer goroutine (debounce) or the caller's goroutine (page change, refresh)
// and should hand off to its own goroutine if it blocks.
type FetchFunc func(req Request)

// Coordinator is the debounced search / pagination state machine.
// Safe for concurrent use.
type Coordinator struct {
	mu        sync.Mutex
	page      int
	committed string
	raw       string
	timer     *time.Timer

	delay      time.Duration
	fetch      FetchFunc
	generation uint64
}

// New creates a coordinator starting at page 1 with an empty search.
// A non-positive delay falls back to DefaultDebounce.
func New(delay time.Duration, fetch FetchFunc) *Coordinator {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Coordinator{
		page:  1,
		delay: delay,
		fetch: fetch,
	}
}

// Input records a keystroke. The debounce timer restarts; nothing fetches
// until the input has been quiet for the full window.
func (c *Coordinator) Input(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.raw = text
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.settle)
}

// settle commits the raw input once the window closes. An unchanged term
// fetches nothing; a changed term resets to page 1 and fetches once.
func (c *Coordinator) settle() {
	c.mu.Lock()
	if c.raw == c.committed {
		c.mu.Unlock()
		return
	}
	c.committed = c.raw
	c.page = 1
	req := c.nextRequestLocked()
	c.mu.Unlock()

	c.fetch(req)
}

// SetPage navigates to a page and fetches with the committed search term.
// Pages below 1 clamp to 1.
func (c *Coordinator) SetPage(page int) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.page = page
	req := c.nextRequestLocked()
	c.mu.Unlock()

	c.fetch(req)
}

// Refresh fetches the current page and committed search, e.g. on first load
// or after a successful create/update.
func (c *Coordinator) Refresh() {
	c.mu.Lock()
	req := c.nextRequestLocked()
	c.mu.Unlock()

	c.fetch(req)
}

// Latest reports whether the given generation is still the newest fetch.
// Callers must check this before committing a fetch result to visible state.
func (c *Coordinator) Latest(generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return generation == c.generation
}

// Page returns the current page.
func (c *Coordinator) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Search returns the committed (debounced) search term.
func (c *Coordinator) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed
}

// Stop cancels a pending debounce window.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) nextRequestLocked() Request {
	c.generation++
	return Request{
		Page:       c.page,
		Search:     c.committed,
		Generation: c.generation,
	}
}
