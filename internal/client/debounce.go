package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/medmitra/api/internal/domain/patient"
)

// DefaultSearchWindow is how long typing must pause before a search fires.
const DefaultSearchWindow = 500 * time.Millisecond

// SearchFunc performs one patient search round trip.
type SearchFunc func(ctx context.Context, query string) ([]patient.Patient, error)

// SearchResult is one delivery on the debouncer's result channel.
type SearchResult struct {
	Query    string
	Patients []patient.Patient
	Err      error
}

// DebouncedSearch coalesces a stream of keystrokes into at most one search
// per quiet window. Only the latest query in a window reaches the server;
// queries under the minimum length clear the results without a round trip.
type DebouncedSearch struct {
	fn      SearchFunc
	window  time.Duration
	results chan SearchResult

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

func NewDebouncedSearch(fn SearchFunc, window time.Duration) *DebouncedSearch {
	if window <= 0 {
		window = DefaultSearchWindow
	}
	return &DebouncedSearch{
		fn:      fn,
		window:  window,
		results: make(chan SearchResult, 8),
	}
}

// Results delivers search outcomes in the order they complete.
func (d *DebouncedSearch) Results() <-chan SearchResult {
	return d.results
}

// Query records a keystroke. The pending search, if any, is rescheduled so
// that only the last query of a burst executes.
func (d *DebouncedSearch) Query(ctx context.Context, q string) {
	q = strings.TrimSpace(q)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len([]rune(q)) < patient.MinSearchLength {
		d.deliverLocked(SearchResult{Query: q, Patients: []patient.Patient{}})
		return
	}

	d.timer = time.AfterFunc(d.window, func() {
		patients, err := d.fn(ctx, q)

		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed {
			return
		}
		d.deliverLocked(SearchResult{Query: q, Patients: patients, Err: err})
	})
}

// Close cancels any pending search and closes the result channel.
func (d *DebouncedSearch) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	close(d.results)
}

// deliverLocked sends without blocking; when the consumer lags, the oldest
// buffered result is dropped in favor of the new one.
func (d *DebouncedSearch) deliverLocked(r SearchResult) {
	for {
		select {
		case d.results <- r:
			return
		default:
			select {
			case <-d.results:
			default:
			}
		}
	}
}
