package scenario

import (
	"errors"
	"sync"
	"time"
)

// Hit is one request seen by an intercepted route.
type Hit struct {
	Route  string    `json:"route,omitempty"`
	Method string    `json:"method"`
	URL    string    `json:"url"`
	Body   string    `json:"body,omitempty"`
	Status int       `json:"status"`
	At     time.Time `json:"at"`
}

// Recorder collects hits and expectation violations. Route handlers run on
// the browser driver's goroutines, so every method is safe for concurrent use.
type Recorder struct {
	mu         sync.Mutex
	calls      []Hit
	misses     []Hit
	violations []error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record logs a request served by a route.
func (r *Recorder) Record(h Hit) {
	if h.At.IsZero() {
		h.At = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, h)
}

// Miss logs a request no route answered.
func (r *Recorder) Miss(h Hit) {
	if h.At.IsZero() {
		h.At = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses = append(r.misses, h)
}

// Violate logs a broken expectation.
func (r *Recorder) Violate(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, err)
}

// Hits counts the requests served by the named route.
func (r *Recorder) Hits(route string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.calls {
		if h.Route == route {
			n++
		}
	}
	return n
}

// Calls returns a copy of the served requests in arrival order.
func (r *Recorder) Calls() []Hit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Hit(nil), r.calls...)
}

// Misses returns a copy of the requests no route answered.
func (r *Recorder) Misses() []Hit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Hit(nil), r.misses...)
}

// Violations returns a copy of the broken expectations.
func (r *Recorder) Violations() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.violations...)
}

// Err joins every violation, nil when there are none.
func (r *Recorder) Err() error {
	return errors.Join(r.Violations()...)
}

// Unmet lists required routes of sc that were never hit.
func (r *Recorder) Unmet(sc *Scenario) []string {
	var out []string
	for _, rt := range sc.Routes {
		if rt.Required && r.Hits(rt.Name) == 0 {
			out = append(out, rt.Name)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.misses = nil
	r.violations = nil
}
