// Package intercept installs a scenario into a Playwright page or browser
// context so the storefront talks to canned JSON instead of a backend.
package intercept

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"

	"github.com/jwtpizza/pizza-e2e/internal/scenario"
)

// RouteFunc registers handler for a URL glob. Page.Route and
// BrowserContext.Route both fit through ForPage and ForContext.
type RouteFunc func(pattern string, handler func(playwright.Route)) error

// ForPage intercepts on a single page.
func ForPage(page playwright.Page) RouteFunc {
	return func(pattern string, handler func(playwright.Route)) error {
		return page.Route(pattern, handler)
	}
}

// ForContext intercepts on every page of a browser context, including popups.
func ForContext(ctx playwright.BrowserContext) RouteFunc {
	return func(pattern string, handler func(playwright.Route)) error {
		return ctx.Route(pattern, handler)
	}
}

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization",
}

type options struct {
	signer   scenario.Signer
	recorder *scenario.Recorder
	verbose  bool
}

// Option configures Install.
type Option func(*options)

// WithSigner signs order tokens and answers verify routes.
func WithSigner(s scenario.Signer) Option {
	return func(o *options) { o.signer = s }
}

// WithRecorder records into rec instead of a fresh recorder.
func WithRecorder(rec *scenario.Recorder) Option {
	return func(o *options) { o.recorder = rec }
}

// Verbose logs every intercepted request.
func Verbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

// Install registers one handler per distinct pattern of sc and returns the
// recorder the handlers write to.
func Install(route RouteFunc, sc *scenario.Scenario, opts ...Option) (*scenario.Recorder, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.recorder == nil {
		o.recorder = scenario.NewRecorder()
	}
	rsp := &scenario.Responder{Signer: o.signer, Recorder: o.recorder}

	for _, pattern := range sc.Patterns() {
		if err := route(pattern, Handler(sc, pattern, rsp, o.verbose)); err != nil {
			return nil, fmt.Errorf("failed to intercept %s: %w", pattern, err)
		}
	}
	return o.recorder, nil
}

// Handler answers requests routed to pattern from the routes sc declares
// for it.
func Handler(sc *scenario.Scenario, pattern string, rsp *scenario.Responder, verbose bool) func(playwright.Route) {
	return func(rt playwright.Route) {
		req := rt.Request()
		method, url := req.Method(), req.URL()
		var body []byte
		if data, err := req.PostData(); err == nil {
			body = []byte(data)
		}

		if method == http.MethodOptions {
			if err := rt.Fulfill(playwright.RouteFulfillOptions{
				Status:  playwright.Int(http.StatusNoContent),
				Headers: corsHeaders,
			}); err != nil {
				log.Printf("[intercept] preflight %s failed: %v", url, err)
			}
			return
		}

		match, err := sc.MatchPattern(pattern, method, url)
		if errors.Is(err, scenario.ErrNoRoute) {
			if ferr := rt.Fallback(); ferr != nil {
				log.Printf("[intercept] fallback %s %s failed: %v", method, url, ferr)
			}
			return
		}

		reply := rsp.Answer(match, err, scenario.Request{Method: method, URL: url, Body: body})
		if verbose {
			log.Printf("[intercept] %s %s -> %d", method, url, reply.Status)
		}
		if reply.Violation != nil {
			log.Printf("[intercept] %s %s: %v", method, url, reply.Violation)
		}
		if err := rt.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(reply.Status),
			ContentType: playwright.String("application/json"),
			Headers:     corsHeaders,
			Body:        string(reply.Body),
		}); err != nil {
			log.Printf("[intercept] fulfill %s %s failed: %v", method, url, err)
		}
	}
}

// AssertClean fails t when a route saw an unexpected request or a required
// route was never called. Returns true when clean.
func AssertClean(t testing.TB, rec *scenario.Recorder, sc *scenario.Scenario) bool {
	t.Helper()
	ok := true
	for _, v := range rec.Violations() {
		ok = assert.Fail(t, "mocked backend expectation violated", v.Error()) && ok
	}
	if unmet := rec.Unmet(sc); len(unmet) > 0 {
		ok = assert.Fail(t, "required routes never called", "scenario %s: %v", sc.Name, unmet) && ok
	}
	return ok
}
