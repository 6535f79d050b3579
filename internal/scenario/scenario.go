// Package scenario describes the mocked backend of one storefront test: which
// URL patterns are intercepted, what each must receive and what it answers.
package scenario

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jwtpizza/pizza-e2e/internal/contract"
	"github.com/jwtpizza/pizza-e2e/internal/jsonmatch"
	"github.com/jwtpizza/pizza-e2e/internal/urlglob"
)

// Response kinds.
const (
	KindStatic = "static"
	KindVerify = "verify"
)

// ErrNoRoute is returned by Match when no route pattern matches the URL.
var ErrNoRoute = errors.New("no route matches")

// MethodError is returned when a pattern matches but the method does not.
type MethodError struct {
	URL     string
	Method  string
	Allowed []string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("unexpected %s %s (allowed: %s)", e.Method, e.URL, strings.Join(e.Allowed, ", "))
}

// Expectation constrains the request a route receives.
type Expectation struct {
	// Body must be a subset of the request's JSON body; nil skips the check.
	Body any `yaml:"body,omitempty" json:"body,omitempty"`
}

// Response is what a route answers.
type Response struct {
	Status int `yaml:"status,omitempty" json:"status,omitempty"`
	Body   any `yaml:"body,omitempty" json:"body,omitempty"`
	// SignField, when set and a signer is configured, is replaced by a token
	// signed over the rest of the body.
	SignField string `yaml:"signField,omitempty" json:"signField,omitempty"`
	Kind      string `yaml:"kind,omitempty" json:"kind,omitempty"`
}

// Route is one intercepted endpoint.
type Route struct {
	Name     string        `yaml:"name" json:"name"`
	Pattern  string        `yaml:"pattern" json:"pattern"`
	Method   string        `yaml:"method" json:"method"`
	Contract contract.Kind `yaml:"contract,omitempty" json:"contract,omitempty"`
	Required bool          `yaml:"required,omitempty" json:"required,omitempty"`
	Expect   Expectation   `yaml:"expect,omitempty" json:"expect,omitempty"`
	Response Response      `yaml:"response" json:"response"`

	glob *urlglob.Glob
}

// Scenario groups the routes of one test.
type Scenario struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Routes      []Route `yaml:"routes" json:"routes"`
}

func route(method, name, pattern string, body any) Route {
	return Route{Name: name, Pattern: pattern, Method: method, Response: Response{Body: body}}
}

// OnGet declares a GET route answering body.
func OnGet(name, pattern string, body any) Route { return route(http.MethodGet, name, pattern, body) }

// OnPut declares a PUT route answering body.
func OnPut(name, pattern string, body any) Route { return route(http.MethodPut, name, pattern, body) }

// OnPost declares a POST route answering body.
func OnPost(name, pattern string, body any) Route { return route(http.MethodPost, name, pattern, body) }

// OnDelete declares a DELETE route answering body.
func OnDelete(name, pattern string, body any) Route {
	return route(http.MethodDelete, name, pattern, body)
}

// Expecting requires the request body to contain body.
func (r Route) Expecting(body any) Route {
	r.Expect.Body = body
	return r
}

// WithStatus overrides the response status.
func (r Route) WithStatus(code int) Route {
	r.Response.Status = code
	return r
}

// Must marks the route as one the test has to hit.
func (r Route) Must() Route {
	r.Required = true
	return r
}

// Signed replaces field in the response with a signed token.
func (r Route) Signed(field string) Route {
	r.Response.SignField = field
	return r
}

// Verifying turns the route into an order token verifier.
func (r Route) Verifying() Route {
	r.Response.Kind = KindVerify
	r.Response.Body = nil
	return r
}

// As declares the contract the response body must satisfy.
func (r Route) As(kind contract.Kind) Route {
	r.Contract = kind
	return r
}

// Status returns the effective response status.
func (r *Route) Status() int {
	if r.Response.Status == 0 {
		return http.StatusOK
	}
	return r.Response.Status
}

func (r *Route) kind() string {
	if r.Response.Kind == "" {
		return KindStatic
	}
	return r.Response.Kind
}

// New builds and validates a scenario.
func New(name string, routes ...Route) (*Scenario, error) {
	s := &Scenario{Name: name, Routes: routes}
	if err := s.prepare(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is New that panics on error.
func MustNew(name string, routes ...Route) *Scenario {
	s, err := New(name, routes...)
	if err != nil {
		panic(err)
	}
	return s
}

// With returns a copy where routes sharing a pattern and method with one of
// routes are replaced and the rest are appended.
func (s *Scenario) With(routes ...Route) (*Scenario, error) {
	out := s.clone()
	for _, nr := range routes {
		replaced := false
		for i := range out.Routes {
			if out.Routes[i].Pattern == nr.Pattern && strings.EqualFold(out.Routes[i].Method, nr.Method) {
				out.Routes[i] = nr
				replaced = true
				break
			}
		}
		if !replaced {
			out.Routes = append(out.Routes, nr)
		}
	}
	if err := out.prepare(); err != nil {
		return nil, err
	}
	return out, nil
}

// Without returns a copy without the named routes.
func (s *Scenario) Without(names ...string) *Scenario {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Scenario{Name: s.Name, Description: s.Description}
	for _, r := range s.Routes {
		if !drop[r.Name] {
			out.Routes = append(out.Routes, r.clone())
		}
	}
	return out
}

// clone copies s down to the bodies, so a caller can edit the result
// without touching the catalog.
func (s *Scenario) clone() *Scenario {
	out := &Scenario{Name: s.Name, Description: s.Description}
	out.Routes = make([]Route, len(s.Routes))
	for i, r := range s.Routes {
		out.Routes[i] = r.clone()
	}
	return out
}

func (r Route) clone() Route {
	r.Expect.Body = copyBody(r.Expect.Body)
	r.Response.Body = copyBody(r.Response.Body)
	return r
}

// copyBody deep-copies a body already in JSON form.
func copyBody(v any) any {
	if v == nil {
		return nil
	}
	out, err := jsonmatch.Normalize(v)
	if err != nil {
		return v
	}
	return out
}

// prepare normalizes bodies into their JSON form, compiles patterns and
// validates the result.
func (s *Scenario) prepare() error {
	for i := range s.Routes {
		r := &s.Routes[i]
		r.Method = strings.ToUpper(r.Method)
		if r.Expect.Body != nil {
			b, err := jsonmatch.Normalize(r.Expect.Body)
			if err != nil {
				return fmt.Errorf("route %s: expect body: %w", r.Name, err)
			}
			r.Expect.Body = b
		}
		if r.Response.Body != nil {
			b, err := jsonmatch.Normalize(r.Response.Body)
			if err != nil {
				return fmt.Errorf("route %s: response body: %w", r.Name, err)
			}
			r.Response.Body = b
		}
	}
	return s.Validate()
}

var allowedMethods = map[string]bool{
	http.MethodGet: true, http.MethodPut: true, http.MethodPost: true,
	http.MethodDelete: true, http.MethodPatch: true,
}

// Validate checks names, patterns, methods and response contracts.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario has no name")
	}
	var errs []error
	seen := make(map[string]bool)
	for i := range s.Routes {
		r := &s.Routes[i]
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("route %d has no name", i))
			continue
		}
		if seen[r.Name] {
			errs = append(errs, fmt.Errorf("duplicate route name %q", r.Name))
		}
		seen[r.Name] = true
		if !allowedMethods[r.Method] {
			errs = append(errs, fmt.Errorf("route %s: unsupported method %q", r.Name, r.Method))
		}
		g, err := urlglob.Compile(r.Pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("route %s: %w", r.Name, err))
		} else {
			r.glob = g
		}
		switch r.kind() {
		case KindStatic:
			if r.Response.Body == nil {
				errs = append(errs, fmt.Errorf("route %s: static response needs a body", r.Name))
			} else if r.Contract != "" {
				if err := contract.ValidateValue(r.Contract, r.Response.Body); err != nil {
					errs = append(errs, fmt.Errorf("route %s: %w", r.Name, err))
				}
			}
			if r.Response.SignField != "" {
				if _, ok := r.Response.Body.(map[string]any); !ok {
					errs = append(errs, fmt.Errorf("route %s: signField needs an object body", r.Name))
				}
			}
		case KindVerify:
		default:
			errs = append(errs, fmt.Errorf("route %s: unknown response kind %q", r.Name, r.Response.Kind))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario %s: %w", s.Name, errors.Join(errs...))
	}
	return nil
}

// Patterns returns the distinct route patterns in declaration order.
func (s *Scenario) Patterns() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range s.Routes {
		if !seen[r.Pattern] {
			seen[r.Pattern] = true
			out = append(out, r.Pattern)
		}
	}
	return out
}

// ForPattern returns the routes declared for pattern.
func (s *Scenario) ForPattern(pattern string) []Route {
	var out []Route
	for _, r := range s.Routes {
		if r.Pattern == pattern {
			out = append(out, r)
		}
	}
	return out
}

// Route returns the named route.
func (s *Scenario) Route(name string) (*Route, bool) {
	for i := range s.Routes {
		if s.Routes[i].Name == name {
			return &s.Routes[i], true
		}
	}
	return nil, false
}

// MatchPattern picks the route for method among those declared for pattern.
func (s *Scenario) MatchPattern(pattern, method, url string) (*Route, error) {
	var allowed []string
	for i := range s.Routes {
		r := &s.Routes[i]
		if r.Pattern != pattern {
			continue
		}
		if r.Method == strings.ToUpper(method) {
			return r, nil
		}
		allowed = append(allowed, r.Method)
	}
	if len(allowed) == 0 {
		return nil, ErrNoRoute
	}
	return nil, &MethodError{URL: url, Method: method, Allowed: allowed}
}

// Match finds the first route whose pattern matches url and whose method
// equals method.
func (s *Scenario) Match(method, url string) (*Route, error) {
	var allowed []string
	for i := range s.Routes {
		r := &s.Routes[i]
		g := r.glob
		if g == nil {
			var err error
			if g, err = urlglob.Compile(r.Pattern); err != nil {
				continue
			}
		}
		if !g.Match(url) {
			continue
		}
		if r.Method == strings.ToUpper(method) {
			return r, nil
		}
		allowed = append(allowed, r.Method)
	}
	if len(allowed) == 0 {
		return nil, ErrNoRoute
	}
	return nil, &MethodError{URL: url, Method: method, Allowed: allowed}
}
