package intercept

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwtpizza/pizza-e2e/internal/scenario"
)

type fakeRequest struct {
	playwright.Request
	method, url, body string
}

func (r *fakeRequest) Method() string            { return r.method }
func (r *fakeRequest) URL() string               { return r.url }
func (r *fakeRequest) PostData() (string, error) { return r.body, nil }

type fakeRoute struct {
	playwright.Route
	req       *fakeRequest
	fulfilled *playwright.RouteFulfillOptions
	fellBack  bool
}

func (r *fakeRoute) Request() playwright.Request { return r.req }

func (r *fakeRoute) Fulfill(options ...playwright.RouteFulfillOptions) error {
	if len(options) > 0 {
		r.fulfilled = &options[0]
	}
	return nil
}

func (r *fakeRoute) Fallback(options ...playwright.RouteFallbackOptions) error {
	r.fellBack = true
	return nil
}

// browser records registered handlers the way BrowserContext.Route would.
type browser struct {
	handlers map[string]func(playwright.Route)
	fail     bool
}

func (b *browser) route(pattern string, handler func(playwright.Route)) error {
	if b.fail {
		return errors.New("target closed")
	}
	if b.handlers == nil {
		b.handlers = make(map[string]func(playwright.Route))
	}
	b.handlers[pattern] = handler
	return nil
}

func (b *browser) send(t *testing.T, pattern, method, url, body string) *fakeRoute {
	t.Helper()
	h, ok := b.handlers[pattern]
	require.True(t, ok, "no handler for %s", pattern)
	rt := &fakeRoute{req: &fakeRequest{method: method, url: url, body: body}}
	h(rt)
	return rt
}

func decode(t *testing.T, rt *fakeRoute) map[string]any {
	t.Helper()
	require.NotNil(t, rt.fulfilled)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(rt.fulfilled.Body.(string)), &out))
	return out
}

func TestInstallRegistersEachPatternOnce(t *testing.T) {
	b := &browser{}
	sc := scenario.MustGet("login-logout")

	rec, err := Install(b.route, sc)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Len(t, b.handlers, 2)
	assert.Contains(t, b.handlers, "*/**/api/auth")
}

func TestInstallPropagatesRouteError(t *testing.T) {
	_, err := Install((&browser{fail: true}).route, scenario.MustGet("home"))
	assert.ErrorContains(t, err, "target closed")
}

func TestPurchaseFlow(t *testing.T) {
	b := &browser{}
	sc := scenario.MustGet("purchase-with-login")
	rec, err := Install(b.route, sc, Verbose(true))
	require.NoError(t, err)

	rt := b.send(t, "*/**/api/order/menu", http.MethodGet, "http://localhost:3000/api/order/menu", "")
	assert.Equal(t, http.StatusOK, *rt.fulfilled.Status)
	assert.Equal(t, "application/json", *rt.fulfilled.ContentType)

	rt = b.send(t, "*/**/api/auth", http.MethodPut, "http://localhost:3000/api/auth", `{"email":"d@jwt.com","password":"a"}`)
	assert.Equal(t, "abcdef", decode(t, rt)["token"])

	rt = b.send(t, "*/**/api/order", http.MethodPost, "http://localhost:3000/api/order",
		`{"items":[{"menuId":1,"description":"Veggie","price":0.0038},{"menuId":2,"description":"Pepperoni","price":0.0042}],"storeId":"4","franchiseId":2}`)
	order := decode(t, rt)["order"].(map[string]any)
	assert.Equal(t, float64(23), order["id"])

	assert.True(t, AssertClean(t, rec, sc))
}

func TestWrongMethodIsViolation(t *testing.T) {
	b := &browser{}
	sc := scenario.MustGet("purchase-with-login")
	rec, err := Install(b.route, sc)
	require.NoError(t, err)

	rt := b.send(t, "*/**/api/order", http.MethodGet, "http://localhost:3000/api/order", "")
	assert.Equal(t, http.StatusMethodNotAllowed, *rt.fulfilled.Status)
	assert.Len(t, rec.Violations(), 1)

	ft := &recordingT{}
	assert.False(t, AssertClean(ft, rec, sc))
	assert.Len(t, ft.errors, 2, "one violation, one unmet list")
}

func TestPreflightIsAnsweredWithoutRecording(t *testing.T) {
	b := &browser{}
	sc := scenario.MustGet("purchase-with-login")
	rec, err := Install(b.route, sc)
	require.NoError(t, err)

	rt := b.send(t, "*/**/api/auth", http.MethodOptions, "http://localhost:3000/api/auth", "")
	assert.Equal(t, http.StatusNoContent, *rt.fulfilled.Status)
	assert.Equal(t, "*", rt.fulfilled.Headers["Access-Control-Allow-Origin"])
	assert.Empty(t, rec.Calls())
	assert.Empty(t, rec.Violations())
}

func TestUnknownPatternFallsBack(t *testing.T) {
	sc := scenario.MustGet("home")
	rsp := &scenario.Responder{Recorder: scenario.NewRecorder()}
	h := Handler(sc, "*/**/api/docs", rsp, false)

	rt := &fakeRoute{req: &fakeRequest{method: http.MethodGet, url: "http://localhost:3000/api/docs"}}
	h(rt)
	assert.True(t, rt.fellBack)
	assert.Nil(t, rt.fulfilled)
}

func TestSharedRecorder(t *testing.T) {
	rec := scenario.NewRecorder()
	b := &browser{}
	got, err := Install(b.route, scenario.MustGet("home"), WithRecorder(rec))
	require.NoError(t, err)
	assert.Same(t, rec, got)
}

type recordingT struct {
	testing.TB
	errors []string
}

func (r *recordingT) Helper() {}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) Name() string { return "recording" }
