package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/jwtpizza/pizza-e2e/internal/intercept"
	"github.com/jwtpizza/pizza-e2e/internal/orderjwt"
	"github.com/jwtpizza/pizza-e2e/internal/scenario"
	"github.com/jwtpizza/pizza-e2e/tests/e2e/config"
)

// orderSecret signs order tokens inside the browser tests only.
const orderSecret = "storefront-e2e"

type installed struct {
	sc  *scenario.Scenario
	rec *scenario.Recorder
}

// BrowserHelper provides browser setup and teardown for tests
type BrowserHelper struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Config     *config.TestConfig
	t          *testing.T
	mocks      []installed
}

// NewBrowserHelper creates a new browser helper instance
func NewBrowserHelper(t *testing.T) *BrowserHelper {
	return &BrowserHelper{
		Config: config.GetConfig(),
		t:      t,
	}
}

// RequireStorefront skips the test when nothing answers at BaseURL.
func (b *BrowserHelper) RequireStorefront() {
	b.t.Helper()
	if os.Getenv("SKIP_BROWSER") == "true" {
		b.t.Skip("Skipping browser test")
	}
	if !config.Reachable(b.Config.BaseURL) {
		b.t.Skipf("storefront not reachable at %s (start it with npm run dev or set BASE_URL)", b.Config.BaseURL)
	}
}

// Setup initializes the browser and creates a new page
func (b *BrowserHelper) Setup() error {
	if os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	b.Playwright = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.Config.Headless),
		SlowMo:   playwright.Float(float64(b.Config.SlowMo)),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	b.Browser = browser

	opts := playwright.BrowserNewContextOptions{
		BaseURL: playwright.String(b.Config.BaseURL),
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
	}
	if b.Config.Videos {
		opts.RecordVideo = &playwright.RecordVideo{Dir: b.Config.VideoDir}
	}
	context, err := browser.NewContext(opts)
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	b.Context = context
	context.SetDefaultTimeout(float64(b.Config.Timeout.Milliseconds()))

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	b.Page = page

	return nil
}

// MustSetup is Setup for tests that cannot continue without a browser.
func (b *BrowserHelper) MustSetup() {
	b.t.Helper()
	b.RequireStorefront()
	require.NoError(b.t, b.Setup())
}

// Mock answers the scenario's routes for every page of the context. The
// recorder is checked for violations and unmet routes in TearDown.
func (b *BrowserHelper) Mock(sc *scenario.Scenario) *scenario.Recorder {
	b.t.Helper()
	rec, err := intercept.Install(intercept.ForContext(b.Context), sc,
		intercept.WithSigner(orderjwt.New(orderSecret, time.Hour)),
		intercept.Verbose(b.Config.Verbose),
	)
	require.NoError(b.t, err, "failed to mock scenario %s", sc.Name)
	b.mocks = append(b.mocks, installed{sc: sc, rec: rec})
	return rec
}

// MockNamed is Mock for a catalog scenario.
func (b *BrowserHelper) MockNamed(name string) *scenario.Recorder {
	b.t.Helper()
	sc, err := scenario.Get(name)
	require.NoError(b.t, err)
	return b.Mock(sc)
}

// Expect returns the web-first assertions bound to the configured timeout.
func (b *BrowserHelper) Expect() playwright.PlaywrightAssertions {
	return playwright.NewPlaywrightAssertions(float64(b.Config.Timeout.Milliseconds()))
}

// TearDown closes the browser and cleans up resources
func (b *BrowserHelper) TearDown() {
	for _, m := range b.mocks {
		intercept.AssertClean(b.t, m.rec, m.sc)
	}

	if b.t.Failed() && b.Config.Screenshots && b.Page != nil {
		name := strings.NewReplacer("/", "_", " ", "_").Replace(b.t.Name())
		path := filepath.Join(b.Config.ScreenshotDir, fmt.Sprintf("%s_%d.png", name, time.Now().Unix()))
		if _, err := b.Page.Screenshot(playwright.PageScreenshotOptions{
			Path:     playwright.String(path),
			FullPage: playwright.Bool(true),
		}); err == nil {
			b.t.Logf("screenshot saved to %s", path)
		}
	}

	if b.Page != nil {
		b.Page.Close()
	}
	if b.Context != nil {
		b.Context.Close()
	}
	if b.Browser != nil {
		b.Browser.Close()
	}
	if b.Playwright != nil {
		b.Playwright.Stop()
	}
}

// NavigateTo navigates to a path relative to the base URL
func (b *BrowserHelper) NavigateTo(path string) error {
	url := b.Config.BaseURL + path
	if _, err := b.Page.Goto(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}
