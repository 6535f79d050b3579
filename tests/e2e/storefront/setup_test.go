//go:build e2e

package storefront

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/jwtpizza/pizza-e2e/tests/e2e/helpers"
)

// session starts a browser against the storefront, mocks the named catalog
// scenario and opens the home page.
func session(t *testing.T, scenarioName string) (*helpers.BrowserHelper, *helpers.Storefront) {
	t.Helper()
	browser := helpers.NewBrowserHelper(t)
	t.Cleanup(browser.TearDown)
	browser.MustSetup()

	if scenarioName != "" {
		browser.MockNamed(scenarioName)
	}
	sf := helpers.NewStorefront(browser)
	require.NoError(t, sf.Home())
	return browser, sf
}

func button(page playwright.Page, name string) playwright.Locator {
	return page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: name})
}

func link(page playwright.Page, name string) playwright.Locator {
	return page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: name})
}

func exactText(page playwright.Page, text string) playwright.Locator {
	return page.GetByText(text, playwright.PageGetByTextOptions{Exact: playwright.Bool(true)})
}
