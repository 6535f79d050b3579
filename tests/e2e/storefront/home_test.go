//go:build e2e

package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomePage(t *testing.T) {
	browser, _ := session(t, "home")

	title, err := browser.Page.Title()
	require.NoError(t, err)
	assert.Equal(t, "JWT Pizza", title)
}

func TestAboutAndHistory(t *testing.T) {
	browser, sf := session(t, "about-history")
	expect := browser.Expect()

	require.NoError(t, sf.OpenNavLink("About"))
	require.NoError(t, sf.OpenNavLink("History"))
	require.NoError(t, sf.OpenNavLink("home"))
	require.NoError(t, expect.Page(browser.Page).ToHaveTitle("JWT Pizza"))
}
