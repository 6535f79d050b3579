//go:build e2e

package storefront

import (
	"regexp"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/jwtpizza/pizza-e2e/internal/contract"
)

func TestPurchaseWithLogin(t *testing.T) {
	browser, sf := session(t, "purchase-with-login")
	page, expect := browser.Page, browser.Expect()

	require.NoError(t, sf.StartOrder())
	require.NoError(t, expect.Locator(page.Locator("h2")).ToContainText("Awesome is a click away"))
	require.NoError(t, sf.SelectStore("4"))
	require.NoError(t, sf.AddPizza("Image Description Veggie A"))
	require.NoError(t, sf.AddPizza("Image Description Pepperoni"))
	require.NoError(t, expect.Locator(page.Locator("form")).ToContainText("Selected pizzas: 2"))
	require.NoError(t, sf.Checkout())

	require.NoError(t, sf.FillLogin("d@jwt.com", "a"))

	mainRegion := page.GetByRole(*playwright.AriaRoleMain)
	require.NoError(t, expect.Locator(mainRegion).ToContainText("Send me those 2 pizzas right now!"))
	require.NoError(t, expect.Locator(page.Locator("tbody")).ToContainText("Veggie"))
	require.NoError(t, expect.Locator(page.Locator("tbody")).ToContainText("Pepperoni"))

	total := contract.OrderFromMenu(2, "4",
		contract.MenuItem{ID: 1, Title: "Veggie", Price: 0.0038},
		contract.MenuItem{ID: 2, Title: "Pepperoni", Price: 0.0042},
	).Total()
	require.NoError(t, expect.Locator(page.Locator("tfoot")).ToContainText(contract.FormatPrice(total)))
	require.NoError(t, sf.PayNow())

	require.NoError(t, expect.Locator(page.GetByText("0.008")).ToBeVisible())
}

func TestPurchaseAndVerify(t *testing.T) {
	browser, sf := session(t, "purchase-verify")
	page, expect := browser.Page, browser.Expect()

	require.NoError(t, sf.Login("c@jwt.com", "c"))
	require.NoError(t, sf.OpenNavLink("Order"))

	require.NoError(t, sf.SelectStore("304"))
	require.NoError(t, sf.AddPizza("Image Description Pepperoni"))
	require.NoError(t, expect.Locator(page.Locator("form")).ToContainText("Selected pizzas: 1"))
	require.NoError(t, sf.AddPizza("Image Description Veggie A"))
	require.NoError(t, sf.Checkout())
	require.NoError(t, sf.PayNow())

	require.NoError(t, sf.Verify())
	verdict := expect.Locator(page.Locator("h3"))
	require.NoError(t, verdict.ToContainText(regexp.MustCompile(`\bvalid\b`)))
	require.NoError(t, verdict.Not().ToContainText("invalid"))
	require.NoError(t, button(page, "Close").Click())
	require.NoError(t, button(page, "Order more").Click())
	require.NoError(t, expect.Locator(page.GetByText("What are you waiting for?")).ToBeVisible())
}
