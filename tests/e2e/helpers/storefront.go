package helpers

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Storefront drives the JWT Pizza UI the way a diner would.
type Storefront struct {
	browser *BrowserHelper
}

func NewStorefront(browser *BrowserHelper) *Storefront {
	return &Storefront{browser: browser}
}

func (s *Storefront) page() playwright.Page {
	return s.browser.Page
}

func (s *Storefront) button(name string) playwright.Locator {
	return s.page().GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: name})
}

func (s *Storefront) link(name string) playwright.Locator {
	return s.page().GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: name})
}

func (s *Storefront) textbox(name string) playwright.Locator {
	return s.page().GetByRole(*playwright.AriaRoleTextbox, playwright.PageGetByRoleOptions{Name: name})
}

// Home opens the landing page.
func (s *Storefront) Home() error {
	return s.browser.NavigateTo("/")
}

// StartOrder follows the hero call to action onto the menu.
func (s *Storefront) StartOrder() error {
	if err := s.button("Order now").Click(); err != nil {
		return fmt.Errorf("failed to click Order now: %w", err)
	}
	return nil
}

// SelectStore picks a store by id from the store dropdown.
func (s *Storefront) SelectStore(storeID string) error {
	_, err := s.page().GetByRole(*playwright.AriaRoleCombobox).SelectOption(playwright.SelectOptionValues{
		Values: &[]string{storeID},
	})
	if err != nil {
		return fmt.Errorf("failed to select store %s: %w", storeID, err)
	}
	return nil
}

// AddPizza clicks the menu card whose accessible name starts with card,
// e.g. "Image Description Veggie A".
func (s *Storefront) AddPizza(card string) error {
	if err := s.link(card).First().Click(); err != nil {
		return fmt.Errorf("failed to add %q: %w", card, err)
	}
	return nil
}

// Checkout leaves the menu for the payment page.
func (s *Storefront) Checkout() error {
	if err := s.button("Checkout").Click(); err != nil {
		return fmt.Errorf("failed to check out: %w", err)
	}
	return nil
}

// LoginFromNav opens the login page from the header.
func (s *Storefront) LoginFromNav() error {
	if err := s.link("Login").Click(); err != nil {
		return fmt.Errorf("failed to open login: %w", err)
	}
	return nil
}

// FillLogin fills and submits the login form.
func (s *Storefront) FillLogin(email, password string) error {
	emailInput := s.page().GetByPlaceholder("Email address")
	if err := emailInput.Click(); err != nil {
		return fmt.Errorf("email input not found: %w", err)
	}
	if err := emailInput.Fill(email); err != nil {
		return fmt.Errorf("failed to fill email: %w", err)
	}
	if err := emailInput.Press("Tab"); err != nil {
		return fmt.Errorf("failed to leave email: %w", err)
	}
	if err := s.page().GetByPlaceholder("Password").Fill(password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := s.button("Login").Click(); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	return nil
}

// Login logs in from the header link.
func (s *Storefront) Login(email, password string) error {
	if err := s.LoginFromNav(); err != nil {
		return err
	}
	return s.FillLogin(email, password)
}

// Register fills and submits the registration form starting from the header.
func (s *Storefront) Register(name, email, password string) error {
	if err := s.link("Register").Click(); err != nil {
		return fmt.Errorf("failed to open register: %w", err)
	}
	fields := []struct{ label, value string }{
		{"Full name", name},
		{"Email address", email},
		{"Password", password},
	}
	for _, f := range fields {
		if err := s.textbox(f.label).Fill(f.value); err != nil {
			return fmt.Errorf("failed to fill %s: %w", f.label, err)
		}
	}
	if err := s.button("Register").Click(); err != nil {
		return fmt.Errorf("failed to submit registration: %w", err)
	}
	return nil
}

// PayNow submits the order.
func (s *Storefront) PayNow() error {
	if err := s.button("Pay now").Click(); err != nil {
		return fmt.Errorf("failed to pay: %w", err)
	}
	return nil
}

// Verify asks the storefront to check the order token on the delivery page.
func (s *Storefront) Verify() error {
	if err := s.button("Verify").Click(); err != nil {
		return fmt.Errorf("failed to verify: %w", err)
	}
	return nil
}

// OpenNavLink clicks any link by accessible name.
func (s *Storefront) OpenNavLink(name string) error {
	if err := s.link(name).Click(); err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	return nil
}

// GlobalNavLink is a link inside the header navigation landmark.
func (s *Storefront) GlobalNavLink(name string) playwright.Locator {
	return s.page().GetByLabel("Global").GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{Name: name})
}

func (s *Storefront) OpenGlobalNav(name string) error {
	if err := s.GlobalNavLink(name).Click(); err != nil {
		return fmt.Errorf("failed to open %s from the header: %w", name, err)
	}
	return nil
}

// Logout clicks the header logout link.
func (s *Storefront) Logout() error {
	if err := s.link("Logout").Click(); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// OpenDinerDashboard clicks the avatar link, which is labelled with the
// user's initials.
func (s *Storefront) OpenDinerDashboard(initials string) error {
	avatar := s.page().GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{
		Name:  initials,
		Exact: playwright.Bool(true),
	})
	if err := avatar.Click(); err != nil {
		return fmt.Errorf("failed to open diner dashboard: %w", err)
	}
	return nil
}
