// Package contract mirrors the JSON shapes the storefront exchanges with its
// backend. The tests mock these endpoints; the types let them derive
// expectations from the same data they serve.
package contract

import (
	"fmt"
	"math"
)

// Role names the storefront understands.
const (
	RoleDiner      = "diner"
	RoleAdmin      = "admin"
	RoleFranchisee = "franchisee"
)

// MenuItem is one entry of GET /api/order/menu.
type MenuItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Store belongs to a franchise. TotalRevenue is only present on the
// franchisee/admin views.
type Store struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	TotalRevenue *float64 `json:"totalRevenue,omitempty"`
}

// FranchiseAdmin is a user allowed to manage a franchise.
type FranchiseAdmin struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Franchise is one entry of GET /api/franchise and GET /api/franchise/{userId}.
type Franchise struct {
	ID     int              `json:"id"`
	Name   string           `json:"name"`
	Admins []FranchiseAdmin `json:"admins,omitempty"`
	Stores []Store          `json:"stores"`
}

// Role grants a user a capability, optionally scoped to an object
// (the franchise id for franchisees).
type Role struct {
	Role     string `json:"role"`
	ObjectID *int   `json:"objectId,omitempty"`
}

// User is the authenticated principal returned by /api/auth.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// FranchiseIDs returns the franchises the user is a franchisee of.
func (u User) FranchiseIDs() []int {
	var ids []int
	for _, r := range u.Roles {
		if r.Role == RoleFranchisee && r.ObjectID != nil {
			ids = append(ids, *r.ObjectID)
		}
	}
	return ids
}

// LoginRequest is the body of PUT /api/auth.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse answers both login and registration.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// OrderItem is a pizza inside an order.
type OrderItem struct {
	MenuID      int     `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Order is the body of POST /api/order and the echoed order in its response.
// StoreID is a string because the storefront posts the select element's value.
type Order struct {
	ID          int         `json:"id,omitempty"`
	FranchiseID int         `json:"franchiseId"`
	StoreID     string      `json:"storeId"`
	Items       []OrderItem `json:"items"`
	Date        string      `json:"date,omitempty"`
}

// Total sums the item prices.
func (o Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price
	}
	return total
}

// OrderFromMenu builds an order for the given menu items in order.
func OrderFromMenu(franchiseID int, storeID string, items ...MenuItem) Order {
	o := Order{FranchiseID: franchiseID, StoreID: storeID, Items: make([]OrderItem, 0, len(items))}
	for _, it := range items {
		o.Items = append(o.Items, OrderItem{MenuID: it.ID, Description: it.Title, Price: it.Price})
	}
	return o
}

// OrderResponse answers POST /api/order.
type OrderResponse struct {
	Order Order  `json:"order"`
	JWT   string `json:"jwt"`
}

// OrderHistory answers GET /api/order on the diner dashboard.
type OrderHistory struct {
	DinerID int     `json:"dinerId"`
	Orders  []Order `json:"orders"`
	Page    int     `json:"page"`
}

// StoreRequest is the body of POST /api/franchise/{id}/store. The storefront
// sends an empty id for new stores.
type StoreRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreatedStore answers POST /api/franchise/{id}/store.
type CreatedStore struct {
	ID          int    `json:"id"`
	FranchiseID int    `json:"franchiseId"`
	Name        string `json:"name"`
}

// Message is the generic acknowledgement, e.g. {"message":"store deleted"}.
type Message struct {
	Message string `json:"message"`
}

// VerifyResponse answers POST /api/order/verify.
type VerifyResponse struct {
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

// FormatPrice renders a bitcoin amount the way the storefront does.
func FormatPrice(v float64) string {
	r := math.Round(v*1000) / 1000
	return fmt.Sprintf("%.3f ₿", r)
}
