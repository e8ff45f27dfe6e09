package services

import (
	"strconv"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/pkg/session"
)

// cartKey is where the cart lives inside the session payload. The value is
// a map of meal ID (stringified, JSON object keys must be strings) to
// quantity. Quantities come back as float64 after the JSON round-trip.
const cartKey = "cart"

// Cart update actions.
const (
	CartIncrease = "increase"
	CartDecrease = "decrease"
	CartRemove   = "remove"
)

// Cart is a session-held shopping cart. It is single-actor by construction
// (one session, one request at a time), so no locking.
type Cart struct {
	sess *session.Session
}

// NewCart binds a cart to the request session.
func NewCart(sess *session.Session) *Cart {
	return &Cart{sess: sess}
}

func (c *Cart) read() map[string]interface{} {
	raw, ok := c.sess.Get(cartKey)
	if !ok {
		return map[string]interface{}{}
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return m
}

func (c *Cart) write(m map[string]interface{}) {
	c.sess.Set(cartKey, m)
}

func qty(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// Add increments the quantity for mealID, creating the entry at 1. The
// caller is responsible for checking the meal exists and is available.
func (c *Cart) Add(mealID uint) {
	m := c.read()
	key := strconv.FormatUint(uint64(mealID), 10)
	m[key] = qty(m[key]) + 1
	c.write(m)
}

// Update applies an action to an existing entry. All actions are no-ops
// when the entry is absent. Decrease removes the entry when it reaches zero.
func (c *Cart) Update(mealID uint, action string) {
	m := c.read()
	key := strconv.FormatUint(uint64(mealID), 10)

	current, ok := m[key]
	if !ok {
		return
	}

	switch action {
	case CartIncrease:
		m[key] = qty(current) + 1
	case CartDecrease:
		if next := qty(current) - 1; next > 0 {
			m[key] = next
		} else {
			delete(m, key)
		}
	case CartRemove:
		delete(m, key)
	default:
		return
	}

	c.write(m)
}

// Count returns the total number of units across all lines.
func (c *Cart) Count() int {
	total := 0
	for _, v := range c.read() {
		total += qty(v)
	}
	return total
}

// Clear empties the cart. Called after a successful checkout.
func (c *Cart) Clear() {
	c.write(map[string]interface{}{})
}

// Entries returns the raw mealID → quantity pairs, skipping entries that
// fail to parse.
func (c *Cart) Entries() map[uint]int {
	out := map[uint]int{}
	for key, v := range c.read() {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		if q := qty(v); q > 0 {
			out[uint(id)] = q
		}
	}
	return out
}

// ─── Resolution against the catalog ──────────────────────────────────────────

// CartLine is one resolved cart entry.
type CartLine struct {
	Meal     models.Meal `json:"meal"`
	Quantity int         `json:"quantity"`
	Subtotal float64     `json:"subtotal"`
}

// CartView is the fully resolved cart.
type CartView struct {
	Lines []CartLine `json:"items"`
	Total float64    `json:"total"`
}

// CartService resolves session carts against the meal catalog.
type CartService struct {
	meals *repositories.MealRepository
}

func NewCartService(meals *repositories.MealRepository) *CartService {
	return &CartService{meals: meals}
}

// Read resolves each cart entry to its meal. Entries whose meal no longer
// exists are skipped rather than failing the whole cart.
func (s *CartService) Read(cart *Cart) (CartView, error) {
	entries := cart.Entries()

	ids := make([]uint, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}

	meals, err := s.meals.FindByIDs(ids)
	if err != nil {
		return CartView{}, err
	}

	view := CartView{Lines: []CartLine{}}
	for id, quantity := range entries {
		meal, ok := meals[id]
		if !ok {
			continue // meal removed from the menu since it was added
		}
		subtotal := meal.Price * float64(quantity)
		view.Lines = append(view.Lines, CartLine{Meal: meal, Quantity: quantity, Subtotal: subtotal})
		view.Total += subtotal
	}

	return view, nil
}
