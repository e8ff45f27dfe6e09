package services_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/session"
	"github.com/shashiranjanraj/dabba/pkg/testkit"
	"github.com/stretchr/testify/require"
)

func newCart() *services.Cart {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return services.NewCart(session.FromCtx(req))
}

func TestCartAddAccumulates(t *testing.T) {
	cart := newCart()

	cart.Add(1)
	cart.Add(1)
	cart.Add(2)

	require.Equal(t, 3, cart.Count())
	require.Equal(t, map[uint]int{1: 2, 2: 1}, cart.Entries())
}

func TestCartDecreaseAtOneRemovesLine(t *testing.T) {
	cart := newCart()
	cart.Add(5)

	cart.Update(5, services.CartDecrease)

	require.Equal(t, 0, cart.Count())
	require.Empty(t, cart.Entries())
}

func TestCartUpdateAbsentLineIsNoOp(t *testing.T) {
	cart := newCart()

	cart.Update(99, services.CartDecrease)
	cart.Update(99, services.CartIncrease)
	cart.Update(99, services.CartRemove)

	require.Equal(t, 0, cart.Count())
}

func TestCartRemoveDropsWholeLine(t *testing.T) {
	cart := newCart()
	cart.Add(3)
	cart.Add(3)
	cart.Add(4)

	cart.Update(3, services.CartRemove)

	require.Equal(t, map[uint]int{4: 1}, cart.Entries())
}

func TestCartClear(t *testing.T) {
	cart := newCart()
	cart.Add(1)
	cart.Add(2)

	cart.Clear()

	require.Equal(t, 0, cart.Count())
}

func TestCartReadResolvesMealsAndTotals(t *testing.T) {
	db := testkit.NewDB(t, &models.Meal{})
	meals := repositories.NewMealRepository(db)

	bowl := models.Meal{Name: "Bowl Buddha aux Légumes Grillés", Price: 14.90, Category: "Bowls", IsAvailable: true}
	require.NoError(t, meals.Create(&bowl))

	cart := newCart()
	cart.Add(bowl.ID)
	cart.Add(bowl.ID)

	view, err := services.NewCartService(meals).Read(cart)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	require.Equal(t, 2, view.Lines[0].Quantity)
	require.InDelta(t, 29.80, view.Lines[0].Subtotal, 0.001)
	require.InDelta(t, 29.80, view.Total, 0.001)
}

func TestCartReadSkipsDanglingMeals(t *testing.T) {
	db := testkit.NewDB(t, &models.Meal{})
	meals := repositories.NewMealRepository(db)

	wrap := models.Meal{Name: "Wrap Falafel", Price: 12.90, IsAvailable: true}
	require.NoError(t, meals.Create(&wrap))

	cart := newCart()
	cart.Add(wrap.ID)
	cart.Add(9999) // removed from the menu

	view, err := services.NewCartService(meals).Read(cart)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	require.InDelta(t, 12.90, view.Total, 0.001)
}
