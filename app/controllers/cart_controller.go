package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
	"github.com/shashiranjanraj/dabba/pkg/session"
)

// CartController manages the session cart. No login is required: the cart
// follows the anonymous session until checkout.
type CartController struct {
	catalog *services.CatalogService
	carts   *services.CartService
}

func NewCartController(catalog *services.CatalogService, carts *services.CartService) *CartController {
	return &CartController{catalog: catalog, carts: carts}
}

// Show handles GET /cart: the resolved cart with line subtotals and total.
func (h *CartController) Show(c *ctx.Context) {
	cart := services.NewCart(session.FromCtx(c.R))

	view, err := h.carts.Read(cart)
	if err != nil {
		c.Error(http.StatusInternalServerError, "Could not load the cart")
		return
	}
	c.Success(view)
}

// Count handles GET /api/cart/count, for the cart badge.
func (h *CartController) Count(c *ctx.Context) {
	cart := services.NewCart(session.FromCtx(c.R))
	c.Success(map[string]interface{}{"count": cart.Count()})
}

// Add handles POST /cart/add/{meal_id}: put one unit of a meal in the cart.
func (h *CartController) Add(c *ctx.Context) {
	mealID, ok := paramID(c, "meal_id")
	if !ok {
		return
	}

	meal, err := h.catalog.Get(mealID)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not update the cart")
		return
	}
	if !meal.IsAvailable {
		c.Error(http.StatusUnprocessableEntity, "This meal is not available")
		return
	}

	sess := session.FromCtx(c.R)
	cart := services.NewCart(sess)
	cart.Add(meal.ID)
	if err := sess.Save(c.W); err != nil {
		c.Error(http.StatusInternalServerError, "Could not save the cart")
		return
	}

	c.Success(map[string]interface{}{"count": cart.Count()})
}

type cartUpdateInput struct {
	Action string `json:"action" validate:"required,in=increase,decrease,remove"`
}

// Update handles POST /cart/update/{meal_id}: increase, decrease or remove
// a line. Decreasing the last unit removes the line entirely; updating an
// absent line is a no-op.
func (h *CartController) Update(c *ctx.Context) {
	mealID, ok := paramID(c, "meal_id")
	if !ok {
		return
	}

	var input cartUpdateInput
	if !c.BindJSON(&input) {
		return
	}

	sess := session.FromCtx(c.R)
	cart := services.NewCart(sess)
	cart.Update(mealID, input.Action)
	if err := sess.Save(c.W); err != nil {
		c.Error(http.StatusInternalServerError, "Could not save the cart")
		return
	}

	c.Success(map[string]interface{}{"count": cart.Count()})
}
