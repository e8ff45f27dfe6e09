// Package controllers holds the HTTP handlers. Controllers stay thin: they
// bind input, call a service, and shape the response through app/resources.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/resources"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
)

// CatalogController serves the public menu.
type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// List handles GET /meals with optional category, vegetarian and vegan
// query filters.
func (h *CatalogController) List(c *ctx.Context) {
	filter := repositories.MealFilter{
		Category:   c.Query("category"),
		Vegetarian: c.Query("vegetarian") == "1" || c.Query("vegetarian") == "true",
		Vegan:      c.Query("vegan") == "1" || c.Query("vegan") == "true",
	}

	meals, err := h.catalog.List(filter)
	if err != nil {
		c.Error(http.StatusInternalServerError, "Could not load the menu")
		return
	}
	c.Success(resources.Meals(meals))
}

// Show handles GET /meals/{id}.
func (h *CatalogController) Show(c *ctx.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	meal, err := h.catalog.Get(id)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not load the meal")
		return
	}
	c.Success(resources.Meal(meal))
}

// Categories handles GET /meals/categories.
func (h *CatalogController) Categories(c *ctx.Context) {
	categories, err := h.catalog.Categories()
	if err != nil {
		c.Error(http.StatusInternalServerError, "Could not load categories")
		return
	}
	c.Success(categories)
}

// paramID parses a numeric path parameter, sending a 404 when it is not a
// positive integer.
func paramID(c *ctx.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.NotFound()
		return 0, false
	}
	return uint(id), true
}

// serviceError maps the shared service errors to HTTP responses. Returns
// true when it wrote a response.
func serviceError(c *ctx.Context, err error) bool {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.NotFound()
	case errors.Is(err, services.ErrNotOwner):
		c.Forbidden()
	case errors.Is(err, services.ErrEmptyCart):
		c.Error(http.StatusUnprocessableEntity, "Your cart is empty")
	case errors.Is(err, services.ErrEmailTaken):
		c.Error(http.StatusUnprocessableEntity, "Email already registered")
	case errors.Is(err, services.ErrUsernameTaken):
		c.Error(http.StatusUnprocessableEntity, "Username already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized("Invalid credentials")
	case errors.Is(err, services.ErrGateway):
		c.Error(http.StatusBadGateway, "Payment provider unavailable")
	default:
		return false
	}
	return true
}
