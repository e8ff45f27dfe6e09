package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shashiranjanraj/dabba/app/resources"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
	"github.com/shashiranjanraj/dabba/pkg/storage"
)

// maxImageSize caps meal image uploads at 5 MB.
const maxImageSize = 5 << 20

// AdminMealController manages the menu. Routes are gated on the admin role.
type AdminMealController struct {
	catalog *services.CatalogService
}

func NewAdminMealController(catalog *services.CatalogService) *AdminMealController {
	return &AdminMealController{catalog: catalog}
}

// Store handles POST /admin/meals.
func (h *AdminMealController) Store(c *ctx.Context) {
	var input services.MealInput
	if !c.BindJSON(&input) {
		return
	}

	meal, err := h.catalog.Create(input)
	if err != nil {
		c.Error(http.StatusInternalServerError, "Could not create the meal")
		return
	}
	c.Created(resources.Meal(meal))
}

// Update handles PUT /admin/meals/{id}.
func (h *AdminMealController) Update(c *ctx.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input services.MealInput
	if !c.BindJSON(&input) {
		return
	}

	meal, err := h.catalog.Update(id, input)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not update the meal")
		return
	}
	c.Success(resources.Meal(meal))
}

// UploadImage handles POST /admin/meals/{id}/image with a multipart "image"
// field. The file lands on the configured storage disk under meals/.
func (h *AdminMealController) UploadImage(c *ctx.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := c.R.ParseMultipartForm(maxImageSize); err != nil {
		c.Error(http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := c.R.FormFile("image")
	if err != nil {
		c.Error(http.StatusBadRequest, "Missing image field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		c.Error(http.StatusUnprocessableEntity, "Unsupported image type")
		return
	}

	path := fmt.Sprintf("meals/%d_%d%s", id, time.Now().UnixNano(), ext)
	if err := storage.PutStream(path, file); err != nil {
		c.Error(http.StatusInternalServerError, "Could not store the image")
		return
	}

	meal, err := h.catalog.SetImage(id, path)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not update the meal")
		return
	}
	c.Success(resources.Meal(meal))
}
