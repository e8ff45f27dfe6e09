// Package resources holds the API transformers that shape models into JSON.
package resources

import (
	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/pkg/collection"
	"github.com/shashiranjanraj/dabba/pkg/resource"
	"github.com/shashiranjanraj/dabba/pkg/storage"
)

// MealResource shapes a meal for the public catalog.
type MealResource struct{ resource.Base }

func (MealResource) ToArray(v interface{}) resource.Map {
	m, ok := v.(models.Meal)
	if !ok {
		return resource.Map{}
	}

	imageURL := ""
	if m.ImagePath != "" {
		imageURL = storage.URL(m.ImagePath)
	}

	return resource.Map{
		"id":            m.ID,
		"name":          m.Name,
		"description":   m.Description,
		"price":         m.Price,
		"category":      m.Category,
		"image_url":     imageURL,
		"is_available":  m.IsAvailable,
		"prep_minutes":  m.PrepMinutes,
		"calories":      m.Calories,
		"is_vegetarian": m.IsVegetarian,
		"is_vegan":      m.IsVegan,
	}
}

// Meal shapes one meal.
func Meal(m models.Meal) resource.Map {
	return MealResource{}.ToArray(m)
}

// Meals shapes a slice of meals, never returning nil so empty lists encode
// as [] rather than null.
func Meals(ms []models.Meal) []resource.Map {
	return collection.Map(ms, Meal)
}
