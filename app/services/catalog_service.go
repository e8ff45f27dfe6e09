package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/pkg/cache"
	"gorm.io/gorm"
)

// CatalogService serves the browsable menu. Reads are cached because the
// menu changes rarely and the list page is the hottest endpoint.
type CatalogService struct {
	meals *repositories.MealRepository
}

func NewCatalogService(meals *repositories.MealRepository) *CatalogService {
	return &CatalogService{meals: meals}
}

const catalogCacheTTL = 5 * time.Minute

// List returns available meals matching the filter.
func (s *CatalogService) List(filter repositories.MealFilter) ([]models.Meal, error) {
	var meals []models.Meal
	key := fmt.Sprintf("catalog:meals:%s:%t:%t", filter.Category, filter.Vegetarian, filter.Vegan)
	err := cache.Remember(key, catalogCacheTTL, &meals, func() (interface{}, error) {
		return s.meals.Available(filter)
	})
	return meals, err
}

// Categories returns the distinct categories of available meals.
func (s *CatalogService) Categories() ([]string, error) {
	var categories []string
	err := cache.Remember("catalog:categories", catalogCacheTTL, &categories, func() (interface{}, error) {
		return s.meals.Categories()
	})
	return categories, err
}

// Get loads one meal, hidden or not. Unavailable meals still resolve so an
// old cart or order can reference them.
func (s *CatalogService) Get(id uint) (models.Meal, error) {
	meal, err := s.meals.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Meal{}, ErrNotFound
		}
		return models.Meal{}, err
	}
	return meal, nil
}

// MealInput is the admin payload for creating or updating a meal.
type MealInput struct {
	Name         string  `json:"name" validate:"required,max=150"`
	Description  string  `json:"description" validate:"nullable,max=2000"`
	Price        float64 `json:"price" validate:"required"`
	Category     string  `json:"category" validate:"required,max=80"`
	IsAvailable  *bool   `json:"is_available"`
	PrepMinutes  int     `json:"prep_minutes"`
	Calories     int     `json:"calories"`
	IsVegetarian bool    `json:"is_vegetarian"`
	IsVegan      bool    `json:"is_vegan"`
}

// Create adds a meal to the menu and invalidates catalog caches.
func (s *CatalogService) Create(input MealInput) (models.Meal, error) {
	meal := models.Meal{
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		Category:     input.Category,
		IsAvailable:  true,
		PrepMinutes:  input.PrepMinutes,
		Calories:     input.Calories,
		IsVegetarian: input.IsVegetarian,
		IsVegan:      input.IsVegan,
	}
	if input.IsAvailable != nil {
		meal.IsAvailable = *input.IsAvailable
	}
	if err := s.meals.Create(&meal); err != nil {
		return models.Meal{}, err
	}
	s.invalidate()
	return meal, nil
}

// Update modifies an existing meal and invalidates catalog caches.
func (s *CatalogService) Update(id uint, input MealInput) (models.Meal, error) {
	meal, err := s.Get(id)
	if err != nil {
		return models.Meal{}, err
	}

	meal.Name = input.Name
	meal.Description = input.Description
	meal.Price = input.Price
	meal.Category = input.Category
	meal.PrepMinutes = input.PrepMinutes
	meal.Calories = input.Calories
	meal.IsVegetarian = input.IsVegetarian
	meal.IsVegan = input.IsVegan
	if input.IsAvailable != nil {
		meal.IsAvailable = *input.IsAvailable
	}

	if err := s.meals.Update(&meal); err != nil {
		return models.Meal{}, err
	}
	s.invalidate()
	return meal, nil
}

// SetImage records the stored image path for a meal.
func (s *CatalogService) SetImage(id uint, path string) (models.Meal, error) {
	meal, err := s.Get(id)
	if err != nil {
		return models.Meal{}, err
	}
	meal.ImagePath = path
	if err := s.meals.Update(&meal); err != nil {
		return models.Meal{}, err
	}
	s.invalidate()
	return meal, nil
}

func (s *CatalogService) invalidate() {
	cache.Forget("catalog:categories")
	// Filtered list keys are left to expire with the TTL.
}
