package repositories

import (
	"github.com/shashiranjanraj/dabba/app/models"
	"gorm.io/gorm"
)

// MealFilter narrows catalog listings. Zero values mean "no filter".
type MealFilter struct {
	Category   string
	Vegetarian bool
	Vegan      bool
}

// MealRepository handles database operations for Meal.
type MealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

// Available lists available meals matching the filter, newest first.
func (r *MealRepository) Available(filter MealFilter) ([]models.Meal, error) {
	q := r.db.Where("is_available = ?", true)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Vegetarian {
		q = q.Where("is_vegetarian = ?", true)
	}
	if filter.Vegan {
		q = q.Where("is_vegan = ?", true)
	}

	var meals []models.Meal
	err := q.Order("id desc").Find(&meals).Error
	return meals, err
}

// FindByID looks up a meal by primary key.
func (r *MealRepository) FindByID(id uint) (models.Meal, error) {
	var meal models.Meal
	err := r.db.First(&meal, id).Error
	return meal, err
}

// FindByIDs resolves a set of meal IDs. Missing IDs are simply absent from
// the result; the cart skips them.
func (r *MealRepository) FindByIDs(ids []uint) (map[uint]models.Meal, error) {
	if len(ids) == 0 {
		return map[uint]models.Meal{}, nil
	}

	var meals []models.Meal
	if err := r.db.Where("id IN ?", ids).Find(&meals).Error; err != nil {
		return nil, err
	}

	out := make(map[uint]models.Meal, len(meals))
	for _, m := range meals {
		out[m.ID] = m
	}
	return out, nil
}

// Categories returns the distinct categories of available meals.
func (r *MealRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Meal{}).
		Where("is_available = ?", true).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// Create persists a new meal.
func (r *MealRepository) Create(meal *models.Meal) error {
	return r.db.Create(meal).Error
}

// Update persists changes to an existing meal.
func (r *MealRepository) Update(meal *models.Meal) error {
	return r.db.Save(meal).Error
}
