package services_test

import (
	"testing"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/testkit"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) (*services.CatalogService, *repositories.MealRepository) {
	t.Helper()
	db := testkit.NewDB(t, &models.Meal{})
	meals := repositories.NewMealRepository(db)
	return services.NewCatalogService(meals), meals
}

func seedMenu(t *testing.T, meals *repositories.MealRepository) {
	t.Helper()
	for _, m := range []models.Meal{
		{Name: "Bowl Buddha aux Légumes Grillés", Price: 14.90, Category: "Bowls", IsAvailable: true, IsVegetarian: true, IsVegan: true},
		{Name: "Burger Gourmet au Boeuf Angus", Price: 18.90, Category: "Burgers", IsAvailable: true},
		{Name: "Soupe Pho Vietnamienne", Price: 14.90, Category: "Soupes", IsAvailable: false},
	} {
		meal := m
		require.NoError(t, meals.Create(&meal))
	}
}

func TestCatalogListHidesUnavailable(t *testing.T) {
	svc, meals := newCatalog(t)
	seedMenu(t, meals)

	list, err := svc.List(repositories.MealFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, m := range list {
		require.True(t, m.IsAvailable)
	}
}

func TestCatalogListFilters(t *testing.T) {
	svc, meals := newCatalog(t)
	seedMenu(t, meals)

	byCategory, err := svc.List(repositories.MealFilter{Category: "Burgers"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	require.Equal(t, "Burger Gourmet au Boeuf Angus", byCategory[0].Name)

	vegan, err := svc.List(repositories.MealFilter{Vegan: true})
	require.NoError(t, err)
	require.Len(t, vegan, 1)
	require.True(t, vegan[0].IsVegan)
}

func TestCatalogGetResolvesUnavailableMeal(t *testing.T) {
	svc, meals := newCatalog(t)

	hidden := models.Meal{Name: "Soupe Pho Vietnamienne", Price: 14.90, Category: "Soupes", IsAvailable: false}
	require.NoError(t, meals.Create(&hidden))

	// Old carts and orders may still reference a hidden meal.
	got, err := svc.Get(hidden.ID)
	require.NoError(t, err)
	require.False(t, got.IsAvailable)

	_, err = svc.Get(9999)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestCatalogCreateDefaultsToAvailable(t *testing.T) {
	svc, _ := newCatalog(t)

	meal, err := svc.Create(services.MealInput{
		Name:     "Tacos Mexicains au Poulet",
		Price:    15.50,
		Category: "Tacos",
	})
	require.NoError(t, err)
	require.True(t, meal.IsAvailable)

	off := false
	updated, err := svc.Update(meal.ID, services.MealInput{
		Name:        meal.Name,
		Price:       meal.Price,
		Category:    meal.Category,
		IsAvailable: &off,
	})
	require.NoError(t, err)
	require.False(t, updated.IsAvailable)
}
