package seeders

import (
	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("admin_user", SeedAdminUser)
	Register("demo_meals", SeedDemoMeals)
}

// SeedAdminUser creates the initial admin account if none exists.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("changeme-now")
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Username: "admin",
		Email:    "admin@dabba.app",
		Password: hash,
		Role:     models.RoleAdmin,
	}).Error
}

// SeedDemoMeals fills an empty menu with the demo catalog.
func SeedDemoMeals(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Meal{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	meals := []models.Meal{
		{
			Name:         "Bowl Buddha aux Légumes Grillés",
			Description:  "Un bowl généreux avec quinoa, légumes grillés (courgettes, poivrons, aubergines), houmous maison, avocat et graines de sésame.",
			Price:        14.90,
			Category:     "Bowls",
			IsAvailable:  true,
			PrepMinutes:  25,
			Calories:     520,
			IsVegetarian: true,
			IsVegan:      true,
		},
		{
			Name:        "Poulet Teriyaki & Riz Jasmin",
			Description: "Filet de poulet mariné sauce teriyaki maison, accompagné de riz jasmin parfumé et légumes sautés au wok.",
			Price:       16.50,
			Category:    "Asiatique",
			IsAvailable: true,
			PrepMinutes: 30,
			Calories:    680,
		},
		{
			Name:        "Lasagnes Bolognaise Maison",
			Description: "Lasagnes traditionnelles avec sauce bolognaise mijotée, béchamel onctueuse et parmesan gratiné.",
			Price:       15.90,
			Category:    "Italien",
			IsAvailable: true,
			PrepMinutes: 35,
			Calories:    750,
		},
		{
			Name:        "Salade César au Poulet Grillé",
			Description: "Salade romaine croquante, poulet grillé, croûtons à l'ail, parmesan et sauce César crémeuse.",
			Price:       13.50,
			Category:    "Salades",
			IsAvailable: true,
			PrepMinutes: 20,
			Calories:    450,
		},
		{
			Name:         "Curry de Légumes au Lait de Coco",
			Description:  "Curry doux aux légumes de saison, lait de coco, épices indiennes et riz basmati.",
			Price:        14.50,
			Category:     "Indien",
			IsAvailable:  true,
			PrepMinutes:  30,
			Calories:     580,
			IsVegetarian: true,
			IsVegan:      true,
		},
		{
			Name:        "Burger Gourmet Angus",
			Description: "Steak Angus 180g, cheddar affiné, bacon croustillant, oignons caramélisés, sauce maison et frites.",
			Price:       18.90,
			Category:    "Burgers",
			IsAvailable: true,
			PrepMinutes: 25,
			Calories:    920,
		},
		{
			Name:        "Poke Bowl Saumon",
			Description: "Riz vinaigré, saumon frais mariné, avocat, edamame, mangue, algues wakame et sauce ponzu.",
			Price:       17.50,
			Category:    "Bowls",
			IsAvailable: true,
			PrepMinutes: 20,
			Calories:    550,
		},
		{
			Name:        "Pad Thaï aux Crevettes",
			Description: "Nouilles de riz sautées, crevettes, œuf, cacahuètes, germes de soja et sauce tamarin.",
			Price:       16.90,
			Category:    "Asiatique",
			IsAvailable: true,
			PrepMinutes: 25,
			Calories:    620,
		},
		{
			Name:         "Risotto aux Champignons",
			Description:  "Risotto crémeux aux champignons forestiers, parmesan et huile de truffe.",
			Price:        16.50,
			Category:     "Italien",
			IsAvailable:  true,
			PrepMinutes:  35,
			Calories:     650,
			IsVegetarian: true,
		},
		{
			Name:         "Wrap Falafel",
			Description:  "Wrap garni de falafels croustillants, crudités, houmous et sauce tahini.",
			Price:        12.90,
			Category:     "Wraps",
			IsAvailable:  true,
			PrepMinutes:  15,
			Calories:     480,
			IsVegetarian: true,
			IsVegan:      true,
		},
		{
			Name:        "Tacos de Bœuf Épicé",
			Description: "Trois tacos au bœuf mariné, guacamole, pico de gallo, crème fraîche et cheddar.",
			Price:       15.50,
			Category:    "Mexicain",
			IsAvailable: true,
			PrepMinutes: 20,
			Calories:    720,
		},
		{
			Name:        "Soupe Pho au Bœuf",
			Description: "Bouillon parfumé aux épices vietnamiennes, nouilles de riz, bœuf et herbes fraîches.",
			Price:       14.90,
			Category:    "Asiatique",
			IsAvailable: true,
			PrepMinutes: 25,
			Calories:    420,
		},
	}

	return db.Create(&meals).Error
}
