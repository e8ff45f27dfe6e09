package models

import "gorm.io/gorm"

// Meal is one item on the menu. Prices are stored in euros; the checkout
// flow converts to cents when talking to the payment gateway.
type Meal struct {
	gorm.Model
	Name         string  `gorm:"size:255;not null;index" json:"name"`
	Description  string  `gorm:"type:text" json:"description"`
	Price        float64 `gorm:"not null;default:0" json:"price"`
	Category     string  `gorm:"size:100;index" json:"category"`
	ImagePath    string  `gorm:"size:500" json:"image_path"`
	IsAvailable  bool    `gorm:"not null;default:true" json:"is_available"`
	PrepMinutes  int     `gorm:"not null;default:0" json:"prep_minutes"`
	Calories     int     `gorm:"not null;default:0" json:"calories"`
	IsVegetarian bool    `gorm:"not null;default:false" json:"is_vegetarian"`
	IsVegan      bool    `gorm:"not null;default:false" json:"is_vegan"`
}
