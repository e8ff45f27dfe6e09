package migrations

import (
	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_meals_table", &CreateMealsTable{})
	migration.Register("20260101000002_create_orders_table", &CreateOrdersTable{})
}

// -------- 0001: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0002: meals --------

type CreateMealsTable struct{}

func (m *CreateMealsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Meal{})
}

func (m *CreateMealsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("meals")
}

// -------- 0003: orders + order_items --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items", "orders")
}
