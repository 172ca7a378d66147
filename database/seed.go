package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// rolePermissions is what each seeded role may open in the console.
var rolePermissions = map[string][]string{
	"admin":   {"DASHBOARD", "DINING", "ORDERS", "POS", "CATEGORIES", "ITEMS", "EXPENSES", "USERS", "ROLES"},
	"cashier": {"DINING", "ORDERS", "POS"},
}

// Seed fills an empty database with an admin, a cashier, permissions, a small
// catalog and two blocks of tables. Running it again changes nothing.
func Seed(db *gorm.DB, opts SeedOptions) error {
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		hashed, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		staff := []models.User{
			{Name: "Admin", Email: opts.AdminEmail, Password: string(hashed), Role: "admin"},
			{Name: "Cashier", Email: "cashier@example.com", Password: string(hashed), Role: "cashier"},
		}
		if err := tx.Create(&staff).Error; err != nil {
			return fmt.Errorf("seeding users: %w", err)
		}

		for role, caps := range rolePermissions {
			for _, capability := range caps {
				p := models.Permission{Role: role, Capability: capability, Icon: "fa-" + capability}
				if err := tx.Create(&p).Error; err != nil {
					return fmt.Errorf("seeding permissions: %w", err)
				}
			}
		}

		food := models.Category{Name: "Food"}
		drinks := models.Category{Name: "Drinks"}
		if err := tx.Create(&food).Error; err != nil {
			return err
		}
		if err := tx.Create(&drinks).Error; err != nil {
			return err
		}

		items := []models.CatalogItem{
			{Name: "Nasi Goreng", Price: decimal.RequireFromString("100.00"), CategoryID: food.ID},
			{Name: "Mie Ayam", Price: decimal.RequireFromString("85.50"), CategoryID: food.ID},
			{Name: "Es Teh", Price: decimal.RequireFromString("50.00"), CategoryID: drinks.ID},
			{Name: "Kopi Tubruk", Price: decimal.RequireFromString("0.30"), CategoryID: drinks.ID},
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}

		blocks := []models.Block{
			{Name: "Ground Floor", Tables: []models.Table{{Name: "G1"}, {Name: "G2"}, {Name: "G3"}}},
			{Name: "Terrace", Tables: []models.Table{{Name: "T1"}, {Name: "T2"}}},
		}
		if err := tx.Create(&blocks).Error; err != nil {
			return fmt.Errorf("seeding tables: %w", err)
		}

		utils.InfoLogger.Printf("Seeded admin %s, %d items and %d blocks", opts.AdminEmail, len(items), len(blocks))
		return nil
	})
}
