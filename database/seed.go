package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"marketplace-server/config"
	"marketplace-server/models"
	"marketplace-server/utils"
)

// defaultCategories are created on an empty database. The first entry gets
// id 1 and doubles as the fallback category for quotes.
var defaultCategories = []models.Category{
	{Name: "General Services", Description: "Requests that do not fit a specific trade"},
	{Name: "Cleaning", Description: "Home and office cleaning", Parent: "Home"},
	{Name: "Plumbing", Description: "Leaks, taps and pipe installations", Parent: "Home"},
	{Name: "Electrical", Description: "Wiring, outlets and lighting", Parent: "Home"},
	{Name: "Painting", Description: "Interior and exterior painting", Parent: "Home"},
	{Name: "Moving", Description: "Packing, moving and furniture assembly"},
	{Name: "Gardening", Description: "Lawn care, pruning and landscaping", Parent: "Outdoor"},
}

// SeedDefaults creates the default categories and, when configured, the
// initial admin account. It is safe to run on every start.
func SeedDefaults(db *gorm.DB, admin config.AdminConfig) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}

	if count == 0 {
		for _, category := range defaultCategories {
			c := category
			if err := db.Create(&c).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		log.Printf("✅ Seeded %d default categories", len(defaultCategories))
	}

	if admin.Email == "" || admin.Password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", admin.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := models.User{
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Printf("✅ Created admin account %s", admin.Email)
	return nil
}
