package main

import (
	"log"
	"os"

	"campuspay/internal/config"
	"campuspay/internal/models"
	"campuspay/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminHandle := os.Getenv("ADMIN_HANDLE")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminHandle == "" || adminPassword == "" {
		log.Fatal("ADMIN_HANDLE and ADMIN_PASSWORD must be set in environment")
	}

	repositories.InitDB()
	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err != nil {
				log.Printf("⚠️ Failed to get SQL DB instance: %v", err)
			} else if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
			}
		}
	}()

	var existingAdmin models.User
	result := repositories.DB.Where("handle = ?", adminHandle).First(&existingAdmin)
	if result.Error == nil {
		log.Println("Admin user already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	adminUser := models.User{
		Handle:   adminHandle,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	if err := repositories.DB.Create(&adminUser).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Println("✅ Admin account created successfully!")
}
