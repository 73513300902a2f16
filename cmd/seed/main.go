package main

import (
	"log"
	"os"
	"time"

	"photodrop/internal/config"
	"photodrop/internal/database"
	"photodrop/internal/domain"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.Event{},
		&domain.Upload{},
		&domain.AdminUser{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@photodrop.local"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existing int64
	db.Model(&domain.AdminUser{}).Where("email = ?", adminEmail).Count(&existing)
	if existing == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		admin := domain.AdminUser{
			Email:        adminEmail,
			PasswordHash: string(hash),
			CreatedAt:    time.Now(),
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatal("create admin failed:", err)
		}
		log.Println("Created admin user:", adminEmail)
	} else {
		log.Println("Admin user already exists:", adminEmail)
	}

	var events int64
	db.Model(&domain.Event{}).Count(&events)
	if events == 0 {
		demo := domain.Event{
			ID:            uuid.New().String(),
			Name:          "Demo Wedding",
			Description:   "Share your photos and videos from the celebration!",
			Language:      "en",
			IsActive:      true,
			MaxFileSizeMB: 100,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := db.Create(&demo).Error; err != nil {
			log.Fatal("create demo event failed:", err)
		}
		log.Printf("Created demo event: %s (%s)", demo.Name, demo.ID)
	}

	log.Println("Seed completed")
}
