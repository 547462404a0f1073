package main

import (
	"os"

	"eduadmin-backend/shared/config"
	"eduadmin-backend/shared/database"
	"eduadmin-backend/shared/logger"

	"go.uber.org/zap"
)

func main() {
	log := logger.Must(os.Getenv("APP_ENV"))
	defer log.Sync()

	log.Info("🌱 Starting database seeding...")

	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.CloseDatabase()

	// Run seeding
	if err := database.SeedDatabase(database.GetDB()); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	log.Info("✅ Database seeding completed successfully!")
}
