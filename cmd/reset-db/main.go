package main

import (
	"os"

	"eduadmin-backend/shared/config"
	"eduadmin-backend/shared/database"
	"eduadmin-backend/shared/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	log := logger.Must(os.Getenv("APP_ENV"))
	defer log.Sync()

	log.Info("🗑️ Starting database reset...")

	config.LoadConfig()
	cfg := config.GetConfig()

	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to reset a production database")
	}

	db, err := gorm.Open(postgres.Open(database.DSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatal("❌ Database connection failed", zap.Error(err))
	}

	log.Info("🗑️ Dropping all tables...")

	for _, table := range database.Tables() {
		log.Info("   Dropping table", zap.String("table", table))
		if err := db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE;").Error; err != nil {
			log.Fatal("❌ Drop failed", zap.String("table", table), zap.Error(err))
		}
	}

	log.Info("✅ Database reset completed - all tables dropped!")
	log.Info("💡 Run 'make seed' to recreate tables and seed data")
}
