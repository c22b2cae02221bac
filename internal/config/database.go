package config

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
)

// ConnectDB membuka koneksi MySQL lewat GORM dan menjalankan automigrate
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gagal konek database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.TherapyPackage{},
		&models.Booking{},
		&models.Session{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.MidtransWebhookLog{},
		&models.AdminActionLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("gagal migrate: %w", err)
	}

	log.Println("Database connected & migrated")
	return db, nil
}
