package database

import (
	"fmt"
	"log"
	"os"

	"shopnow-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=shopnow port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ShippingCost{},
		&models.PasswordResetToken{},
		&models.RefreshToken{},
	); err != nil {
		return err
	}

	return nil
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@shopnow.com"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
		Name:     "Admin User",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}

// SeedShippingCosts inserts the Egyptian governorate rate table on first
// boot. An already populated table is left untouched so admin edits survive
// restarts.
func SeedShippingCosts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.ShippingCost{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.ShippingCost{
		{Governorate: "Cairo", GovernorateAr: "القاهرة", Cost: 50.00, DeliveryDays: 2},
		{Governorate: "Giza", GovernorateAr: "الجيزة", Cost: 50.00, DeliveryDays: 2},
		{Governorate: "Alexandria", GovernorateAr: "الإسكندرية", Cost: 60.00, DeliveryDays: 3},
		{Governorate: "Qalyubia", GovernorateAr: "القليوبية", Cost: 55.00, DeliveryDays: 3},
		{Governorate: "Sharqia", GovernorateAr: "الشرقية", Cost: 65.00, DeliveryDays: 3},
		{Governorate: "Dakahlia", GovernorateAr: "الدقهلية", Cost: 65.00, DeliveryDays: 3},
		{Governorate: "Beheira", GovernorateAr: "البحيرة", Cost: 65.00, DeliveryDays: 3},
		{Governorate: "Gharbia", GovernorateAr: "الغربية", Cost: 60.00, DeliveryDays: 3},
		{Governorate: "Monufia", GovernorateAr: "المنوفية", Cost: 60.00, DeliveryDays: 3},
		{Governorate: "Kafr El Sheikh", GovernorateAr: "كفر الشيخ", Cost: 65.00, DeliveryDays: 3},
		{Governorate: "Damietta", GovernorateAr: "دمياط", Cost: 65.00, DeliveryDays: 3},
		{Governorate: "Port Said", GovernorateAr: "بورسعيد", Cost: 70.00, DeliveryDays: 3},
		{Governorate: "Ismailia", GovernorateAr: "الإسماعيلية", Cost: 70.00, DeliveryDays: 3},
		{Governorate: "Suez", GovernorateAr: "السويس", Cost: 70.00, DeliveryDays: 3},
		{Governorate: "Fayoum", GovernorateAr: "الفيوم", Cost: 70.00, DeliveryDays: 4},
		{Governorate: "Beni Suef", GovernorateAr: "بني سويف", Cost: 75.00, DeliveryDays: 4},
		{Governorate: "Minya", GovernorateAr: "المنيا", Cost: 80.00, DeliveryDays: 4},
		{Governorate: "Assiut", GovernorateAr: "أسيوط", Cost: 85.00, DeliveryDays: 4},
		{Governorate: "Sohag", GovernorateAr: "سوهاج", Cost: 85.00, DeliveryDays: 5},
		{Governorate: "Qena", GovernorateAr: "قنا", Cost: 90.00, DeliveryDays: 5},
		{Governorate: "Luxor", GovernorateAr: "الأقصر", Cost: 90.00, DeliveryDays: 5},
		{Governorate: "Aswan", GovernorateAr: "أسوان", Cost: 95.00, DeliveryDays: 5},
		{Governorate: "Red Sea", GovernorateAr: "البحر الأحمر", Cost: 95.00, DeliveryDays: 5},
		{Governorate: "New Valley", GovernorateAr: "الوادي الجديد", Cost: 100.00, DeliveryDays: 6},
		{Governorate: "Matrouh", GovernorateAr: "مطروح", Cost: 95.00, DeliveryDays: 5},
		{Governorate: "North Sinai", GovernorateAr: "شمال سيناء", Cost: 100.00, DeliveryDays: 6},
		{Governorate: "South Sinai", GovernorateAr: "جنوب سيناء", Cost: 100.00, DeliveryDays: 6},
	}

	if err := db.Create(&defaults).Error; err != nil {
		return err
	}

	log.Printf("Seeded %d shipping cost rows", len(defaults))
	return nil
}
