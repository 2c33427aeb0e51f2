package database

import (
	"fmt"
	"log"

	config "github.com/studybridge/peer_tutor/configs"
	"github.com/studybridge/peer_tutor/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:            false,
		SkipDefaultTransaction: true,
		// Unique violations must come back as gorm.ErrDuplicatedKey so the
		// stores can report them as slot/rating conflicts.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.Rating{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedDemoTutor creates a first tutor account so a fresh deployment has
// something to book against. Controlled by SEED_TUTOR_* env vars.
func SeedDemoTutor() {
	email := config.Config("SEED_TUTOR_EMAIL")
	password := config.Config("SEED_TUTOR_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var count int64
	if err := DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		log.Printf("🔥 Failed to check for seed tutor: %v", err)
		return
	}
	if count > 0 {
		log.Println("Seed tutor already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("🔥 Failed to hash seed tutor password: %v", err)
		return
	}

	tutor := models.User{
		FirstName:  config.ConfigOr("SEED_TUTOR_FIRST_NAME", "Demo"),
		LastName:   config.ConfigOr("SEED_TUTOR_LAST_NAME", "Tutor"),
		Email:      email,
		Password:   string(hashedPassword),
		University: config.ConfigOr("SEED_TUTOR_UNIVERSITY", "Deakin University"),
		Year:       "graduate",
		Role:       models.RoleTutor,
		Subjects:   []string{"mathematics", "physics"},
	}
	if err := DB.Create(&tutor).Error; err != nil {
		log.Printf("🔥 Failed to seed tutor: %v", err)
		return
	}

	log.Println("✅ Seed tutor created successfully")
}
