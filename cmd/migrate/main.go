package main

import (
	"os"

	"collectify-be/internal/model"
	"collectify-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		color.Yellow("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Step 1: Setting up extensions...")
	// gen_random_uuid() ships with pgcrypto on older postgres versions
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Yellow("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	color.Cyan("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.User{},
		&model.UserRole{},
		&model.UserRefreshToken{},
		&model.Group{},
		&model.GroupMember{},
		&model.Note{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Green("Success: %d tables migrated", len(models))
}
