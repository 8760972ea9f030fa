package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/playmatatu/ropesim/internal/config"
	"github.com/playmatatu/ropesim/internal/database"
	"github.com/playmatatu/ropesim/internal/operator"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	username := os.Getenv("OPERATOR_USERNAME")
	if username == "" {
		username = "operator"
		log.Printf("Using default operator username: %s", username)
	}

	password := os.Getenv("OPERATOR_PASSWORD")
	if password == "" {
		password = "change-me-in-production"
		log.Printf("WARNING: Using default operator password. Set OPERATOR_PASSWORD env var in production!")
	}

	roles := []string{operator.RoleOperator}
	if extra := os.Getenv("OPERATOR_ROLES"); extra != "" {
		for _, r := range strings.Split(extra, ",") {
			if r = strings.TrimSpace(r); r != "" && r != operator.RoleOperator {
				roles = append(roles, r)
			}
		}
	}

	displayName := os.Getenv("OPERATOR_DISPLAY_NAME")
	if displayName == "" {
		displayName = "Operator"
	}

	if err := operator.CreateOperator(db, username, displayName, password, roles); err != nil {
		log.Fatalf("Failed to create operator account: %v", err)
	}

	log.Printf("✓ Operator account created/updated successfully")
	log.Printf("  Username: %s", username)
	log.Printf("  Display Name: %s", displayName)
	log.Printf("  Roles: %v", roles)
	log.Println("\nLog in with POST /api/v1/auth/login")
}
