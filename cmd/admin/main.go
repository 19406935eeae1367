// Package main provides admin management utilities for scribe.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"scribe/internal/config"
	"scribe/internal/database"
	"scribe/internal/models"
	"scribe/internal/repository"

	"gorm.io/gorm"
)

// Promotes, demotes and lists admins. Role changes take effect on the
// user's next login, because the admin flag is carried in the token.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go promote <user_id>     - Promote user to admin")
		fmt.Println("  go run ./cmd/admin/main.go demote <user_id>       - Demote user from admin")
		fmt.Println("  go run ./cmd/admin/main.go list-admins            - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	command := os.Args[1]

	switch command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: go run ./cmd/admin/main.go %s <user_id>\n", command)
			os.Exit(1)
		}
		if err := setAdmin(ctx, users, os.Args[2], command == "promote"); err != nil {
			log.Fatal(err)
		}

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func setAdmin(ctx context.Context, users repository.UserRepository, rawID string, admin bool) error {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", rawID)
	}

	user, err := users.GetByID(ctx, uint(id))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return fmt.Errorf("user with ID %d not found", id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if user.IsAdmin == admin {
		fmt.Printf("User %s (ID: %d) already has admin=%t\n", user.Username, user.ID, admin)
		return nil
	}

	user.IsAdmin = admin
	if err := users.Update(ctx, user, "IsAdmin"); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	verb := "promoted"
	if !admin {
		verb = "demoted"
	}
	fmt.Printf("✅ Successfully %s %s (ID: %d); the change applies after their next login\n", verb, user.Username, user.ID)
	return nil
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
	fmt.Println("─────────────────────────────────────")
}
