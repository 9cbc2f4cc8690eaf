package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/ineedllc/ineed-api/config"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

// Seeds the bootstrap admin account: active, verified, staff. Safe to re-run.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := getenvDefault("SEED_ADMIN_EMAIL", "admin@ineed.local")
	password := getenvDefault("SEED_ADMIN_PASSWORD", "admin123")
	name := getenvDefault("SEED_ADMIN_NAME", "Administrator")

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, full_name, email, role, password_hash, is_active, is_email_verified, is_staff, created_at, updated_at)
		VALUES ($1, $2, $3, 'admin', $4, TRUE, TRUE, TRUE, now(), now())
		ON CONFLICT (email) DO UPDATE SET role = 'admin', is_active = TRUE, is_email_verified = TRUE, is_staff = TRUE, updated_at = now()
		RETURNING id
	`, uuid.NewString(), name, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", id, email, password)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
