package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"token-service/internal/config"
	"token-service/internal/repository/file"
	"token-service/internal/repository/postgres"

	"github.com/joho/godotenv"
)

const setupTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v\n", err)
	}

	// The schema is only needed for the postgres source, whatever TOKEN_SOURCE says.
	os.Setenv("TOKEN_SOURCE", string(config.TokenSourcePostgres))
	os.Unsetenv("AUDIT_ENABLED")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	fmt.Println("=== Setting Up Database ===")
	fmt.Println()

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")
	fmt.Println()

	fmt.Println("Executing schema...")
	if err := postgres.Migrate(ctx, db.Pool); err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Println("✅ Schema executed successfully")
	fmt.Println()

	if _, err := os.Stat(cfg.Tokens.File); err == nil {
		tokens, err := file.Load(cfg.Tokens.File)
		if err != nil {
			log.Fatalf("❌ Failed to read seed tokens: %v", err)
		}
		if err := postgres.SeedTokens(ctx, db.Pool, tokens); err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Printf("✅ Seeded %d tokens from %s\n", len(tokens), cfg.Tokens.File)
		fmt.Println()
	} else {
		fmt.Printf("No seed file at %s, skipping token seed\n", cfg.Tokens.File)
		fmt.Println()
	}

	fmt.Println("=== Verifying Tables ===")
	for _, table := range postgres.SchemaTables {
		exists, err := postgres.TableExists(ctx, db.Pool, table)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		if exists {
			fmt.Printf("✅ Table '%s' exists\n", table)
		} else {
			fmt.Printf("❌ Table '%s' is missing\n", table)
		}
	}

	fmt.Println()
	fmt.Println("=== Database Setup Complete ===")
}
