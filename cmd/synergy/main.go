package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/synergy-dev/synergy/db"
	"github.com/synergy-dev/synergy/internal/auth"
	"github.com/synergy-dev/synergy/internal/logging"
	"github.com/synergy-dev/synergy/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	logger := logging.New(os.Getenv("LOG_FILE"))

	tokens, err := auth.NewManager(os.Getenv("JWT_SECRET"))
	if err != nil {
		logger.Fatalf("Failed to initialize token manager: %v", err)
	}

	conn, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	r := router.New(router.Dependencies{
		DB:     conn,
		Logger: logger,
		Tokens: tokens,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		logger.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
