package main

import (
	"log"
	"time"

	"dinkup-backend/internal/config"
	"dinkup-backend/internal/models"
	"dinkup-backend/internal/notify"
	"dinkup-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := config.InitDB(cfg.DatabaseURL)

	db.AutoMigrate(
		&models.Session{},
		&models.Participant{},
		&models.PaymentObligation{},
		&models.TransactionRecord{},
		&models.NotificationLogEntry{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Webhook-Secret"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, cfg, notify.LogSender{})

	r.Run(":" + cfg.Port)
}
