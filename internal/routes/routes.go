package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dinkup-backend/internal/config"
	handler "dinkup-backend/internal/handlers"
	"dinkup-backend/internal/notify"
	"dinkup-backend/internal/repository"
	"dinkup-backend/internal/services/ingestion"
	"dinkup-backend/internal/services/ledger"
	"dinkup-backend/internal/services/links"
	"dinkup-backend/internal/services/matching"
	"dinkup-backend/internal/services/parser"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, sender notify.Sender) {
	sessionRepo := repository.NewSessionRepository(db)
	obligationRepo := repository.NewObligationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	auditRepo := repository.NewNotificationLogRepository(db)

	ledgerService := ledger.NewService(obligationRepo, sessionRepo)
	linkGen := links.NewGenerator(cfg.Activity, cfg.TokenNamespace)
	emailParser := parser.New(parser.Config{Namespaces: cfg.Namespaces})
	engine := matching.NewEngine(ledgerService, sessionRepo, transactionRepo, auditRepo)
	ingestionService := ingestion.NewService(emailParser, engine, transactionRepo, auditRepo)

	webhookHandler := handler.NewWebhookHandler(ingestionService, cfg.WebhookSecret)
	adminHandler := handler.NewAdminHandler(
		ledgerService, sessionRepo, obligationRepo, transactionRepo,
		auditRepo, linkGen, sender, cfg.AdminHandle,
	)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Inbound provider-email webhook
	api.POST("/transactions", webhookHandler.IngestTransaction)
	api.GET("/transactions/review", adminHandler.ReviewQueue)

	// Session / ledger routes
	sessions := api.Group("/sessions")
	sessions.POST("", adminHandler.CreateSession)
	sessions.POST("/:id/lock", adminHandler.LockSession)
	sessions.GET("/:id/payments", adminHandler.ListSessionPayments)
	sessions.GET("/:id/audit", adminHandler.SessionAudit)

	// Manual payment transitions
	payments := api.Group("/payments")
	payments.POST("/:id/pay", adminHandler.MarkPaid)
	payments.POST("/:id/forgive", adminHandler.Forgive)
	payments.POST("/:id/refund", adminHandler.Refund)
	payments.GET("/:id/link", adminHandler.PayLink)
}
