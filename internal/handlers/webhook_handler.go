package handlers

import (
	"net/http"

	"dinkup-backend/internal/services/ingestion"
	"dinkup-backend/internal/services/parser"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	ingestion *ingestion.Service
	secret    string
}

func NewWebhookHandler(svc *ingestion.Service, secret string) *WebhookHandler {
	return &WebhookHandler{ingestion: svc, secret: secret}
}

// IngestTransaction receives one forwarded provider email from the mail
// relay. Unparseable content still gets a 200 so the relay stops retrying
// things it will never understand; 5xx is reserved for storage failures the
// relay should retry.
func (h *WebhookHandler) IngestTransaction(c *gin.Context) {
	if h.secret == "" || c.GetHeader("X-Webhook-Secret") != h.secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var payload parser.Payload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.From == "" || payload.Subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and subject are required"})
		return
	}

	result, err := h.ingestion.Process(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"success":   true,
		"matched":   result.Matched,
		"duplicate": result.Duplicate,
	}
	if result.TransactionID != nil {
		resp["transaction_id"] = result.TransactionID
	}
	c.JSON(http.StatusOK, resp)
}
