package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"dinkup-backend/internal/models"
	"dinkup-backend/internal/notify"
	"dinkup-backend/internal/repository"
	"dinkup-backend/internal/services/ledger"
	"dinkup-backend/internal/services/links"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminHandler struct {
	ledger          *ledger.Service
	sessionRepo     *repository.SessionRepository
	obligationRepo  *repository.ObligationRepository
	transactionRepo *repository.TransactionRepository
	auditRepo       *repository.NotificationLogRepository
	links           *links.Generator
	sender          notify.Sender
	adminHandle     string // fallback when the session has no handle of its own
}

func NewAdminHandler(
	ledgerSvc *ledger.Service,
	sessionRepo *repository.SessionRepository,
	obligationRepo *repository.ObligationRepository,
	transactionRepo *repository.TransactionRepository,
	auditRepo *repository.NotificationLogRepository,
	linkGen *links.Generator,
	sender notify.Sender,
	adminHandle string,
) *AdminHandler {
	return &AdminHandler{
		ledger:          ledgerSvc,
		sessionRepo:     sessionRepo,
		obligationRepo:  obligationRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		links:           linkGen,
		sender:          sender,
		adminHandle:     adminHandle,
	}
}

// CreateSession is the minimal session+roster intake so the ledger has
// something to bill against. Full session management lives elsewhere.
func (h *AdminHandler) CreateSession(c *gin.Context) {
	var payload struct {
		PoolName          string  `json:"pool_name"`
		SessionDate       string  `json:"session_date"` // "2006-01-02"
		StartTime         string  `json:"start_time"`   // "18:00"
		CourtsNeeded      int     `json:"courts_needed"`
		GuestPoolPerCourt float64 `json:"guest_pool_per_court"`
		AdminCostPerCourt float64 `json:"admin_cost_per_court"`
		AdminHandle       string  `json:"admin_handle"`
		Participants      []struct {
			DisplayName   string `json:"display_name"`
			PaymentHandle string `json:"payment_handle"`
			Status        string `json:"status"`
			IsAdmin       bool   `json:"is_admin"`
		} `json:"participants"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	sessionDate, err := time.Parse("2006-01-02", payload.SessionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_date, want YYYY-MM-DD"})
		return
	}
	if payload.CourtsNeeded < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courts_needed must be at least 1"})
		return
	}

	session := &models.Session{
		ID:                uuid.New(),
		PoolName:          payload.PoolName,
		SessionDate:       sessionDate,
		StartTime:         payload.StartTime,
		CourtsNeeded:      payload.CourtsNeeded,
		GuestPoolPerCourt: payload.GuestPoolPerCourt,
		AdminCostPerCourt: payload.AdminCostPerCourt,
		AdminHandle:       payload.AdminHandle,
		CreatedAt:         time.Now(),
	}

	participants := make([]models.Participant, 0, len(payload.Participants))
	for _, p := range payload.Participants {
		status := p.Status
		if status == "" {
			status = models.ParticipantCommitted
		}
		participants = append(participants, models.Participant{
			ID:            uuid.New(),
			SessionID:     session.ID,
			DisplayName:   p.DisplayName,
			PaymentHandle: p.PaymentHandle,
			Status:        status,
			IsAdmin:       p.IsAdmin,
			CreatedAt:     time.Now(),
		})
	}

	db := h.sessionRepo.DB()
	if err := db.Create(session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(participants) > 0 {
		if err := db.Create(&participants).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"session": session, "participants": participants})
}

// LockSession freezes the roster, creates one pending obligation per guest,
// and sends each guest a payment-request message carrying the request link.
// Send failures are counted and reported but never undo the ledger writes.
func (h *AdminHandler) LockSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := h.sessionRepo.GetByID(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	obligations, err := h.ledger.CreateObligationsForSession(sessionID)
	if err != nil {
		if errors.Is(err, ledger.ErrObligationsExist) {
			c.JSON(http.StatusConflict, gin.H{"error": "session is already locked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionRepo.DB().Model(session).Update("roster_locked", true).Error; err != nil {
		log.Printf("handlers: roster_locked update failed for session %s: %v", session.ID, err)
	}

	sent, failed := 0, 0
	for i := range obligations {
		if h.sendPaymentRequest(session, &obligations[i]) {
			sent++
		} else {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"obligations":          obligations,
		"notifications_sent":   sent,
		"notifications_failed": failed,
	})
}

func (h *AdminHandler) sendPaymentRequest(session *models.Session, ob *models.PaymentObligation) bool {
	participant, err := h.sessionRepo.GetParticipant(ob.ParticipantID)
	if err != nil {
		h.auditRequest(session, ob, "", false, err.Error())
		return false
	}

	link := h.links.RequestLink(participant.PaymentHandle, ob.Amount,
		session.SessionDate, session.StartTime, session.PoolName, ob.ID)
	msg := notify.Message{
		To:      participant.PaymentHandle,
		Subject: fmt.Sprintf("Payment request for %s on %s", session.PoolName, session.SessionDate.Format("Jan 2")),
		Body: fmt.Sprintf("Hi %s, your share for %s on %s is $%.2f. Pay here: %s",
			participant.DisplayName, session.PoolName,
			session.SessionDate.Format("Jan 2"), ob.Amount, link),
	}

	if err := h.sender.Send(msg); err != nil {
		h.auditRequest(session, ob, participant.PaymentHandle, false, err.Error())
		return false
	}

	if err := h.ledger.MarkRequestSent(ob.ID); err != nil {
		h.auditRequest(session, ob, participant.PaymentHandle, false, err.Error())
		return false
	}
	h.auditRequest(session, ob, participant.PaymentHandle, true, "")
	return true
}

func (h *AdminHandler) auditRequest(session *models.Session, ob *models.PaymentObligation, recipient string, success bool, errText string) {
	sessionID := session.ID
	paymentID := ob.ID
	if err := h.auditRepo.Append(&models.NotificationLogEntry{
		EventType: models.EventRequestSent,
		SessionID: &sessionID,
		PaymentID: &paymentID,
		Recipient: recipient,
		Channel:   "email",
		Success:   success,
		ErrorText: errText,
	}); err != nil {
		log.Printf("handlers: audit write failed: %v", err)
	}
}

// ListSessionPayments returns the session's obligations.
func (h *AdminHandler) ListSessionPayments(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}
	obligations, err := h.obligationRepo.ListBySession(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": obligations})
}

// MarkPaid, Forgive and Refund are the manual admin transitions. They share
// the same state machine as the automatic token match, so a manual click
// racing an inbound email resolves to exactly one transition.
func (h *AdminHandler) MarkPaid(c *gin.Context) { h.transition(c, models.PaymentPaid) }
func (h *AdminHandler) Forgive(c *gin.Context)  { h.transition(c, models.PaymentForgiven) }
func (h *AdminHandler) Refund(c *gin.Context)   { h.transition(c, models.PaymentRefunded) }

func (h *AdminHandler) transition(c *gin.Context, newStatus string) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment ID"})
		return
	}

	var payload struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&payload) // body is optional

	ob, err := h.ledger.Transition(paymentID, newStatus, payload.Notes)
	if err != nil {
		var invalid *ledger.InvalidTransitionError
		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusConflict, gin.H{
				"error":            "invalid transition",
				"current_status":   invalid.From,
				"requested_status": invalid.To,
			})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": ob})
}

// PayLink returns the guest-side deep link for one obligation, pre-filled
// to pay the session admin.
func (h *AdminHandler) PayLink(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment ID"})
		return
	}
	ob, err := h.obligationRepo.GetByID(paymentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	session, err := h.sessionRepo.GetByID(ob.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	handle := session.AdminHandle
	if handle == "" {
		handle = h.adminHandle
	}
	link := h.links.PayLink(handle, ob.Amount,
		session.SessionDate, session.StartTime, session.PoolName, ob.ID)
	c.JSON(http.StatusOK, gin.H{"link": link})
}

// SessionAudit returns the session's notification trail in write order.
func (h *AdminHandler) SessionAudit(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}
	entries, err := h.auditRepo.ListBySession(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": entries})
}

// ReviewQueue returns heuristic-linked and unlinked transactions awaiting a
// human decision.
func (h *AdminHandler) ReviewQueue(c *gin.Context) {
	txs, err := h.transactionRepo.ListForReview()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
