// Package ingestion processes one forwarded provider email end to end:
// dedup, parse, record, match. Everything runs synchronously inside the
// webhook request; the relay's HTTP retries are the only retry mechanism.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	"dinkup-backend/internal/models"
	"dinkup-backend/internal/repository"
	"dinkup-backend/internal/services/matching"
	"dinkup-backend/internal/services/parser"

	"github.com/google/uuid"
)

// Result is what the webhook reports back to the relay.
type Result struct {
	TransactionID *uuid.UUID
	Matched       bool
	Duplicate     bool
	Parsed        bool
}

type Service struct {
	parser          *parser.Parser
	engine          *matching.Engine
	transactionRepo *repository.TransactionRepository
	auditRepo       *repository.NotificationLogRepository
}

func NewService(p *parser.Parser, engine *matching.Engine, transactionRepo *repository.TransactionRepository, auditRepo *repository.NotificationLogRepository) *Service {
	return &Service{
		parser:          p,
		engine:          engine,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
	}
}

// Process handles one delivery. Duplicate deliveries (same dedup key) and
// unparseable content both come back as successful no-ops; only storage
// failures are errors.
func (s *Service) Process(payload parser.Payload) (*Result, error) {
	key := DedupKey(payload)

	parsed := s.parser.Parse(payload)
	if parsed == nil {
		s.audit(models.EventEmailUnparseable, payload.From, true, "")
		log.Printf("ingestion: unparseable email from %s subject %q", payload.From, payload.Subject)
		return &Result{}, nil
	}

	record := &models.TransactionRecord{
		ID:            uuid.New(),
		DedupKey:      key,
		Type:          parsed.Type,
		Amount:        parsed.Amount,
		SenderName:    parsed.SenderName,
		RecipientName: parsed.RecipientName,
		Note:          parsed.Note,
		Token:         parsed.Token,
		Subject:       parsed.Subject,
		FromAddress:   parsed.FromAddress,
		ReceivedAt:    parsed.ReceivedAt,
		MatchMethod:   models.MatchNone,
	}

	inserted, err := s.transactionRepo.Insert(record)
	if err != nil {
		return nil, err
	}
	if !inserted {
		existing, err := s.transactionRepo.GetByDedupKey(key)
		if err != nil {
			return nil, err
		}
		s.audit(models.EventEmailDuplicate, payload.From, true, "")
		matched := existing.MatchedObligationID != nil
		if !existing.Processed {
			// The earlier delivery stored the record but died before the
			// matcher finished, so this retry resumes it. Safe to re-run:
			// the token tier's transition is compare-and-set and the
			// heuristic tier never mutates status.
			if matched, err = s.engine.Resolve(existing, parsed); err != nil {
				return nil, err
			}
		}
		return &Result{
			TransactionID: &existing.ID,
			Matched:       matched,
			Duplicate:     true,
			Parsed:        true,
		}, nil
	}

	s.audit(models.EventEmailIngested, payload.From, true, "")

	matched, err := s.engine.Resolve(record, parsed)
	if err != nil {
		return nil, err
	}

	return &Result{
		TransactionID: &record.ID,
		Matched:       matched,
		Parsed:        true,
	}, nil
}

// DedupKey identifies one source email across relay retries: the provider
// Message-ID when present, otherwise a hash of the stable header fields.
func DedupKey(payload parser.Payload) string {
	if payload.MessageID != "" {
		return payload.MessageID
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s", payload.From, payload.Subject, payload.Date))
	return hex.EncodeToString(sum[:])
}

func (s *Service) audit(event, from string, success bool, errText string) {
	if err := s.auditRepo.Append(&models.NotificationLogEntry{
		EventType: event,
		Recipient: from,
		Channel:   "email",
		Success:   success,
		ErrorText: errText,
	}); err != nil {
		log.Printf("ingestion: audit write failed: %v", err)
	}
}
