// Package matching links parsed transactions to payment obligations. Tier 1
// is deterministic (reconciliation token + amount check) and may move the
// obligation to paid; tier 2 is a fuzzy amount+name heuristic that only ever
// proposes a link for manual review. Tiers run as an ordered pipeline so a
// future third strategy is an append, not a rewrite.
package matching

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"dinkup-backend/internal/models"
	"dinkup-backend/internal/repository"
	"dinkup-backend/internal/services/costs"
	"dinkup-backend/internal/services/ledger"
	"dinkup-backend/internal/services/parser"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match is one strategy's proposal. AutoTransition is only ever true for
// the token tier; heuristic matches are not reliable enough to move money.
type Match struct {
	ObligationID   uuid.UUID
	Method         string
	AutoTransition bool
	Detail         map[string]interface{}
}

type Strategy interface {
	Name() string
	Match(parsed *parser.ParsedEmail) (*Match, error)
}

// heuristicCandidateLimit bounds the pending-obligation scan for a popular
// amount.
const heuristicCandidateLimit = 50

type Engine struct {
	strategies   []Strategy
	ledger       *ledger.Service
	transactions *repository.TransactionRepository
	auditRepo    *repository.NotificationLogRepository
}

func NewEngine(ledgerSvc *ledger.Service, sessionRepo *repository.SessionRepository, transactionRepo *repository.TransactionRepository, auditRepo *repository.NotificationLogRepository) *Engine {
	return &Engine{
		strategies: []Strategy{
			&tokenStrategy{obligations: ledgerSvc.ObligationRepo()},
			&heuristicStrategy{obligations: ledgerSvc.ObligationRepo(), sessions: sessionRepo},
		},
		ledger:       ledgerSvc,
		transactions: transactionRepo,
		auditRepo:    auditRepo,
	}
}

// Resolve runs the pipeline against a stored TransactionRecord and applies
// the first strategy that produces a match: links the record, optionally
// transitions the obligation, and audits which tier decided. The record is
// saved in its final shape either way.
func (e *Engine) Resolve(tx *models.TransactionRecord, parsed *parser.ParsedEmail) (bool, error) {
	for _, strategy := range e.strategies {
		match, err := strategy.Match(parsed)
		if err != nil {
			return false, err
		}
		if match == nil {
			continue
		}
		return true, e.apply(tx, match)
	}

	tx.MatchMethod = models.MatchNone
	tx.Processed = true
	if err := e.transactions.Save(tx); err != nil {
		return false, err
	}
	e.audit(models.EventNoMatch, tx, nil, true, "")
	return false, nil
}

func (e *Engine) apply(tx *models.TransactionRecord, match *Match) error {
	obligationID := match.ObligationID
	tx.MatchedObligationID = &obligationID
	tx.MatchMethod = match.Method
	tx.NeedsReview = !match.AutoTransition
	tx.Processed = true
	if detail, err := json.Marshal(match.Detail); err == nil {
		tx.MatchDetails = detail
	}

	var transitionErr error
	if match.AutoTransition {
		note := fmt.Sprintf("auto-matched via token #%s", tx.Token)
		if _, transitionErr = e.ledger.Transition(obligationID, models.PaymentPaid, note); transitionErr != nil {
			// The link stands even when the transition was refused (e.g.
			// payment arrived for a forgiven obligation); flag for a human
			// instead of failing the webhook.
			tx.NeedsReview = true
		}
	}

	if err := e.transactions.Save(tx); err != nil {
		return err
	}

	event := models.EventTokenMatch
	if match.Method == models.MatchHeuristic {
		event = models.EventHeuristicMatch
	}
	if transitionErr != nil {
		e.audit(event, tx, &obligationID, false, transitionErr.Error())
	} else {
		e.audit(event, tx, &obligationID, true, "")
	}
	return nil
}

func (e *Engine) audit(event string, tx *models.TransactionRecord, obligationID *uuid.UUID, success bool, errText string) {
	if err := e.auditRepo.Append(&models.NotificationLogEntry{
		EventType: event,
		PaymentID: obligationID,
		Recipient: tx.FromAddress,
		Channel:   "email",
		Success:   success,
		ErrorText: errText,
	}); err != nil {
		log.Printf("matching: audit write failed: %v", err)
	}
}

// tokenStrategy: the embedded reconciliation token is the obligation id.
// Amount must agree within a cent; a mismatch or unknown id falls through to
// the next tier rather than erroring, since tokens survive forwarding chains
// imperfectly.
type tokenStrategy struct {
	obligations *repository.ObligationRepository
}

func (s *tokenStrategy) Name() string { return "token" }

func (s *tokenStrategy) Match(parsed *parser.ParsedEmail) (*Match, error) {
	if parsed.Token == "" {
		return nil, nil
	}
	id, err := uuid.Parse(parsed.Token)
	if err != nil {
		return nil, nil
	}
	ob, err := s.obligations.GetByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !costs.AmountsEqual(ob.Amount, parsed.Amount) {
		return nil, nil
	}
	return &Match{
		ObligationID:   ob.ID,
		Method:         models.MatchToken,
		AutoTransition: true,
		Detail: map[string]interface{}{
			"strategy":          s.Name(),
			"token":             parsed.Token,
			"obligation_amount": ob.Amount,
			"parsed_amount":     parsed.Amount,
		},
	}, nil
}

// heuristicStrategy: exact amount plus fuzzy sender-name comparison against
// each pending obligation's participant. Applies only to money actually
// received, and never auto-transitions.
type heuristicStrategy struct {
	obligations *repository.ObligationRepository
	sessions    *repository.SessionRepository
}

func (s *heuristicStrategy) Name() string { return "heuristic" }

func (s *heuristicStrategy) Match(parsed *parser.ParsedEmail) (*Match, error) {
	if parsed.Type != models.TxPaymentReceived {
		return nil, nil
	}
	candidates, err := s.obligations.FindPendingByAmount(parsed.Amount, heuristicCandidateLimit)
	if err != nil {
		return nil, err
	}
	for _, ob := range candidates {
		participant, err := s.sessions.GetParticipant(ob.ParticipantID)
		if err != nil {
			continue
		}
		if NamesMatch(parsed.SenderName, participant.DisplayName) {
			return &Match{
				ObligationID:   ob.ID,
				Method:         models.MatchHeuristic,
				AutoTransition: false,
				Detail: map[string]interface{}{
					"strategy":         s.Name(),
					"sender_name":      parsed.SenderName,
					"participant_name": participant.DisplayName,
					"amount":           parsed.Amount,
					"candidate_count":  len(candidates),
				},
			}, nil
		}
	}
	return nil, nil
}

// nicknames maps common short forms to a canonical first name so that
// "Mike" on the payment matches participant "Michael Chen".
var nicknames = map[string]string{
	"mike":        "michael",
	"michael":     "michael",
	"bob":         "robert",
	"robert":      "robert",
	"dan":         "daniel",
	"daniel":      "daniel",
	"will":        "william",
	"william":     "william",
	"chris":       "christopher",
	"christopher": "christopher",
	"jon":         "john",
	"john":        "john",
	"jonathan":    "john",
	"matt":        "matthew",
	"matthew":     "matthew",
}

// NamesMatch reports whether a payment's sender display name plausibly
// refers to the participant: case-insensitive containment in either
// direction, or first-name nickname equivalence.
func NamesMatch(senderName, participantName string) bool {
	a := strings.ToLower(strings.TrimSpace(senderName))
	b := strings.ToLower(strings.TrimSpace(participantName))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	aFirst := firstToken(a)
	bFirst := firstToken(b)
	if ca, ok := nicknames[aFirst]; ok {
		if cb, ok := nicknames[bFirst]; ok {
			return ca == cb
		}
	}
	return false
}

func firstToken(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
