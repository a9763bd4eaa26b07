// Package links builds venmo deep links for requesting and sending money.
// Every note carries a trailing reconciliation hashtag; the parser's token
// regex depends on that exact "#<namespace>-<uuid>" shape, so the two must
// change together.
package links

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const baseURL = "https://venmo.com/"

type Generator struct {
	Activity  string // e.g. "Pickleball"
	Namespace string // e.g. "dinkup"
}

func NewGenerator(activity, namespace string) *Generator {
	return &Generator{Activity: activity, Namespace: namespace}
}

// RequestLink is the admin-side "charge" link asking a guest for their share.
func (g *Generator) RequestLink(guestHandle string, amount float64, sessionDate time.Time, startTime, poolName string, obligationID uuid.UUID) string {
	return g.build(guestHandle, "charge", amount, sessionDate, startTime, poolName, obligationID)
}

// PayLink is the guest-side link pre-filled to pay the admin.
func (g *Generator) PayLink(adminHandle string, amount float64, sessionDate time.Time, startTime, poolName string, obligationID uuid.UUID) string {
	return g.build(adminHandle, "pay", amount, sessionDate, startTime, poolName, obligationID)
}

// Note returns the human-readable memo plus reconciliation suffix, e.g.
// "Pickleball - Sunset Courts - Mar 14, 2026 @ 6:00 PM #dinkup-<uuid>".
func (g *Generator) Note(sessionDate time.Time, startTime, poolName string, obligationID uuid.UUID) string {
	return fmt.Sprintf("%s - %s - %s @ %s #%s-%s",
		g.Activity, poolName,
		sessionDate.Format("Jan 2, 2006"), formatTime(startTime),
		g.Namespace, obligationID)
}

func (g *Generator) build(handle, txn string, amount float64, sessionDate time.Time, startTime, poolName string, obligationID uuid.UUID) string {
	params := url.Values{}
	params.Set("txn", txn)
	params.Set("amount", fmt.Sprintf("%.2f", amount))
	params.Set("note", g.Note(sessionDate, startTime, poolName, obligationID))
	return baseURL + url.PathEscape(normalizeHandle(handle)) + "?" + params.Encode()
}

func normalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// formatTime renders a 24h "HH:MM" start time as "3:04 PM"; anything it
// can't parse passes through untouched.
func formatTime(startTime string) string {
	t, err := time.Parse("15:04", strings.TrimSpace(startTime))
	if err != nil {
		return startTime
	}
	return t.Format("3:04 PM")
}
