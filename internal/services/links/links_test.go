package links

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

func TestRequestLink(t *testing.T) {
	g := NewGenerator("Pickleball", "dinkup")
	obID := uuid.New()

	link := g.RequestLink("jsmith", 16.00, testDate, "18:00", "Sunset Courts", obID)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "venmo.com", parsed.Host)
	assert.Equal(t, "/jsmith", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "charge", q.Get("txn"))
	assert.Equal(t, "16.00", q.Get("amount"))
	assert.Equal(t, "Pickleball - Sunset Courts - Mar 14, 2026 @ 6:00 PM #dinkup-"+obID.String(), q.Get("note"))
}

func TestPayLink(t *testing.T) {
	g := NewGenerator("Pickleball", "dinkup")
	obID := uuid.New()

	link := g.PayLink("@admin-user", 24.50, testDate, "09:30", "Main Pool", obID)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/admin-user", parsed.Path, "leading @ is stripped")

	q := parsed.Query()
	assert.Equal(t, "pay", q.Get("txn"))
	assert.Equal(t, "24.50", q.Get("amount"))
	assert.True(t, strings.HasSuffix(q.Get("note"), "#dinkup-"+obID.String()))
	assert.Contains(t, q.Get("note"), "9:30 AM")
}

func TestNoteIsURLEncoded(t *testing.T) {
	g := NewGenerator("Pickleball", "dinkup")
	link := g.RequestLink("jsmith", 16, testDate, "18:00", "Sunset Courts", uuid.New())
	// The raw URL must not contain unencoded spaces or hashes from the note.
	assert.NotContains(t, link, " ")
	assert.NotContains(t, link, "#")
}

func TestNoteSuffixFormat(t *testing.T) {
	// The "#<namespace>-<uuid>" suffix is the contract the parser's token
	// regex depends on.
	g := NewGenerator("Pickleball", "dinkup")
	obID := uuid.MustParse("6e08a5d4-9d2f-4b6a-8f0e-33c21f3f6a10")
	note := g.Note(testDate, "18:00", "Sunset Courts", obID)
	assert.True(t, strings.HasSuffix(note, "#dinkup-6e08a5d4-9d2f-4b6a-8f0e-33c21f3f6a10"))
}

func TestAmountAlwaysTwoDecimals(t *testing.T) {
	g := NewGenerator("Pickleball", "dinkup")
	link := g.RequestLink("jsmith", 16, testDate, "18:00", "Sunset Courts", uuid.New())
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "16.00", parsed.Query().Get("amount"))
}

func TestFormatTimePassthrough(t *testing.T) {
	g := NewGenerator("Pickleball", "dinkup")
	note := g.Note(testDate, "evening", "Sunset Courts", uuid.New())
	assert.Contains(t, note, "@ evening")
}
