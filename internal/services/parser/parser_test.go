package parser

import (
	"testing"

	"dinkup-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParser() *Parser {
	return New(Config{Namespaces: []string{"dinkup", "pay", "payment", "session"}})
}

func TestParseSubjectPatterns(t *testing.T) {
	tests := []struct {
		name       string
		subject    string
		wantType   string
		wantAmount float64
		wantSender string
		wantRecip  string
	}{
		{"payment sent", "You paid John Smith $16.00", models.TxPaymentSent, 16.00, "You", "John Smith"},
		{"payment received", "jsmith paid you $16.00", models.TxPaymentReceived, 16.00, "jsmith", "You"},
		{"request sent", "You requested $24.50 from Maria Lopez", models.TxRequestSent, 24.50, "You", "Maria Lopez"},
		{"request received", "Dan Brown requests $12.00", models.TxRequestReceived, 12.00, "Dan Brown", "You"},
		{"thousands separator", "Big Spender paid you $1,250.00", models.TxPaymentReceived, 1250.00, "Big Spender", "You"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := testParser().Parse(Payload{From: "venmo@venmo.com", Subject: tt.subject})
			require.NotNil(t, parsed)
			assert.Equal(t, tt.wantType, parsed.Type)
			assert.InDelta(t, tt.wantAmount, parsed.Amount, 1e-9)
			assert.Equal(t, tt.wantSender, parsed.SenderName)
			assert.Equal(t, tt.wantRecip, parsed.RecipientName)
		})
	}
}

func TestParseStripsForwardingPrefixes(t *testing.T) {
	subjects := []string{
		"Fwd: jsmith paid you $16.00",
		"FW: jsmith paid you $16.00",
		"Re: Fwd: jsmith paid you $16.00",
		"fwd: fwd: fwd: jsmith paid you $16.00",
	}
	for _, subject := range subjects {
		parsed := testParser().Parse(Payload{Subject: subject})
		require.NotNil(t, parsed, "subject: %s", subject)
		assert.Equal(t, models.TxPaymentReceived, parsed.Type)
		assert.Equal(t, "jsmith", parsed.SenderName)
	}
}

func TestParseNonTransactionReturnsNil(t *testing.T) {
	subjects := []string{
		"Your weekly newsletter",
		"Reminder: court booking tomorrow",
		"",
		"jsmith sent you a friend request",
	}
	for _, subject := range subjects {
		assert.Nil(t, testParser().Parse(Payload{Subject: subject}), "subject: %s", subject)
	}
}

func TestParseMalformedAmountFailsWholeParse(t *testing.T) {
	// A recognized pattern with a garbage amount must not produce a record.
	subjects := []string{
		"jsmith paid you $16.0.0",
		"jsmith paid you $,,",
		"You paid Bob $1.2.3",
	}
	for _, subject := range subjects {
		assert.Nil(t, testParser().Parse(Payload{Subject: subject}), "subject: %s", subject)
	}
}

func TestParseExtractsTokenFromBody(t *testing.T) {
	parsed := testParser().Parse(Payload{
		Subject: "jsmith paid you $16.00",
		Text:    "jsmith paid you $16.00\nPickleball - Sunset Courts - Mar 14, 2026 @ 6:00 PM #dinkup-6e08a5d4-9d2f-4b6a-8f0e-33c21f3f6a10",
	})
	require.NotNil(t, parsed)
	assert.Equal(t, "6e08a5d4-9d2f-4b6a-8f0e-33c21f3f6a10", parsed.Token)
}

func TestParseTokenNamespaceVariants(t *testing.T) {
	for _, body := range []string{
		"note #pay-abc123",
		"note #payment_abc123",
		"note #session-abc123",
		"note #DINKUP-abc123",
	} {
		parsed := testParser().Parse(Payload{Subject: "jsmith paid you $16.00", Text: body})
		require.NotNil(t, parsed)
		assert.Equal(t, "abc123", parsed.Token, "body: %s", body)
	}
}

func TestParseTokenFallsBackToSubjectThenPayload(t *testing.T) {
	p := testParser()

	// Token only in subject.
	parsed := p.Parse(Payload{Subject: "jsmith paid you $16.00 #dinkup-tok42"})
	require.NotNil(t, parsed)
	assert.Equal(t, "tok42", parsed.Token)

	// Token only in the HTML part.
	parsed = p.Parse(Payload{
		Subject: "jsmith paid you $16.00",
		HTML:    `<html><body><p>for "pickleball" #dinkup-tok99</p></body></html>`,
	})
	require.NotNil(t, parsed)
	assert.Equal(t, "tok99", parsed.Token)
}

func TestParseUUIDHashtagFallback(t *testing.T) {
	// Unknown namespace, but the hashtag carries a UUID: fallback matcher
	// should still find it.
	parsed := testParser().Parse(Payload{
		Subject: "jsmith paid you $16.00",
		Text:    "thanks! #pball-6E08A5D4-9D2F-4B6A-8F0E-33C21F3F6A10",
	})
	require.NotNil(t, parsed)
	assert.Equal(t, "6e08a5d4-9d2f-4b6a-8f0e-33c21f3f6a10", parsed.Token)
}

func TestParseHexColorNeverBecomesToken(t *testing.T) {
	parsed := testParser().Parse(Payload{
		Subject: "jsmith paid you $16.00",
		HTML:    `<div style="color:#2f3033">jsmith paid you</div><span style="background:#ffffff">$16.00</span>`,
	})
	require.NotNil(t, parsed)
	assert.Empty(t, parsed.Token)

	// Hex fragments surviving into plaintext must not match either.
	parsed = testParser().Parse(Payload{
		Subject: "jsmith paid you $16.00",
		Text:    "jsmith paid you $16.00\ncolor: #2f3033; background: #ffffff",
	})
	require.NotNil(t, parsed)
	assert.Empty(t, parsed.Token)
}

func TestParseNoteFromQuotedString(t *testing.T) {
	parsed := testParser().Parse(Payload{
		Subject: "jsmith paid you $16.00",
		Text:    `jsmith paid you $16.00 for "Sunday pickleball session"`,
	})
	require.NotNil(t, parsed)
	assert.Equal(t, "Sunday pickleball session", parsed.Note)
}

func TestParseNoteFromLabel(t *testing.T) {
	parsed := testParser().Parse(Payload{
		Subject: "jsmith paid you $16.00",
		Text:    "jsmith paid you $16.00\nNote: thanks for organizing",
	})
	require.NotNil(t, parsed)
	assert.Equal(t, "thanks for organizing", parsed.Note)
}

func TestParseNoteFromHashtagLine(t *testing.T) {
	parsed := testParser().Parse(Payload{
		Subject: "jsmith paid you $16.00",
		Text:    "jsmith paid you $16.00\nPickleball - Sunset Courts #dinkup-tok42\nfooter text",
	})
	require.NotNil(t, parsed)
	assert.Equal(t, "Pickleball - Sunset Courts #dinkup-tok42", parsed.Note)
}

func TestParseNoteRejectsCSSGarbage(t *testing.T) {
	parsed := testParser().Parse(Payload{
		Subject: "jsmith paid you $16.00",
		HTML: `<html><head><style>.x{font-family:"Helvetica Neue",Arial}</style></head>
<body><table width="600"><tr><td>jsmith paid you $16.00</td></tr></table></body></html>`,
	})
	require.NotNil(t, parsed)
	assert.NotContains(t, parsed.Note, "font-family")
	assert.NotContains(t, parsed.Note, "Helvetica")
}

func TestLooksLikeGarbage(t *testing.T) {
	garbage := []string{
		`font-family: Arial, sans-serif`,
		`margin:0;padding:0`,
		`color: #2f3033`,
		`background #ffffff solid`,
		`<div class=`,
		`width="600" border="0"`,
		`:;{}[]()!!--++==`,
		``,
	}
	for _, s := range garbage {
		assert.True(t, LooksLikeGarbage(s), "should reject: %q", s)
	}

	clean := []string{
		"Sunday pickleball session",
		"thanks for organizing!",
		"Pickleball - Sunset Courts - Mar 14, 2026 @ 6:00 PM #dinkup-tok42",
	}
	for _, s := range clean {
		assert.False(t, LooksLikeGarbage(s), "should keep: %q", s)
	}
}

func TestNormalizeSubject(t *testing.T) {
	assert.Equal(t, "You paid Bob $5.00", NormalizeSubject("Fwd: Fwd: You paid Bob $5.00"))
	assert.Equal(t, "hello", NormalizeSubject("  RE: fw: hello"))
	assert.Equal(t, "plain", NormalizeSubject("plain"))
}

func TestStripHTML(t *testing.T) {
	text := StripHTML(`<html><head><style>body{margin:0}</style></head><body><p>jsmith paid you</p><b>$16.00</b></body></html>`)
	assert.Contains(t, text, "jsmith paid you")
	assert.Contains(t, text, "$16.00")
	assert.NotContains(t, text, "margin")
	assert.NotContains(t, text, "<p>")
}
