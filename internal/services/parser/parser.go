// Package parser turns forwarded payment-provider notification emails into
// structured transaction candidates. Provider emails arrive mangled in every
// way a forwarding chain can manage: subject prefixes, missing plaintext
// bodies, notes buried in stripped HTML full of CSS noise. The parser is
// deliberately conservative: when in doubt it returns nil (unparseable)
// rather than a record with garbage in it.
package parser

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dinkup-backend/internal/models"
)

// Payload is the forwarded-email body as delivered by the mail relay.
type Payload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
	Date      string `json:"date"`
	MessageID string `json:"messageId"`
}

// ParsedEmail is a candidate transaction extracted from one email.
type ParsedEmail struct {
	Type          string
	Amount        float64
	SenderName    string
	RecipientName string
	Note          string
	Token         string
	Subject       string
	FromAddress   string
	ReceivedAt    time.Time
}

// Config is the parser's knobs, passed explicitly so tests never touch the
// process environment.
type Config struct {
	// Namespaces recognized in reconciliation hashtags (#<ns>-<token>).
	Namespaces []string
	// MaxNoteLen caps quoted-string note candidates. Zero means 500.
	MaxNoteLen int
}

type Parser struct {
	cfg      Config
	patterns []subjectPattern
	tokenRe  *regexp.Regexp
}

// subjectPattern binds one provider subject format to a transaction type.
// Patterns are tried in order and the first match wins.
type subjectPattern struct {
	re     *regexp.Regexp
	txType string
	// extract pulls (counterpartyName, amountText) out of the submatches.
	extract func(m []string) (string, string)
}

const selfName = "You"

// Amount capture is deliberately loose; strconv decides what's a number so
// that "You paid Bob $1.2.3" fails the whole parse instead of matching a
// tighter regex partially.
const amountPat = `\$([\d,.]+)`

func New(cfg Config) *Parser {
	if cfg.MaxNoteLen == 0 {
		cfg.MaxNoteLen = 500
	}
	first := func(m []string) (string, string) { return m[1], m[2] }
	second := func(m []string) (string, string) { return m[2], m[1] }
	return &Parser{
		cfg: cfg,
		patterns: []subjectPattern{
			{regexp.MustCompile(`(?i)^You paid (.+?) ` + amountPat), models.TxPaymentSent, first},
			{regexp.MustCompile(`(?i)^(.+?) paid you ` + amountPat), models.TxPaymentReceived, first},
			{regexp.MustCompile(`(?i)^You requested ` + amountPat + ` from (.+?)\s*$`), models.TxRequestSent, second},
			{regexp.MustCompile(`(?i)^(.+?) requests ` + amountPat), models.TxRequestReceived, first},
		},
		tokenRe: buildTokenRe(cfg.Namespaces),
	}
}

func buildTokenRe(namespaces []string) *regexp.Regexp {
	quoted := make([]string, len(namespaces))
	for i, ns := range namespaces {
		quoted[i] = regexp.QuoteMeta(ns)
	}
	return regexp.MustCompile(`(?i)#(?:` + strings.Join(quoted, "|") + `)[-_]([A-Za-z0-9][A-Za-z0-9-]*)`)
}

// Parse classifies the email and extracts a candidate transaction.
// Returns nil when the email is not a transaction we understand; that is
// an expected outcome, not an error.
func (p *Parser) Parse(payload Payload) *ParsedEmail {
	subject := NormalizeSubject(payload.Subject)

	var matched *subjectPattern
	var groups []string
	for i := range p.patterns {
		if m := p.patterns[i].re.FindStringSubmatch(subject); m != nil {
			matched = &p.patterns[i]
			groups = m
			break
		}
	}
	if matched == nil {
		return nil
	}

	name, amountText := matched.extract(groups)
	amount, ok := parseAmount(amountText)
	if !ok {
		return nil
	}

	parsed := &ParsedEmail{
		Type:        matched.txType,
		Amount:      amount,
		Subject:     payload.Subject,
		FromAddress: payload.From,
		ReceivedAt:  parseDate(payload.Date),
	}
	name = strings.TrimSpace(name)
	switch matched.txType {
	case models.TxPaymentSent, models.TxRequestSent:
		parsed.SenderName = selfName
		parsed.RecipientName = name
	default:
		parsed.SenderName = name
		parsed.RecipientName = selfName
	}

	// Note text and the reconciliation token wander between body, subject,
	// and assorted metadata depending on the mail client in the forwarding
	// path, so each extraction walks the same source ladder.
	body := bodyText(payload)
	sources := []string{body, payload.Subject, serialize(payload)}
	parsed.Note = p.extractNote(sources)
	parsed.Token = p.extractToken(sources)

	return parsed
}

// NormalizeSubject strips any pile-up of forwarding/reply prefixes.
var fwdPrefixRe = regexp.MustCompile(`(?i)^\s*(?:fwd?|re)\s*:\s*`)

func NormalizeSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for {
		stripped := fwdPrefixRe.ReplaceAllString(s, "")
		if stripped == s {
			return s
		}
		s = stripped
	}
}

func parseAmount(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	cleaned = strings.TrimRight(cleaned, ".") // trailing sentence punctuation
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0, false
	}
	return amount, true
}

func parseDate(text string) time.Time {
	if text == "" {
		return time.Now()
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339, time.RFC822Z} {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Now()
}

// bodyText prefers the plaintext part; HTML is a fallback that gets
// tag-stripped first.
func bodyText(payload Payload) string {
	if strings.TrimSpace(payload.Text) != "" {
		return payload.Text
	}
	return StripHTML(payload.HTML)
}

func serialize(payload Payload) string {
	return strings.Join([]string{
		payload.From, payload.To, payload.Subject,
		payload.Text, StripHTML(payload.HTML), payload.Date,
	}, "\n")
}

var (
	styleBlockRe  = regexp.MustCompile(`(?is)<(style|script)[^>]*>.*?</(style|script)>`)
	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]+>`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

// StripHTML reduces an HTML body to rough plaintext. Good enough for note
// hunting; not a general-purpose renderer.
func StripHTML(raw string) string {
	if raw == "" {
		return ""
	}
	s := styleBlockRe.ReplaceAllString(raw, " ")
	s = htmlCommentRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, "\n")
	s = html.UnescapeString(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankRunRe.ReplaceAllString(s, "\n\n"))
}

var (
	quotedRe = regexp.MustCompile(`"([^"\n]{1,500})"`)
	labelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*(?:note|message)\s*:\s*(\S.*)$`),
		regexp.MustCompile(`(?i)\bfor\s+"([^"\n]+)"`),
	}
)

// extractNote walks sources in priority order; within each source the
// extractors run quoted-string first, then label patterns, then a hashtag
// line. First candidate that survives the garbage filter wins.
func (p *Parser) extractNote(sources []string) string {
	for _, src := range sources {
		if src == "" {
			continue
		}
		if note := p.noteFrom(src); note != "" {
			return note
		}
	}
	return ""
}

func (p *Parser) noteFrom(src string) string {
	for _, m := range quotedRe.FindAllStringSubmatch(src, -1) {
		candidate := strings.TrimSpace(m[1])
		if len(candidate) <= p.cfg.MaxNoteLen && !LooksLikeGarbage(candidate) {
			return candidate
		}
	}
	for _, re := range labelRes {
		if m := re.FindStringSubmatch(src); m != nil {
			candidate := strings.TrimSpace(m[1])
			if candidate != "" && !LooksLikeGarbage(candidate) {
				return candidate
			}
		}
	}
	for _, line := range strings.Split(src, "\n") {
		if p.tokenRe.MatchString(line) || uuidHashtagRe.MatchString(line) {
			candidate := strings.TrimSpace(line)
			if !LooksLikeGarbage(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// uuidHashtagRe is the fallback token shape: any hashtag segment carrying a
// UUID. Requiring the full 8-4-4-4-12 form keeps #2f3033-style CSS color
// fragments out.
var uuidHashtagRe = regexp.MustCompile(`(?i)#[^\s#]*?([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)

func (p *Parser) extractToken(sources []string) string {
	for _, src := range sources {
		if src == "" {
			continue
		}
		if m := p.tokenRe.FindStringSubmatch(src); m != nil {
			return m[1]
		}
		if m := uuidHashtagRe.FindStringSubmatch(src); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return ""
}

var (
	cssPropRe  = regexp.MustCompile(`(?i)\b(?:font-family|font-size|font-weight|line-height|text-align|margin|padding|border|background|color|width|height|display)\s*:`)
	hexColorRe = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	htmlBitsRe = regexp.MustCompile(`(?i)</?[a-z][a-z0-9-]*(?:\s|/?>|$)|\b[a-z-]+\s*=\s*["']`)
)

// LooksLikeGarbage rejects note candidates that are almost certainly
// residue of stripped HTML: CSS declarations, hex colors, tag/attribute
// fragments, or strings that are mostly punctuation.
func LooksLikeGarbage(s string) bool {
	if s == "" {
		return true
	}
	if cssPropRe.MatchString(s) || hexColorRe.MatchString(s) || htmlBitsRe.MatchString(s) {
		return true
	}
	alnum := 0
	total := 0
	for _, r := range s {
		total++
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			alnum++
		}
	}
	return float64(alnum) < 0.3*float64(total)
}
