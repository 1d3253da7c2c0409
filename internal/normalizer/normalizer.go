package normalizer

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/nkurunziza/momo-ledger/internal/model"
)

// ValidationError names the field that failed normalization.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s %q: %s", e.Field, e.Value, e.Reason)
}

const maxAmountDigits = 12
const maxDescriptionRunes = 255
const minPhoneDigits = 10
const maxRefLen = 64

// acceptedLayouts are tried in order when parsing dates.
var acceptedLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006 15:04",
	"2 Jan 2006 15:04",
	"2006-01-02",
}

// currencyTokens map amount-text markers to ISO codes. Evaluated in
// order so mixed-marker input resolves the same way every run.
var currencyTokens = []struct {
	token string
	code  string
}{
	{"RWF", "RWF"},
	{"FRW", "RWF"},
	{"USD", "USD"},
	{"$", "USD"},
}

// Normalizer turns Candidates into NormalizedRecords. All methods are
// pure: the same input always produces the same output.
type Normalizer struct {
	DefaultCurrency    string
	DefaultPhonePrefix string
	Now                func() time.Time
}

func New(defaultCurrency, defaultPhonePrefix string) *Normalizer {
	return &Normalizer{
		DefaultCurrency:    defaultCurrency,
		DefaultPhonePrefix: defaultPhonePrefix,
		Now:                time.Now,
	}
}

// Normalize validates and cleans one candidate. The first failing field
// aborts with a *ValidationError naming it.
func (n *Normalizer) Normalize(c model.Candidate) (*model.NormalizedRecord, error) {
	ref := strings.TrimSpace(c.Ref)
	if ref == "" {
		return nil, &ValidationError{Field: "ref", Value: c.Ref, Reason: "reference code is required"}
	}
	if len(ref) > maxRefLen {
		return nil, &ValidationError{Field: "ref", Value: ref, Reason: "reference code too long"}
	}

	amount, currency, err := n.NormalizeAmount(c.Amount)
	if err != nil {
		return nil, err
	}

	occurredAt, err := n.NormalizeDate(c.Date)
	if err != nil {
		return nil, err
	}

	sender, err := n.NormalizePhone(c.SenderPhone, "sender_phone")
	if err != nil {
		return nil, err
	}
	receiver, err := n.NormalizePhone(c.ReceiverPhone, "receiver_phone")
	if err != nil {
		return nil, err
	}

	return &model.NormalizedRecord{
		Offset:        c.Offset,
		Ref:           ref,
		SenderPhone:   sender,
		ReceiverPhone: receiver,
		Amount:        amount,
		Currency:      currency,
		OccurredAt:    occurredAt,
		Description:   NormalizeDescription(c.Body),
	}, nil
}

// NormalizeAmount parses free-text money into minor units. Thousands
// separators and currency markers are tolerated; the currency is taken
// from the marker when present, otherwise the default applies.
func (n *Normalizer) NormalizeAmount(raw string) (int64, string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, "", &ValidationError{Field: "amount", Value: raw, Reason: "amount is required"}
	}

	currency := n.DefaultCurrency
	matched := false
	upper := strings.ToUpper(s)
	for _, ct := range currencyTokens {
		if strings.Contains(upper, ct.token) {
			if !matched {
				currency = ct.code
				matched = true
			}
			upper = strings.ReplaceAll(upper, ct.token, "")
		}
	}
	s = strings.TrimSpace(upper)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, "", &ValidationError{Field: "amount", Value: raw, Reason: "not a number"}
	}
	if len(intPart) > maxAmountDigits {
		return 0, "", &ValidationError{Field: "amount", Value: raw, Reason: "amount out of range"}
	}
	if len(fracPart) > 2 {
		return 0, "", &ValidationError{Field: "amount", Value: raw, Reason: "more than two decimal places"}
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	var minor int64
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, "", &ValidationError{Field: "amount", Value: raw, Reason: "not a number"}
		}
		minor = minor*10 + int64(r-'0')
	}

	if negative || minor == 0 {
		return 0, "", &ValidationError{Field: "amount", Value: raw, Reason: "amount must be positive"}
	}
	return minor, currency, nil
}

// NormalizeDate parses the accepted textual formats (plus unix seconds)
// into a single canonical UTC instant.
func (n *Normalizer) NormalizeDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &ValidationError{Field: "date", Value: raw, Reason: "date is required"}
	}

	var parsed time.Time
	var ok bool
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			parsed, ok = t, true
			break
		}
	}
	if !ok {
		if secs, isNum := parseUnixSeconds(s); isNum {
			parsed, ok = time.Unix(secs, 0), true
		}
	}
	if !ok {
		return time.Time{}, &ValidationError{Field: "date", Value: raw, Reason: "unrecognized date format"}
	}

	parsed = parsed.UTC()
	min := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	max := n.Now().UTC().Add(24 * time.Hour)
	if parsed.Before(min) || !parsed.Before(max) {
		return time.Time{}, &ValidationError{Field: "date", Value: raw, Reason: "date out of range"}
	}
	return parsed, nil
}

func parseUnixSeconds(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var v int64
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, false
		}
		v = v*10 + int64(r-'0')
	}
	return v, true
}

// NormalizePhone strips formatting and produces the canonical +<digits>
// international form. Local 0-prefixed numbers get the default country
// prefix. field is reported in the ValidationError on rejection.
func (n *Normalizer) NormalizePhone(raw string, field string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	// local form: 07xxxxxxxx -> <prefix>7xxxxxxxx
	if strings.HasPrefix(d, "0") && n.DefaultPhonePrefix != "" {
		d = n.DefaultPhonePrefix + d[1:]
	}

	if len(d) < minPhoneDigits {
		return "", &ValidationError{Field: field, Value: raw, Reason: "fewer than 10 digits"}
	}
	if len(d) > 15 {
		return "", &ValidationError{Field: field, Value: raw, Reason: "more than 15 digits"}
	}
	return "+" + d, nil
}

// NormalizeDescription trims, collapses inner whitespace and caps length.
// Empty is allowed.
func NormalizeDescription(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	runes := []rune(s)
	if len(runes) > maxDescriptionRunes {
		s = string(runes[:maxDescriptionRunes])
	}
	return s
}
