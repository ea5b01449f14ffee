package paymenttoken

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidCardNumber = errors.New("invalid card number")
	ErrInvalidExpiry     = errors.New("invalid expiry date")
)

// DetectCardType returns the type code for a card number from its IIN
// prefix, or "" when the brand is not recognised.
func DetectCardType(number string) string {
	n := digitsOnly(number)
	switch {
	case strings.HasPrefix(n, "4"):
		return "visa"
	case hasPrefixRange(n, 2, 51, 55), hasPrefixRange(n, 4, 2221, 2720):
		return "mc"
	case strings.HasPrefix(n, "34"), strings.HasPrefix(n, "37"):
		return "amex"
	case strings.HasPrefix(n, "6011"), strings.HasPrefix(n, "65"), hasPrefixRange(n, 3, 644, 649):
		return "disc"
	case strings.HasPrefix(n, "36"), strings.HasPrefix(n, "38"), hasPrefixRange(n, 3, 300, 305):
		return "diners"
	case hasPrefixRange(n, 4, 3528, 3589):
		return "jcb"
	}
	return ""
}

// ValidLuhn reports whether number passes the Luhn checksum.
func ValidLuhn(number string) bool {
	n := digitsOnly(number)
	if len(n) < 12 || len(n) != len(strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")) {
		return false
	}

	var sum int
	shouldDouble := false
	for i := len(n) - 1; i >= 0; i-- {
		digit := int(n[i] - '0')
		if shouldDouble {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		shouldDouble = !shouldDouble
	}
	return sum%10 == 0
}

// LastFourOf returns the last four digits of an account number.
func LastFourOf(number string) string {
	n := digitsOnly(number)
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}

// ValidateExpiry checks a two digit month and a two or four digit year and
// returns them normalised to "MM" and "YYYY".
func ValidateExpiry(month, year string) (string, string, error) {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", "", ErrInvalidExpiry
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 0 {
		return "", "", ErrInvalidExpiry
	}
	switch len(year) {
	case 2:
		y += 2000
	case 4:
	default:
		return "", "", ErrInvalidExpiry
	}
	return leftPad(strconv.Itoa(m), 2), strconv.Itoa(y), nil
}

// IsExpired reports whether a card token has expired at the given time. A
// card stays valid through the last day of its expiry month. eChecks and
// cards without a readable expiry never expire.
func (t *PaymentToken) IsExpired(at time.Time) bool {
	c, ok := t.instrument.(Card)
	if !ok {
		return false
	}
	m, err := strconv.Atoi(c.ExpMonth)
	if err != nil || m < 1 || m > 12 {
		return false
	}
	y, err := strconv.Atoi(c.ExpYear)
	if err != nil {
		return false
	}
	firstOfNext := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, at.Location()).AddDate(0, 1, 0)
	return !at.Before(firstOfNext)
}

// MaskedNumber renders the account number for display, ie "•••• 4242".
func (t *PaymentToken) MaskedNumber() string {
	return "•••• " + t.LastFour()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasPrefixRange(n string, width, lo, hi int) bool {
	if len(n) < width {
		return false
	}
	p, err := strconv.Atoi(n[:width])
	if err != nil {
		return false
	}
	return p >= lo && p <= hi
}

func leftPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
