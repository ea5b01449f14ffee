package charges

import (
	"errors"
	"strings"
	"time"

	"paygate/internal/paymenttoken"
)

var nowFunc = time.Now

var (
	ErrDirectTokenization = errors.New("direct card tokenization is not supported - please use Stripe Elements or Mobile SDK")
	ErrUnknownToken       = errors.New("unknown payment token")
)

// Tokenizer turns card details into a gateway payment token.
type Tokenizer interface {
	TokenizeCard(number, expMonth, expYear string) (paymenttoken.Card, string, error)
	DescribeToken(token, expMonth, expYear string) (paymenttoken.Card, error)
}

// TestTokenizer knows Stripe's test cards and test tokens. Real card
// numbers must be tokenized client side.
type TestTokenizer struct {
	cards  map[string]string
	tokens map[string]string
}

func NewTestTokenizer() *TestTokenizer {
	return &TestTokenizer{
		cards: map[string]string{
			"4242424242424242": "tok_visa",
			"4000056655665556": "tok_visa_debit",
			"5555555555554444": "tok_mastercard",
			"2223003122003222": "tok_mastercard",
			"5200828282828210": "tok_mastercard_debit",
			"378282246310005":  "tok_amex",
			"371449635398431":  "tok_amex",
			"6011111111111117": "tok_discover",
			"3056930009020004": "tok_diners",
			"36227206271667":   "tok_diners",
			"3566002020360505": "tok_jcb",
		},
		tokens: map[string]string{
			"tok_visa":             "4242",
			"tok_visa_debit":       "5556",
			"tok_mastercard":       "4444",
			"tok_mastercard_debit": "8210",
			"tok_amex":             "0005",
			"tok_discover":         "1117",
			"tok_diners":           "0004",
			"tok_jcb":              "0505",
		},
	}
}

// TokenizeCard returns the card and token for a Stripe test card number.
func (t *TestTokenizer) TokenizeCard(number, expMonth, expYear string) (paymenttoken.Card, string, error) {
	number = strings.NewReplacer(" ", "", "-", "").Replace(number)
	if !paymenttoken.ValidLuhn(number) {
		return paymenttoken.Card{}, "", paymenttoken.ErrInvalidCardNumber
	}

	month, year, err := paymenttoken.ValidateExpiry(expMonth, expYear)
	if err != nil {
		return paymenttoken.Card{}, "", err
	}

	token, ok := t.cards[number]
	if !ok {
		return paymenttoken.Card{}, "", ErrDirectTokenization
	}

	card := paymenttoken.Card{
		Type:     paymenttoken.DetectCardType(number),
		LastFour: paymenttoken.LastFourOf(number),
		ExpMonth: month,
		ExpYear:  year,
	}
	if isExpired(card) {
		return paymenttoken.Card{}, "", paymenttoken.ErrInvalidExpiry
	}
	return card, token, nil
}

// DescribeToken returns the card behind a token created client side.
func (t *TestTokenizer) DescribeToken(token, expMonth, expYear string) (paymenttoken.Card, error) {
	lastFour, ok := t.tokens[token]
	if !ok {
		return paymenttoken.Card{}, ErrUnknownToken
	}

	month, year, err := paymenttoken.ValidateExpiry(expMonth, expYear)
	if err != nil {
		return paymenttoken.Card{}, err
	}

	return paymenttoken.Card{
		Type:     typeFromToken(token),
		LastFour: lastFour,
		ExpMonth: month,
		ExpYear:  year,
	}, nil
}

func typeFromToken(token string) string {
	switch {
	case strings.HasPrefix(token, "tok_visa"):
		return "visa"
	case strings.HasPrefix(token, "tok_mastercard"):
		return "mc"
	case token == "tok_amex":
		return "amex"
	case token == "tok_discover":
		return "disc"
	case token == "tok_diners":
		return "diners"
	case token == "tok_jcb":
		return "jcb"
	default:
		return "unknown"
	}
}

func isExpired(card paymenttoken.Card) bool {
	return paymenttoken.New("", card, false).IsExpired(nowFunc())
}
