// Package paymenttoken models a stored, tokenized payment instrument: a
// credit card or an eCheck bank account identified by an opaque token issued
// by the payment processor.
package paymenttoken

import (
	"errors"
	"fmt"
)

// TypeECheck is the type code of bank account tokens. Every other type code
// denotes a card brand.
const TypeECheck = "echeck"

var (
	ErrMissingAttribute = errors.New("missing payment token attribute")
)

// Instrument is the payment instrument behind a token. It is implemented by
// Card and ECheck only.
type Instrument interface {
	typeCode() string
	lastFour() string
}

// Card is a tokenized credit or debit card.
type Card struct {
	Type     string
	LastFour string
	ExpMonth string // two digits
	ExpYear  string // four digits
}

func (c Card) typeCode() string { return c.Type }
func (c Card) lastFour() string { return c.LastFour }

// ECheck is a tokenized bank account.
type ECheck struct {
	LastFour string
}

func (ECheck) typeCode() string   { return TypeECheck }
func (e ECheck) lastFour() string { return e.LastFour }

// PaymentToken pairs a processor token with its display metadata. The token
// string never changes; the default flag is the only mutable attribute and
// SetDefault must not race with other calls on the same instance.
type PaymentToken struct {
	token      string
	instrument Instrument
	isDefault  bool
}

// New creates a payment token. Pointer instruments are stored by value and a
// Card whose Type is "echeck" is stored as an ECheck so the instrument always
// agrees with its type code. A nil instrument yields a token with an empty
// type.
func New(token string, instrument Instrument, isDefault bool) *PaymentToken {
	return &PaymentToken{
		token:      token,
		instrument: normalize(instrument),
		isDefault:  isDefault,
	}
}

func normalize(instrument Instrument) Instrument {
	switch v := instrument.(type) {
	case *Card:
		if v == nil {
			return nil
		}
		instrument = *v
	case *ECheck:
		if v == nil {
			return nil
		}
		instrument = *v
	}
	if c, ok := instrument.(Card); ok && c.Type == TypeECheck {
		return ECheck{LastFour: c.LastFour}
	}
	return instrument
}

// FromAttributes rebuilds a token from its datastore projection.
func FromAttributes(token string, attrs Attributes) (*PaymentToken, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token", ErrMissingAttribute)
	}
	if attrs.Type == "" {
		return nil, fmt.Errorf("%w: type", ErrMissingAttribute)
	}

	var instrument Instrument
	if attrs.Type == TypeECheck {
		instrument = ECheck{LastFour: attrs.LastFour}
	} else {
		instrument = Card{
			Type:     attrs.Type,
			LastFour: attrs.LastFour,
			ExpMonth: attrs.ExpMonth,
			ExpYear:  attrs.ExpYear,
		}
	}

	return New(token, instrument, attrs.Default), nil
}

func (t *PaymentToken) Token() string { return t.token }

func (t *PaymentToken) IsDefault() bool { return t.isDefault }

// SetDefault flags this instance only. Keeping a single default per customer
// is the caller's job.
func (t *PaymentToken) SetDefault(isDefault bool) { t.isDefault = isDefault }

func (t *PaymentToken) IsCreditCard() bool { return t.Type() != TypeECheck }

func (t *PaymentToken) IsCheck() bool { return !t.IsCreditCard() }

// Type returns the raw type code (visa, mc, amex, disc, diners, jcb, echeck...).
func (t *PaymentToken) Type() string {
	if t.instrument == nil {
		return ""
	}
	return t.instrument.typeCode()
}

// TypeFull returns the display name of the token type, ie "MasterCard" for
// "mc", after running the registered name hooks.
func (t *PaymentToken) TypeFull() string { return TypeToName(t.Type()) }

func (t *PaymentToken) LastFour() string {
	if t.instrument == nil {
		return ""
	}
	return t.instrument.lastFour()
}

// ExpMonth returns the two digit expiry month, or "" for eChecks.
func (t *PaymentToken) ExpMonth() string {
	if c, ok := t.instrument.(Card); ok {
		return c.ExpMonth
	}
	return ""
}

// ExpYear returns the four digit expiry year, or "" for eChecks.
func (t *PaymentToken) ExpYear() string {
	if c, ok := t.instrument.(Card); ok {
		return c.ExpYear
	}
	return ""
}

// Instrument returns a copy of the underlying card or bank account.
func (t *PaymentToken) Instrument() Instrument { return t.instrument }

// DatastoreFormat returns the attributes to persist under Token(). The result
// is a copy; changing it does not affect the token.
func (t *PaymentToken) DatastoreFormat() Attributes {
	attrs := Attributes{
		Default:  t.isDefault,
		Type:     t.Type(),
		LastFour: t.LastFour(),
	}
	if c, ok := t.instrument.(Card); ok {
		attrs.ExpMonth = c.ExpMonth
		attrs.ExpYear = c.ExpYear
	}
	return attrs
}

// Attributes is the persisted form of a payment token.
type Attributes struct {
	Default  bool   `json:"default"`
	Type     string `json:"type"`
	LastFour string `json:"last_four"`
	ExpMonth string `json:"exp_month,omitempty"`
	ExpYear  string `json:"exp_year,omitempty"`
}
