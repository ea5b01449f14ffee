package models

import "time"

// PaymentTokenRecord is the stored row behind a payment token. Columns map
// one to one to the token's datastore attributes.
type PaymentTokenRecord struct {
	ID        uint   `gorm:"primarykey" json:"-"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_token" json:"-"`
	Token     string `gorm:"not null;uniqueIndex:idx_user_token" json:"token"`
	Gateway   string `gorm:"not null;default:'stripe'" json:"gateway"`
	Type      string `gorm:"not null" json:"type"`
	LastFour  string `gorm:"not null" json:"last_four"`
	ExpMonth  string `json:"exp_month,omitempty"`
	ExpYear   string `json:"exp_year,omitempty"`
	IsDefault bool   `gorm:"default:false" json:"default"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PaymentTokenRecord) TableName() string {
	return "payment_tokens"
}

// CreatePaymentTokenInput is the request body for adding a payment method.
// Either CardNumber or Token is set; eChecks carry AccountNumber instead.
type CreatePaymentTokenInput struct {
	CardNumber    string `json:"card_number"`
	ExpiryMonth   string `json:"expiry_month"`
	ExpiryYear    string `json:"expiry_year"`
	Token         string `json:"token"`
	Type          string `json:"type"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	MakeDefault   bool   `json:"make_default"`
}

// PaymentTokenView is the display shape of a stored payment token.
type PaymentTokenView struct {
	Token        string `json:"token"`
	Type         string `json:"type"`
	TypeFull     string `json:"type_full"`
	MaskedNumber string `json:"masked_number"`
	LastFour     string `json:"last_four"`
	Expiry       string `json:"expiry,omitempty"`
	IsCreditCard bool   `json:"is_credit_card"`
	IsDefault    bool   `json:"default"`
	Expired      bool   `json:"expired"`
}
