package tokens

import "errors"

var (
	ErrTokenNotFound  = errors.New("payment token not found")
	ErrTokenExists    = errors.New("payment token already saved")
	ErrInvalidInput   = errors.New("invalid payment method")
	ErrNoDefaultToken = errors.New("no default payment token")
)
