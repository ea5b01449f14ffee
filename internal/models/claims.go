package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionPaymentTokenRead  = "payment_token:read"
	PermissionPaymentTokenWrite = "payment_token:write"
	PermissionApplePay          = "apple_pay:validate"
	PermissionChargeWrite       = "charge:write"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case "admin", "customer":
		return []string{
			PermissionPaymentTokenRead,
			PermissionPaymentTokenWrite,
			PermissionApplePay,
			PermissionChargeWrite,
		}
	case "readonly":
		return []string{
			PermissionPaymentTokenRead,
		}
	default:
		return []string{}
	}
}
