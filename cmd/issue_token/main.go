// Command issue_token mints a signed API token for local testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"paygate/internal/config"
	"paygate/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	userID := flag.Uint("user", 0, "user id the token is issued for")
	email := flag.String("email", "", "user email")
	role := flag.String("role", "customer", "role: admin, customer or readonly")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == 0 {
		log.Fatal("-user must be set")
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to issue tokens in production")
	}

	now := time.Now()
	claims := &models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(*userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
		UserID:      *userID,
		Email:       *email,
		Role:        *role,
		Permissions: models.GetDefaultPermissions(*role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal("Failed to sign token:", err)
	}
	fmt.Println(signed)
}
