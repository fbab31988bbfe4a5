package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for Bekgram.
// It includes standard claims required by the JWT specification and the custom
// claim identifying the authenticated account.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the stable identifier of the authenticated account. Every core
	// operation resolves the acting user from this claim.
	UserID string `json:"user_id"`
}
