package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// Claims represents the JWT claims.
type Claims struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	VerifiedAdult bool   `json:"verified_adult"`
	jwt.RegisteredClaims
}

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// GenerateToken creates a new JWT for an actor with a unique JTI.
func GenerateToken(secret string, actor custody.Actor) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	claims := Claims{
		UserID:        actor.ID,
		Name:          actor.Name,
		Role:          string(actor.Role),
		VerifiedAdult: actor.VerifiedAdult,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the actor it encodes.
func ValidateToken(secret, tokenStr string) (custody.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return custody.Actor{}, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return custody.Actor{}, fmt.Errorf("invalid token")
	}

	return custody.Actor{
		ID:            claims.UserID,
		Name:          claims.Name,
		Role:          custody.Role(claims.Role),
		VerifiedAdult: claims.VerifiedAdult,
	}, nil
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
