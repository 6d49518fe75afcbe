package service

import (
	"fmt"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtTokenService implements ports.TokenService using HS256 JWT, signed with
// the configured JWT secret (jwt.secret).
type jwtTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewTokenService creates a JWT-backed TokenService.
func NewTokenService(secret string, expiry time.Duration, issuer string) ports.TokenService {
	return &jwtTokenService{secret: []byte(secret), expiry: expiry, issuer: issuer}
}

// Generate signs a token carrying sub (user email), role, iat, exp, and a
// uid claim so callers can resolve the principal without a lookup by email.
func (s *jwtTokenService) Generate(userID uuid.UUID, email string, role domain.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := jwt.MapClaims{
		"sub":  email,
		"uid":  userID.String(),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
		"iss":  s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and validates the token, rejecting it if expired,
// malformed, or signed with anything other than HS256.
func (s *jwtTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	email, _ := claims["sub"].(string)
	if email == "" {
		return nil, fmt.Errorf("missing subject claim")
	}
	uidStr, _ := claims["uid"].(string)
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		return nil, fmt.Errorf("invalid uid claim: %w", err)
	}
	role, _ := claims["role"].(string)

	return &ports.TokenClaims{UserID: userID, Email: email, Role: domain.Role(role)}, nil
}
