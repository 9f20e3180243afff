package auth

import (
	"errors"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	RoleCustomer = model.RoleCustomer
	RoleAdmin    = model.RoleAdmin

	issuer = "storefront"
)

// Claims represents session JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the session carries admin credentials
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// JWTService issues and validates session tokens. Admin sessions are short-lived.
type JWTService struct {
	secretKey     []byte
	storefrontTTL time.Duration
	adminTTL      time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, storefrontTTL, adminTTL time.Duration) *JWTService {
	return &JWTService{
		secretKey:     []byte(secretKey),
		storefrontTTL: storefrontTTL,
		adminTTL:      adminTTL,
	}
}

// SessionTTL returns the session lifetime for a role
func (s *JWTService) SessionTTL(role string) time.Duration {
	if role == RoleAdmin {
		return s.adminTTL
	}
	return s.storefrontTTL
}

// GenerateSessionToken creates a signed session token for the user
func (s *JWTService) GenerateSessionToken(userID, email, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.SessionTTL(role))

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateSessionToken validates a session token and returns its claims
func (s *JWTService) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
