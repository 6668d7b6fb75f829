package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
)

// Token errors. Both classify as domain.ErrUnauthorized.
var (
	ErrMissingToken = fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	ErrExpiredToken = fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
)

// DefaultTTL is the session token lifetime when none is configured.
const DefaultTTL = 30 * time.Minute

// Claims is the token payload. Subject carries the member ID.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 session tokens. It keeps no state
// beyond the signing secret, so a token stays valid until it expires.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if issuer == "" {
		issuer = "meetlog"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token for memberID that expires TTL from now.
func (tm *TokenManager) Issue(memberID int64) (string, time.Time, error) {
	if memberID <= 0 {
		return "", time.Time{}, fmt.Errorf("member id required")
	}
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(memberID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies the signature and expiry and returns the member ID.
func (tm *TokenManager) Validate(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tm.issuer),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	memberID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || memberID <= 0 {
		return 0, ErrInvalidToken
	}
	return memberID, nil
}

// ExtractToken strips the Bearer scheme from an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
