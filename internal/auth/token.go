package auth

import (
	"fmt"
	"time"

	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes the two bearer-token variants. They are signed
// with distinct secrets and carry distinct lifetimes, so a refresh token
// can never be replayed as an access token or vice versa.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Claims are the signed contents of both token kinds. Permissions holds the
// flattened permission-name set resolved at issue time; a token outlives a
// later role edit until it is reissued.
type Claims struct {
	UserID      string   `json:"user_id"` // UUID stored as string
	Email       string   `json:"email"`
	RoleID      *uint    `json:"role_id,omitempty"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a full issuance.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenIssuer creates and verifies signed bearer tokens. It is stateless:
// verification is purely cryptographic plus an expiry comparison.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenIssuer creates a token issuer from auth configuration.
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL(),
		refreshTTL:    cfg.RefreshTTL(),
	}
}

// IssueAccessToken signs a short-lived access token for the user carrying
// the given resolved permission set.
func (i *TokenIssuer) IssueAccessToken(user *models.User, permissions []string) (string, error) {
	return i.sign(user, permissions, AccessToken)
}

// IssueTokenPair signs an access/refresh token pair carrying identical
// identity claims.
func (i *TokenIssuer) IssueTokenPair(user *models.User, permissions []string) (*TokenPair, error) {
	access, err := i.sign(user, permissions, AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(user, permissions, RefreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify validates a token of the given kind and returns its claims.
// Returns ErrInvalidToken for a bad signature, wrong kind or expiry.
func (i *TokenIssuer) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	secret := i.secretFor(kind)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ReissueAccessToken verifies a refresh token and mints a new access token
// carrying the same identity claims. Permissions are copied as-is rather
// than re-read from storage; a role change takes effect when the refresh
// credential itself is reissued.
func (i *TokenIssuer) ReissueAccessToken(refreshToken string) (string, error) {
	claims, err := i.Verify(refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}

	now := time.Now()
	fresh := Claims{
		UserID:      claims.UserID,
		Email:       claims.Email,
		RoleID:      claims.RoleID,
		Permissions: claims.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "atrium",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, fresh)
	return token.SignedString(i.accessSecret)
}

func (i *TokenIssuer) sign(user *models.User, permissions []string, kind TokenKind) (string, error) {
	if permissions == nil {
		permissions = []string{}
	}

	ttl := i.accessTTL
	if kind == RefreshToken {
		ttl = i.refreshTTL
	}

	now := time.Now()
	claims := Claims{
		UserID:      user.ID.String(),
		Email:       user.Email,
		RoleID:      user.RoleID,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "atrium",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secretFor(kind))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (i *TokenIssuer) secretFor(kind TokenKind) []byte {
	if kind == RefreshToken {
		return i.refreshSecret
	}
	return i.accessSecret
}
