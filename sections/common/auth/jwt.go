package auth

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingToken = errors.New("missing authorization token")
)

// Claims represents JWT claims. The registered ID (jti) is the persisted
// access-token record id, so a deleted record revokes the token.
type Claims struct {
	jwt.RegisteredClaims
	PrincipalID   uint   `json:"principalId"`
	PrincipalType string `json:"principalType"`
	Email         string `json:"email"`
	TenantID      string `json:"tenantId,omitempty"`
}

// JWTManager handles JWT operations
type JWTManager struct {
	privateKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
	issuer     string
	expiry     time.Duration
}

// NewJWTManager creates a new JWT manager from a PEM-encoded ES512 private key
func NewJWTManager(privateKeyPEM string, issuer string, expiryHours int) (*JWTManager, error) {
	if privateKeyPEM == "" {
		return nil, errors.New("JWT_PRIVATE_KEY environment variable is required")
	}

	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block from private key")
	}

	privateKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &JWTManager{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		expiry:     time.Duration(expiryHours) * time.Hour,
	}, nil
}

// GenerateToken creates a new JWT for a principal. recordID becomes the jti.
func (j *JWTManager) GenerateToken(recordID string, principalID uint, principalType, email, tenantID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        recordID,
			Issuer:    j.issuer,
			Subject:   fmt.Sprintf("%s:%d", principalType, principalID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			NotBefore: jwt.NewNumericDate(now),
		},
		PrincipalID:   principalID,
		PrincipalType: principalType,
		Email:         email,
		TenantID:      tenantID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES512, claims)
	res, err := token.SignedString(j.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return res, nil
}

// ValidateToken parses and validates a JWT token
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.publicKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// NewJWTManagerFromEnv creates a JWTManager from environment variables. The
// private key is provided base64-encoded in JWT_PRIVATE_KEY.
func NewJWTManagerFromEnv(issuer string, expiryHours int) (*JWTManager, error) {
	privateKeyStr := os.Getenv("JWT_PRIVATE_KEY")
	privateKey, err := base64.StdEncoding.DecodeString(privateKeyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT private key from base64: %w", err)
	}
	return NewJWTManager(string(privateKey), issuer, expiryHours)
}
