package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"smarthousing-backend/sections/models"

	"github.com/google/uuid"
)

// IssuedToken is the result of minting a session token.
type IssuedToken struct {
	Value    string
	RecordID string
}

// TokenIssuer mints bearer tokens: a signed JWT plus a persisted record in the
// central access_tokens table. The record makes logout-by-deletion possible.
type TokenIssuer struct {
	jwt    *JWTManager
	tokens TokenStore
	logger *slog.Logger
}

// NewTokenIssuer creates a session token issuer
func NewTokenIssuer(jwtManager *JWTManager, tokens TokenStore) *TokenIssuer {
	return &TokenIssuer{
		jwt:    jwtManager,
		tokens: tokens,
		logger: slog.With("component", "TokenIssuer"),
	}
}

// Issue mints a token for a principal. For tenant users tenantID is stamped
// onto the token record afterwards, best-effort: the credential has already
// been validated, so a failed stamp is logged and the login proceeds.
func (s *TokenIssuer) Issue(ctx context.Context, principal models.Principal, tenantID string) (*IssuedToken, error) {
	recordID := uuid.NewString()

	value, err := s.jwt.GenerateToken(recordID, principal.PrincipalID(), principal.PrincipalType(), principal.PrincipalEmail(), tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	record := &models.AccessToken{
		ID:            recordID,
		TokenHash:     hashToken(value),
		PrincipalType: principal.PrincipalType(),
		PrincipalID:   principal.PrincipalID(),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist token record: %w", err)
	}

	if tenantID != "" {
		if err := s.tokens.StampTenant(ctx, recordID, tenantID); err != nil {
			s.logger.Warn("Failed to stamp tenant id on token record",
				"record_id", recordID,
				"tenant", tenantID,
				"error", err)
		}
	}

	return &IssuedToken{Value: value, RecordID: recordID}, nil
}

func hashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
