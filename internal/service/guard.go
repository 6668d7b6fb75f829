package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/security/auth"
)

// Guard resolves the acting member from a bearer header. It re-validates on
// every call and caches nothing.
type Guard struct {
	tokens  *auth.TokenManager
	members domain.MemberRepository
	logger  *slog.Logger
}

// NewGuard creates a new authorization guard
func NewGuard(tokens *auth.TokenManager, members domain.MemberRepository, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{tokens: tokens, members: members, logger: logger}
}

// Resolve validates the Authorization header value and loads the member it
// names. Every failure is domain.ErrUnauthorized.
func (g *Guard) Resolve(ctx context.Context, authHeader string) (*domain.Member, error) {
	token, err := auth.ExtractToken(authHeader)
	if err != nil {
		return nil, err
	}

	memberID, err := g.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	member, err := g.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			g.logger.Warn("token for missing member", slog.Int64("member_id", memberID))
			return nil, fmt.Errorf("%w: member no longer exists", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("load member: %w", err)
	}
	return member, nil
}
