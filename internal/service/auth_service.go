package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/observability/metrics"
	"github.com/aryan0dhankhar/meetlog/internal/security/audit"
	"github.com/aryan0dhankhar/meetlog/internal/security/auth"
)

// MinPasswordLength is the shortest password accepted on change or reset.
const MinPasswordLength = 8

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// AuthService handles authentication operations
type AuthService struct {
	members  domain.MemberRepository
	creds    domain.CredentialRepository
	tokens   *auth.TokenManager
	hasher   *auth.Hasher
	auditLog *audit.Logger
	logger   *slog.Logger
	now      func() time.Time

	// dummyHash is compared against when a member has no credential so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService creates a new authentication service
func NewAuthService(
	members domain.MemberRepository,
	creds domain.CredentialRepository,
	tokens *auth.TokenManager,
	hasher *auth.Hasher,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}

	dummy, err := hasher.Hash("meetlog-dummy-password")
	if err != nil {
		logger.Warn("failed to prepare dummy hash", slog.String("error", err.Error()))
	}

	return &AuthService{
		members:   members,
		creds:     creds,
		tokens:    tokens,
		hasher:    hasher,
		auditLog:  auditLog,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// LoginResult represents login response
type LoginResult struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresIn int            `json:"expires_in"` // seconds
	ExpiresAt time.Time      `json:"expires_at"`
	Member    *domain.Member `json:"member"`
}

// Login verifies a member's password and issues a session token. Unknown
// members and wrong passwords both fail with domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, memberID int64, password string) (*LoginResult, error) {
	if memberID <= 0 || password == "" {
		return nil, s.loginFailed(ctx, memberID, "missing credentials")
	}

	cred, err := s.creds.GetByMemberID(ctx, memberID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveLogin("error")
			return nil, fmt.Errorf("load credential: %w", err)
		}
		if s.dummyHash != "" {
			_ = s.hasher.Compare(s.dummyHash, password)
		}
		return nil, s.loginFailed(ctx, memberID, "no credential")
	}

	if err := s.hasher.Compare(cred.PasswordHash, password); err != nil {
		return nil, s.loginFailed(ctx, memberID, "password mismatch")
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.loginFailed(ctx, memberID, "member missing")
		}
		metrics.ObserveLogin("error")
		return nil, fmt.Errorf("load member: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(member.ID)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("error", err.Error()))
		metrics.ObserveLogin("error")
		return nil, fmt.Errorf("issue token: %w", err)
	}

	// Best effort: a failed timestamp write does not fail the login.
	if err := s.creds.TouchLastLogin(ctx, member.ID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to record last login",
			slog.Int64("member_id", member.ID),
			slog.String("error", err.Error()),
		)
	}

	metrics.ObserveLogin("success")
	s.auditLog.LogLogin(ctx, member.ID, "success")
	s.logger.Info("member logged in", slog.Int64("member_id", member.ID))

	return &LoginResult{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(s.tokens.TTL().Seconds()),
		ExpiresAt: expiresAt,
		Member:    member,
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, memberID int64, reason string) error {
	metrics.ObserveLogin("failure")
	s.auditLog.LogLogin(ctx, memberID, "failure")
	s.logger.Info("login failed", slog.Int64("member_id", memberID), slog.String("reason", reason))
	return fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
}

// ChangePassword replaces the member's password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, memberID int64, oldPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	cred, err := s.creds.GetByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: current password is incorrect", domain.ErrUnauthorized)
		}
		return fmt.Errorf("load credential: %w", err)
	}

	if err := s.hasher.Compare(cred.PasswordHash, oldPassword); err != nil {
		s.auditLog.LogAction(ctx, memberID, "change_password", "credential", memberID, "failure", "")
		return fmt.Errorf("%w: current password is incorrect", domain.ErrUnauthorized)
	}

	if err := s.store(ctx, memberID, newPassword); err != nil {
		return err
	}

	s.auditLog.LogAction(ctx, memberID, "change_password", "credential", memberID, "success", "")
	s.logger.Info("member changed password", slog.Int64("member_id", memberID))
	return nil
}

// SetPassword creates or resets a member's credential. It is an
// administrative operation used by provisioning tools.
func (s *AuthService) SetPassword(ctx context.Context, memberID int64, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return err
	}
	return s.store(ctx, memberID, password)
}

func (s *AuthService) store(ctx context.Context, memberID int64, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.creds.Upsert(ctx, memberID, hash); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, MaxPasswordBytes)
	}
	return nil
}
