package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/pkg/database"
)

// PostgresCredentialRepository implements domain.CredentialRepository
type PostgresCredentialRepository struct {
	db     database.DBTX
	logger *slog.Logger
}

// NewPostgresCredentialRepository creates a new credential repository
func NewPostgresCredentialRepository(db database.DBTX, logger *slog.Logger) *PostgresCredentialRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCredentialRepository{db: db, logger: logger}
}

// GetByMemberID returns the credential of a member
func (r *PostgresCredentialRepository) GetByMemberID(ctx context.Context, memberID int64) (*domain.Credential, error) {
	query := `
		SELECT id, member_id, password_hash, last_login
		FROM credentials
		WHERE member_id = $1
	`

	cred := &domain.Credential{}
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(
		&cred.ID,
		&cred.MemberID,
		&cred.PasswordHash,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		cred.LastLogin = &t
	}

	return cred, nil
}

// Upsert creates the member's credential or replaces its hash
func (r *PostgresCredentialRepository) Upsert(ctx context.Context, memberID int64, passwordHash string) error {
	query := `
		INSERT INTO credentials (member_id, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (member_id) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`

	if _, err := r.db.ExecContext(ctx, query, memberID, passwordHash); err != nil {
		r.logger.Error("failed to store credential",
			slog.Int64("member_id", memberID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// TouchLastLogin records a successful login
func (r *PostgresCredentialRepository) TouchLastLogin(ctx context.Context, memberID int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE credentials SET last_login = $1 WHERE member_id = $2`, at, memberID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("credential: %w", domain.ErrNotFound)
	}
	return nil
}
