package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/pkg/database"
)

// PostgresMemberRepository implements domain.MemberRepository using PostgreSQL
type PostgresMemberRepository struct {
	db     database.DBTX
	logger *slog.Logger
}

// NewPostgresMemberRepository creates a new member repository
func NewPostgresMemberRepository(db database.DBTX, logger *slog.Logger) *PostgresMemberRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMemberRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a member and fills in its ID and creation time
func (r *PostgresMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (name, position, email, sso_id, department_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		member.Name,
		member.Position,
		member.Email,
		nullString(member.SSOID),
		member.DepartmentID,
	).Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create member",
			slog.String("email", member.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetByID retrieves a member by ID
func (r *PostgresMemberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members m WHERE m.id = $1`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member: %w", domain.ErrNotFound)
		}
		r.logger.Error("failed to get member by id",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetByEmail retrieves a member by email
func (r *PostgresMemberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members m WHERE lower(m.email) = lower($1)`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member by email: %w", err)
	}

	return member, nil
}

// List returns one page of members ordered by ID
func (r *PostgresMemberRepository) List(ctx context.Context, page domain.Page) ([]*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members m ORDER BY m.id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		r.logger.Error("failed to list members", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	return collectMembers(rows)
}

// SearchByName matches members whose name contains keyword, case-insensitively
func (r *PostgresMemberRepository) SearchByName(ctx context.Context, keyword string, page domain.Page) ([]*domain.Member, int, error) {
	pattern := likePattern(keyword)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members m WHERE m.name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	query := `SELECT ` + memberColumns + ` FROM members m WHERE m.name ILIKE $1 ORDER BY m.name, m.id LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, pattern, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search members: %w", err)
	}
	defer rows.Close()

	members, err := collectMembers(rows)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func collectMembers(rows *sql.Rows) ([]*domain.Member, error) {
	var members []*domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
