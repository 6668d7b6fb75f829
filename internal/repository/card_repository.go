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

// PostgresCardRepository implements domain.BusinessCardRepository
type PostgresCardRepository struct {
	db     database.DBTX
	logger *slog.Logger
}

// NewPostgresCardRepository creates a new business card repository
func NewPostgresCardRepository(db database.DBTX, logger *slog.Logger) *PostgresCardRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCardRepository{db: db, logger: logger}
}

// Create inserts a business card
func (r *PostgresCardRepository) Create(ctx context.Context, card *domain.BusinessCard) error {
	query := `
		INSERT INTO business_cards (name, company, department, position, memo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		card.Name,
		card.Company,
		card.Department,
		card.Position,
		card.Memo,
	).Scan(&card.ID)
	if err != nil {
		r.logger.Error("failed to create business card", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create business card: %w", err)
	}
	return nil
}

// GetByID retrieves a business card by ID
func (r *PostgresCardRepository) GetByID(ctx context.Context, id int64) (*domain.BusinessCard, error) {
	query := `SELECT ` + cardColumns + ` FROM business_cards b WHERE b.id = $1`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("business card: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get business card: %w", err)
	}
	return card, nil
}

// List returns one page of business cards, newest first
func (r *PostgresCardRepository) List(ctx context.Context, page domain.Page) ([]*domain.BusinessCard, error) {
	query := `SELECT ` + cardColumns + ` FROM business_cards b ORDER BY b.id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list business cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// Search matches name or company, case-insensitively
func (r *PostgresCardRepository) Search(ctx context.Context, keyword string, page domain.Page) ([]*domain.BusinessCard, int, error) {
	pattern := likePattern(keyword)
	where := ` WHERE b.name ILIKE $1 OR b.company ILIKE $1`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM business_cards b`+where, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count business cards: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	query := `SELECT ` + cardColumns + ` FROM business_cards b` + where + ` ORDER BY b.id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, pattern, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search business cards: %w", err)
	}
	defer rows.Close()

	cards, err := collectCards(rows)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func collectCards(rows *sql.Rows) ([]*domain.BusinessCard, error) {
	var cards []*domain.BusinessCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}
