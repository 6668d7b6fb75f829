package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/pkg/database"
)

// PostgresContactRepository implements domain.ContactRepository using PostgreSQL.
// A repository returned by WithTx is bound to that transaction.
type PostgresContactRepository struct {
	db     *sql.DB // nil when bound to a transaction
	q      database.DBTX
	logger *slog.Logger
}

// NewPostgresContactRepository creates a new meeting record repository
func NewPostgresContactRepository(db *sql.DB, logger *slog.Logger) *PostgresContactRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresContactRepository{db: db, q: db, logger: logger}
}

// WithTx runs fn against a repository bound to one transaction. Nested calls
// reuse the outer transaction.
func (r *PostgresContactRepository) WithTx(ctx context.Context, fn func(repo domain.ContactRepository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		return fn(&PostgresContactRepository{q: tx, logger: r.logger})
	})
}

// Create inserts a meeting record without associations
func (r *PostgresContactRepository) Create(ctx context.Context, record *domain.MeetingRecord) error {
	query := `
		INSERT INTO contacts (contact_date, location, title, summary_text, raw_text, details, status, department_id, member_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		nullDate(record.ContactDate),
		record.Location,
		record.Title,
		record.SummaryText,
		record.RawText,
		record.Details,
		int16(record.Status),
		record.DepartmentID,
		nullInt64(record.OwnerID),
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create meeting record",
			slog.Int64("department_id", record.DepartmentID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create meeting record: %w", err)
	}
	return nil
}

// GetByID retrieves a meeting record with its associations
func (r *PostgresContactRepository) GetByID(ctx context.Context, id int64) (*domain.MeetingRecord, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts c WHERE c.id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresContactRepository) getOne(ctx context.Context, query string, args ...any) (*domain.MeetingRecord, error) {
	record, err := scanContact(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("meeting record: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get meeting record: %w", err)
	}

	if err := r.loadAssociations(ctx, []*domain.MeetingRecord{record}); err != nil {
		return nil, err
	}
	return record, nil
}

// Update writes content fields and status. Department and owner never change.
func (r *PostgresContactRepository) Update(ctx context.Context, record *domain.MeetingRecord) error {
	query := `
		UPDATE contacts
		SET contact_date = $1, location = $2, title = $3, summary_text = $4,
			raw_text = $5, details = $6, status = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		nullDate(record.ContactDate),
		record.Location,
		record.Title,
		record.SummaryText,
		record.RawText,
		record.Details,
		int16(record.Status),
		record.ID,
	).Scan(&record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("meeting record: %w", domain.ErrNotFound)
		}
		r.logger.Error("failed to update meeting record",
			slog.Int64("id", record.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update meeting record: %w", err)
	}
	return nil
}

// ReplacePersons replaces the record's business card set. Unknown ids are dropped.
func (r *PostgresContactRepository) ReplacePersons(ctx context.Context, contactID int64, cardIDs []int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM contact_persons WHERE contact_id = $1`, contactID); err != nil {
		return fmt.Errorf("failed to clear persons: %w", err)
	}
	if len(cardIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO contact_persons (contact_id, business_card_id)
		SELECT $1, b.id FROM business_cards b WHERE b.id = ANY($2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.q.ExecContext(ctx, query, contactID, pq.Array(cardIDs)); err != nil {
		return fmt.Errorf("failed to link persons: %w", err)
	}
	return nil
}

// ReplaceCompanions replaces the record's co-attendee set. Unknown ids are dropped.
func (r *PostgresContactRepository) ReplaceCompanions(ctx context.Context, contactID int64, memberIDs []int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM contact_companions WHERE contact_id = $1`, contactID); err != nil {
		return fmt.Errorf("failed to clear companions: %w", err)
	}
	if len(memberIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO contact_companions (contact_id, member_id)
		SELECT $1, m.id FROM members m WHERE m.id = ANY($2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.q.ExecContext(ctx, query, contactID, pq.Array(memberIDs)); err != nil {
		return fmt.Errorf("failed to link companions: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's records in one status, most recent meeting first
func (r *PostgresContactRepository) ListByOwner(ctx context.Context, ownerID int64, status domain.Status, page domain.Page) ([]*domain.MeetingRecord, error) {
	query := `SELECT ` + contactColumns + `
		FROM contacts c
		WHERE c.member_id = $1 AND c.status = $2
		ORDER BY c.contact_date DESC NULLS LAST, c.id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.q.QueryContext(ctx, query, ownerID, int16(status), page.Limit(), page.Offset())
	if err != nil {
		r.logger.Error("failed to list meeting records",
			slog.Int64("member_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list meeting records: %w", err)
	}
	defer rows.Close()

	records, err := collectContacts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// searchWhere restricts to one department's finalized records whose title or
// any linked business card name contains the keyword.
const searchWhere = `
		WHERE c.department_id = $1 AND c.status = $2
		AND (c.title ILIKE $3 OR EXISTS (
			SELECT 1 FROM contact_persons cp
			JOIN business_cards b ON b.id = cp.business_card_id
			WHERE cp.contact_id = c.id AND b.name ILIKE $3
		))`

// Search returns finalized department records matching keyword, with the total match count
func (r *PostgresContactRepository) Search(ctx context.Context, departmentID int64, keyword string, page domain.Page) ([]*domain.MeetingRecord, int, error) {
	pattern := likePattern(keyword)
	finalized := int16(domain.StatusFinalized)

	var total int
	countQuery := `SELECT COUNT(*) FROM contacts c` + searchWhere
	if err := r.q.QueryRowContext(ctx, countQuery, departmentID, finalized, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count meeting records: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	query := `SELECT ` + contactColumns + ` FROM contacts c` + searchWhere + `
		ORDER BY c.contact_date DESC NULLS LAST, c.id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.QueryContext(ctx, query, departmentID, finalized, pattern, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search meeting records: %w", err)
	}
	defer rows.Close()

	records, err := collectContacts(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadAssociations(ctx, records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// loadAssociations fills Owner, Persons and Companions with three batched queries.
func (r *PostgresContactRepository) loadAssociations(ctx context.Context, records []*domain.MeetingRecord) error {
	if len(records) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.MeetingRecord, len(records))
	ids := make([]int64, 0, len(records))
	var ownerIDs []int64
	for _, rec := range records {
		rec.Persons = []*domain.BusinessCard{}
		rec.Companions = []*domain.Member{}
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
		if rec.OwnerID != nil {
			ownerIDs = append(ownerIDs, *rec.OwnerID)
		}
	}

	if len(ownerIDs) > 0 {
		owners, err := r.membersByID(ctx, ownerIDs)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if rec.OwnerID != nil {
				rec.Owner = owners[*rec.OwnerID]
			}
		}
	}

	personQuery := `SELECT cp.contact_id, ` + cardColumns + `
		FROM contact_persons cp
		JOIN business_cards b ON b.id = cp.business_card_id
		WHERE cp.contact_id = ANY($1)
		ORDER BY b.id`
	rows, err := r.q.QueryContext(ctx, personQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load persons: %w", err)
	}
	for rows.Next() {
		var contactID int64
		card, err := scanCard(rows, &contactID)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan person: %w", err)
		}
		if rec := byID[contactID]; rec != nil {
			rec.Persons = append(rec.Persons, card)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	companionQuery := `SELECT cc.contact_id, ` + memberColumns + `
		FROM contact_companions cc
		JOIN members m ON m.id = cc.member_id
		WHERE cc.contact_id = ANY($1)
		ORDER BY m.id`
	rows, err = r.q.QueryContext(ctx, companionQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load companions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var contactID int64
		member, err := scanMember(rows, &contactID)
		if err != nil {
			return fmt.Errorf("failed to scan companion: %w", err)
		}
		if rec := byID[contactID]; rec != nil {
			rec.Companions = append(rec.Companions, member)
		}
	}
	return rows.Err()
}

func (r *PostgresContactRepository) membersByID(ctx context.Context, ids []int64) (map[int64]*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members m WHERE m.id = ANY($1)`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load owners: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.Member, len(ids))
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		out[member.ID] = member
	}
	return out, rows.Err()
}

func collectContacts(rows *sql.Rows) ([]*domain.MeetingRecord, error) {
	var records []*domain.MeetingRecord
	for rows.Next() {
		rec, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
