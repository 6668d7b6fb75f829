package repository

import (
	"database/sql"
	"strings"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
)

const memberColumns = `m.id, m.name, m.position, m.email, m.sso_id, m.department_id, m.created_at`

const cardColumns = `b.id, b.name, b.company, b.department, b.position, b.memo`

const contactColumns = `c.id, c.contact_date, c.location, c.title, c.summary_text, c.raw_text, c.details,
		c.status, c.department_id, c.member_id, c.created_at, c.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanMember reads memberColumns, optionally preceded by extra destinations.
func scanMember(row rowScanner, extra ...any) (*domain.Member, error) {
	m := &domain.Member{}
	var ssoID sql.NullString
	dest := append(extra, &m.ID, &m.Name, &m.Position, &m.Email, &ssoID, &m.DepartmentID, &m.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.SSOID = ssoID.String
	return m, nil
}

func scanCard(row rowScanner, extra ...any) (*domain.BusinessCard, error) {
	b := &domain.BusinessCard{}
	dest := append(extra, &b.ID, &b.Name, &b.Company, &b.Department, &b.Position, &b.Memo)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return b, nil
}

func scanContact(row rowScanner) (*domain.MeetingRecord, error) {
	rec := &domain.MeetingRecord{}
	var (
		contactDate sql.NullTime
		ownerID     sql.NullInt64
		status      int16
	)
	err := row.Scan(
		&rec.ID,
		&contactDate,
		&rec.Location,
		&rec.Title,
		&rec.SummaryText,
		&rec.RawText,
		&rec.Details,
		&status,
		&rec.DepartmentID,
		&ownerID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = domain.Status(status)
	if contactDate.Valid {
		d := domain.NewDate(contactDate.Time.Date())
		rec.ContactDate = &d
	}
	if ownerID.Valid {
		id := ownerID.Int64
		rec.OwnerID = &id
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d *domain.Date) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time, Valid: true}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring ILIKE pattern with wildcards in keyword escaped.
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(keyword)) + "%"
}
