package domain

import "context"

// BusinessCard is an external contact person collected from a business card.
type BusinessCard struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Company    string `json:"company"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

// BusinessCardRepository defines data access for business cards
type BusinessCardRepository interface {
	Create(ctx context.Context, card *BusinessCard) error
	GetByID(ctx context.Context, id int64) (*BusinessCard, error)
	List(ctx context.Context, page Page) ([]*BusinessCard, error)
	// Search matches name or company, case-insensitively.
	Search(ctx context.Context, keyword string, page Page) ([]*BusinessCard, int, error)
}
