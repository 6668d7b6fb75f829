package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
)

// CardService manages business cards (external contacts).
type CardService struct {
	repo   domain.BusinessCardRepository
	logger *slog.Logger
}

// NewCardService creates a new business card service
func NewCardService(repo domain.BusinessCardRepository, logger *slog.Logger) *CardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardService{repo: repo, logger: logger}
}

// Create stores a card. Name and company are required.
func (s *CardService) Create(ctx context.Context, card *domain.BusinessCard) (*domain.BusinessCard, error) {
	card.Name = strings.TrimSpace(card.Name)
	card.Company = strings.TrimSpace(card.Company)
	if card.Name == "" || card.Company == "" {
		return nil, fmt.Errorf("%w: name and company are required", domain.ErrValidation)
	}
	if err := s.repo.Create(ctx, card); err != nil {
		return nil, err
	}
	s.logger.Info("business card created", slog.Int64("card_id", card.ID))
	return card, nil
}

func (s *CardService) Get(ctx context.Context, id int64) (*domain.BusinessCard, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CardService) List(ctx context.Context, page domain.Page) ([]*domain.BusinessCard, error) {
	cards, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []*domain.BusinessCard{}
	}
	return cards, nil
}

func (s *CardService) Search(ctx context.Context, keyword string, page domain.Page) (domain.PageResult[*domain.BusinessCard], error) {
	cards, total, err := s.repo.Search(ctx, keyword, page)
	if err != nil {
		return domain.PageResult[*domain.BusinessCard]{}, err
	}
	return domain.NewPageResult(cards, total, page), nil
}

// MemberService is the read-only member directory.
type MemberService struct {
	repo domain.MemberRepository
}

// NewMemberService creates a new member directory service
func NewMemberService(repo domain.MemberRepository) *MemberService {
	return &MemberService{repo: repo}
}

func (s *MemberService) Get(ctx context.Context, id int64) (*domain.Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MemberService) List(ctx context.Context, page domain.Page) ([]*domain.Member, error) {
	members, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*domain.Member{}
	}
	return members, nil
}

func (s *MemberService) Search(ctx context.Context, keyword string, page domain.Page) (domain.PageResult[*domain.Member], error) {
	members, total, err := s.repo.SearchByName(ctx, keyword, page)
	if err != nil {
		return domain.PageResult[*domain.Member]{}, err
	}
	return domain.NewPageResult(members, total, page), nil
}
