package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
)

func TestCardService_Create(t *testing.T) {
	svc := NewCardService(newMemCardRepo(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &domain.BusinessCard{Name: "  ", Company: "Acme"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	card, err := svc.Create(ctx, &domain.BusinessCard{Name: " Tanaka ", Company: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if card.ID == 0 || card.Name != "Tanaka" {
		t.Fatalf("unexpected card %+v", card)
	}
}

func TestCardService_Search(t *testing.T) {
	svc := NewCardService(newMemCardRepo(
		&domain.BusinessCard{ID: 1, Name: "Tanaka", Company: "Acme"},
		&domain.BusinessCard{ID: 2, Name: "Kato", Company: "Tanaka Trading"},
		&domain.BusinessCard{ID: 3, Name: "Mori", Company: "Globex"},
	), nil)

	res, err := svc.Search(context.Background(), "TANAKA", domain.Page{Number: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 2 || len(res.Items) != 2 {
		t.Fatalf("expected 2 matches on name or company, got %d", res.Total)
	}

	list, _ := svc.List(context.Background(), domain.Page{Number: 5, PerPage: 10})
	if list == nil || len(list) != 0 {
		t.Fatalf("an out-of-range page should be empty, not nil")
	}
}

func TestMemberService(t *testing.T) {
	svc := NewMemberService(newMemMemberRepo(
		&domain.Member{ID: 1, Name: "Sato Hana"},
		&domain.Member{ID: 2, Name: "Suzuki Ken"},
	))
	ctx := context.Background()

	if _, err := svc.Get(ctx, 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	res, _ := svc.Search(ctx, "sato", domain.Page{Number: 1, PerPage: 10})
	if res.Total != 1 || res.Items[0].ID != 1 {
		t.Fatalf("unexpected search result %+v", res)
	}
}
