// seed inserts development members, credentials and business cards.
// Idempotent: skips everything if the first dev member already exists.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/meetlog/internal/repository"
	"github.com/aryan0dhankhar/meetlog/internal/security/auth"
	"github.com/aryan0dhankhar/meetlog/internal/service"
	"github.com/aryan0dhankhar/meetlog/pkg/config"
	"github.com/aryan0dhankhar/meetlog/pkg/database"
)

const devPassword = "password123"

var devMembers = []domain.Member{
	{Name: "Sato Hanako", Position: "Manager", Email: "sato@example.com", DepartmentID: 1},
	{Name: "Suzuki Ken", Position: "Sales", Email: "suzuki@example.com", DepartmentID: 1},
	{Name: "Ito Yui", Position: "Engineer", Email: "ito@example.com", DepartmentID: 2},
}

var devCards = []domain.BusinessCard{
	{Name: "Tanaka Taro", Company: "Acme Trading", Department: "Purchasing", Position: "Director"},
	{Name: "Kato Mika", Company: "Globex", Department: "IT", Position: "Lead"},
	{Name: "Mori Jun", Company: "Initech", Memo: "met at expo"},
}

func main() {
	cfg, err := config.Read()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or export DATABASE_URL")
	}

	lg := logger.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	pool, err := database.NewConnectionPool(ctx, &database.Config{URL: cfg.DatabaseURL, MaxOpenConns: 2, MaxIdleConns: 1}, lg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	members := repository.NewPostgresMemberRepository(pool.GetDB(), lg)
	_, err = members.GetByEmail(ctx, devMembers[0].Email)
	if err == nil {
		log.Printf("Seed already applied (%s exists). Skipping.", devMembers[0].Email)
		os.Exit(0)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		log.Fatalf("seed check: %v", err)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	err = database.WithTx(ctx, pool.GetDB(), nil, func(ctx context.Context, tx database.DBTX) error {
		txMembers := repository.NewPostgresMemberRepository(tx, lg)
		cards := repository.NewPostgresCardRepository(tx, lg)
		// Only SetPassword is used, which needs no token manager.
		accounts := service.NewAuthService(txMembers, repository.NewPostgresCredentialRepository(tx, lg), nil, hasher, nil, lg)

		for i := range devMembers {
			m := devMembers[i]
			if err := txMembers.Create(ctx, &m); err != nil {
				return err
			}
			if err := accounts.SetPassword(ctx, m.ID, devPassword); err != nil {
				return err
			}
			lg.Info("seeded member", slog.Int64("member_id", m.ID), slog.String("email", m.Email))
		}
		for i := range devCards {
			c := devCards[i]
			if err := cards.Create(ctx, &c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("Seed complete: %d members (password %q), %d business cards.", len(devMembers), devPassword, len(devCards))
}
