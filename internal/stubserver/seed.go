package stubserver

import (
	"context"
	"time"

	"github.com/Rrens/deskflow/internal/config"
	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/security"
	"github.com/Rrens/deskflow/internal/stubserver/repository/sqlite"
	"github.com/Rrens/deskflow/internal/stubserver/service"
	"github.com/google/uuid"
)

// SeedCompanyName is the sample company the stub ships with
const SeedCompanyName = "Acme Corp"

// Seed creates the development accounts and sample data the stub ships with
func Seed(ctx context.Context, cfg *config.StubConfig, db *sqlite.DB) error {
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(sqlite.NewUserRepository(db), jwtManager)
	if err := authService.SeedAdmin(ctx); err != nil {
		return err
	}

	companyRepo := sqlite.NewCompanyRepository(db)
	companies, err := companyRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(companies) > 0 {
		return nil
	}
	return companyRepo.Create(ctx, &domain.Company{
		ID:        uuid.NewString(),
		Name:      SeedCompanyName,
		Email:     "contact@acme.example",
		CreatedAt: time.Now(),
	})
}
