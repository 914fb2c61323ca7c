package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iliyamo/shop-admin/internal/config"
	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/repository"
	"github.com/iliyamo/shop-admin/internal/utils"
)

type seedProduct struct {
	name, description, image string
	price                    float64
}

var demoProducts = []seedProduct{
	{"Laptop Pro X", "High performance laptop.", "https://placehold.co/300x200?text=Laptop", 25000.00},
	{"Smartphone Z", "Flagship phone with the latest features.", "https://placehold.co/300x200?text=Phone", 15000.00},
	{"Wireless Headphones", "Noise cancelling headphones.", "https://placehold.co/300x200?text=Headphones", 1200.50},
}

// Seed fills an empty catalog with demo products and creates the default
// admin when no admin exists. Both steps are no-ops on later boots.
func Seed(ctx context.Context, db *sql.DB, cfg config.SeedConfig, cost int, log zerolog.Logger) error {
	products := repository.NewProductRepo(db)
	users := repository.NewUserRepo(db)

	if cfg.Products {
		n, err := products.Count(ctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if n == 0 {
			for _, sp := range demoProducts {
				desc, image := sp.description, sp.image
				p := &model.Product{Name: sp.name, Description: &desc, Price: sp.price, ImageURL: &image}
				if err := products.Create(ctx, p); err != nil {
					return fmt.Errorf("seed product %q: %w", sp.name, err)
				}
			}
			log.Info().Int("count", len(demoProducts)).Msg("seeded demo products")
		}
	}

	admins, err := users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}
	hash, err := utils.HashPassword(cfg.AdminPassword, cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &model.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Warn().Str("email", admin.Email).Msg("created default admin account; change its password")
	return nil
}
