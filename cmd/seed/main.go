package main

import (
	"context"
	"fmt"
	"os"

	"tienda-api/internal/config"
	"tienda-api/internal/database"
	"tienda-api/internal/model"
	"tienda-api/internal/repository"
)

// catalogue prices are in centavos.
var catalogue = []struct {
	name  string
	slug  string
	sku   string
	price int64
	stock int
}{
	{"Mate de calabaza", "mate-calabaza", "MAT-001", 1_500_000, 40},
	{"Bombilla de alpaca", "bombilla-alpaca", "BOM-001", 250_000, 120},
	{"Yerba mate 1kg", "yerba-mate-1kg", "YER-001", 480_000, 200},
	{"Termo acero 1L", "termo-acero-1l", "TER-001", 3_200_000, 25},
	{"Matera de cuero", "matera-cuero", "MTR-001", 2_750_000, 15},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	repo := repository.NewProductRepository(pool, logger)
	for _, c := range catalogue {
		sku := c.sku
		p := model.Product{
			Name:     c.name,
			Slug:     c.slug,
			SKU:      &sku,
			Price:    c.price,
			Stock:    c.stock,
			IsActive: true,
		}
		if err := repo.Upsert(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed %s: %w", c.slug, err)
		}
		logger.Info().Str("product_id", p.ID.String()).Str("slug", p.Slug).Msg("product seeded")
	}

	logger.Info().Int("count", len(catalogue)).Msg("catalogue seeded")
	return nil
}
