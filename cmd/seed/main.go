// Command seed fills the database with sample orders for local development.
package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/config"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/db"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/user"
)

func main() {
	count := flag.Int("orders", 15, "number of orders to create")
	reset := flag.Bool("reset", false, "delete all orders before seeding")
	seed := flag.Uint64("seed", 0, "random seed (0 picks one from the clock)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Str("service", "seed").Logger()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		log.Fatal().Str("storage", cfg.Storage.Driver).Msg("Seeding needs STORAGE_DRIVER=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if err := pg.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	if *reset {
		if _, err := pg.Pool.Exec(ctx, `TRUNCATE TABLE order_items, orders RESTART IDENTITY CASCADE`); err != nil {
			log.Fatal().Err(err).Msg("Failed to wipe orders")
		}
		log.Info().Msg("Existing orders deleted")
	}

	if err := ensureAdmin(ctx, user.NewService(user.NewRepository(pg.Pool)), cfg.Auth); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure admin user")
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(*seed, *seed>>1))

	svc := order.NewService(order.NewRepository(pg.SQL))
	for i := 0; i < *count; i++ {
		if _, err := svc.CreateOrder(ctx, randomOrder(rng)); err != nil {
			log.Fatal().Err(err).Int("created", i).Msg("Failed to create sample order")
		}
	}

	log.Info().Int("orders", *count).Uint64("seed", *seed).Msg("Database seeded")
}
