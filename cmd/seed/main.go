package main

import (
	"context"
	"flag"
	"log"
	"os"

	"fixiestore/internal/config"
	"fixiestore/internal/db"
	"fixiestore/internal/migrate"
	productrepo "fixiestore/internal/repository/product"
	userrepo "fixiestore/internal/repository/user"
	"fixiestore/internal/seed"
)

func main() {
	var adminEmail string
	flag.StringVar(&adminEmail, "admin", "", "Email of an existing user to promote to admin")
	flag.Parse()

	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	n, err := seed.Apply(ctx, productrepo.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}
	logger.Printf("seeded %d products", n)

	if adminEmail != "" {
		if err := seed.PromoteAdmin(ctx, userrepo.NewPostgres(pool, logger), adminEmail); err != nil {
			logger.Fatalf("promote admin: %v", err)
		}
		logger.Printf("granted admin to %s", adminEmail)
	}
}
