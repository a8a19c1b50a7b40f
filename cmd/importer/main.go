package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"fixiestore/internal/config"
	"fixiestore/internal/db"
	"fixiestore/internal/importer"
	categoryrepo "fixiestore/internal/repository/category"
	productrepo "fixiestore/internal/repository/product"
	categorysvc "fixiestore/internal/service/category"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
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

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f,
		productrepo.NewPostgres(pool, logger),
		categorysvc.New(categoryrepo.NewPostgres(pool)),
	)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
