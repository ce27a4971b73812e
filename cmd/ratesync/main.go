// Package main is a one-shot oracle sync tool. It pulls the current
// oracle rate for one pair, or for every stored pair, and writes it to
// the rate store. The tool talks to the registry directly with operator
// database credentials; role checks apply only to the server API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"pegswap/internal/domain"
	"pegswap/internal/rates"
	"pegswap/internal/storage/migrations"
	pgstore "pegswap/internal/storage/postgres"
)

func main() {
	loadEnvFile()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	actor := flag.String("actor", os.Getenv("RATESYNC_ACTOR"), "Account recorded as the rate updater")
	tokenIn := flag.String("token-in", "", "Input token of the pair to sync")
	tokenOut := flag.String("token-out", "", "Output token of the pair to sync")
	all := flag.Bool("all", false, "Sync every stored pair instead of a single one")
	oracleEndpoint := flag.String("oracle", "", "Override the configured oracle endpoint")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall run timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[ratesync] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}
	if *actor == "" {
		logger.Fatal("--actor is required")
	}
	if !*all && (*tokenIn == "" || *tokenOut == "") {
		logger.Fatal("--token-in and --token-out are required (or use --all)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	registry, err := rates.NewRegistry(ctx, rates.Options{
		Store:  pgstore.NewRateStore(pool),
		State:  pgstore.NewStateStore(pool),
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create registry: %v", err)
	}

	if *oracleEndpoint != "" {
		if err := registry.SetOracle(ctx, domain.Address(*actor), *oracleEndpoint); err != nil {
			logger.Fatalf("Failed to set oracle: %v", err)
		}
	}
	if registry.Oracle() == "" {
		logger.Fatal("No oracle configured; set one with --oracle")
	}

	if !*all {
		syncPair(ctx, logger, registry, domain.Address(*actor),
			domain.Address(*tokenIn), domain.Address(*tokenOut))
		return
	}

	stored, err := registry.All(ctx)
	if err != nil {
		logger.Fatalf("Failed to list pairs: %v", err)
	}
	if len(stored) == 0 {
		logger.Println("No stored pairs to sync")
		return
	}

	failed := 0
	for _, rate := range stored {
		if !syncPair(ctx, logger, registry, domain.Address(*actor), rate.TokenIn, rate.TokenOut) {
			failed++
		}
	}
	logger.Printf("Synced %d/%d pairs", len(stored)-failed, len(stored))
	if failed > 0 {
		os.Exit(1)
	}
}

func syncPair(ctx context.Context, logger *log.Logger, registry *rates.Registry, actor, tokenIn, tokenOut domain.Address) bool {
	value, err := registry.SyncFromOracle(ctx, actor, tokenIn, tokenOut)
	if err != nil {
		logger.Printf("Sync %s/%s failed: %v", tokenIn, tokenOut, err)
		return false
	}
	fmt.Printf("%s/%s = %s\n", tokenIn, tokenOut, value)
	return true
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
