// Command seedcarriers imports the shipping-company alias sheet into the
// carriers table. The sheet has two columns, canonical name then alias,
// one alias per row. Duplicate aliases are skipped.
// Usage: go run ./cmd/seedcarriers carriers.xlsx
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"parcelscan/internal/config"
	"parcelscan/internal/domain"
	"parcelscan/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedcarriers <carriers.xlsx>")
	}
	xlsxPath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	aliases, err := parseSheet(xlsxPath)
	if err != nil {
		return err
	}
	log.Printf("parsed %d carrier aliases from %s", len(aliases), xlsxPath)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewCarrierRepo(db)
	if err := repo.ReplaceAll(context.Background(), aliases); err != nil {
		return fmt.Errorf("seeding carriers: %w", err)
	}

	log.Printf("carriers table seeded")
	return nil
}

func parseSheet(path string) ([]domain.CarrierAlias, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	seen := make(map[string]bool)
	var aliases []domain.CarrierAlias
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			// header or incomplete row
			continue
		}
		canonical := strings.TrimSpace(row[0])
		alias := strings.TrimSpace(row[1])
		if canonical == "" || alias == "" {
			continue
		}
		key := strings.ToLower(alias)
		if seen[key] {
			log.Printf("row %d: duplicate alias %q skipped", i+1, alias)
			continue
		}
		seen[key] = true
		aliases = append(aliases, domain.CarrierAlias{Canonical: canonical, Alias: alias})
	}

	if len(aliases) == 0 {
		return nil, fmt.Errorf("no aliases found in %s", path)
	}
	return aliases, nil
}
