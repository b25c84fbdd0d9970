// seed_catalog.go loads a criteria catalog and lender directory from YAML into Postgres.
//
// Usage:
//
//	go run scripts/seed_catalog.go -file scripts/catalog.example.yaml -db postgres://localhost/fundable
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
	"github.com/MikeSquared-Agency/Fundable/internal/store"
)

type catalogFile struct {
	Criteria []scoring.Criterion `yaml:"criteria"`
	Lenders  []matching.Lender   `yaml:"lenders"`
}

func main() {
	path := flag.String("file", "scripts/catalog.example.yaml", "path to catalog YAML")
	dbURL := flag.String("db", os.Getenv("FUNDABLE_DATABASE_URL"), "Postgres connection URL")
	dryRun := flag.Bool("dry-run", false, "validate and print counts without writing")
	flag.Parse()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read catalog: %v", err)
	}
	var cat catalogFile
	if err := yaml.Unmarshal(data, &cat); err != nil {
		log.Fatalf("parse catalog: %v", err)
	}
	if err := validate(cat); err != nil {
		log.Fatalf("invalid catalog: %v", err)
	}

	if *dryRun {
		for _, c := range cat.Criteria {
			fmt.Printf("criterion  %-32s %-22s weight=%g required=%v\n", c.ID, c.Category, c.Weight, c.Required)
		}
		for _, l := range cat.Lenders {
			fmt.Printf("lender     %-32s products=%d\n", l.ID, len(l.Products))
		}
		return
	}
	if *dbURL == "" {
		log.Fatal("database url required (-db or FUNDABLE_DATABASE_URL)")
	}

	ctx := context.Background()
	db, err := store.NewPostgresStore(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := db.UpsertCriteria(ctx, cat.Criteria); err != nil {
		log.Fatalf("seed criteria: %v", err)
	}
	for i := range cat.Lenders {
		if err := db.UpsertLender(ctx, &cat.Lenders[i]); err != nil {
			log.Fatalf("seed lender %s: %v", cat.Lenders[i].ID, err)
		}
	}
	fmt.Printf("seeded %d criteria and %d lenders\n", len(cat.Criteria), len(cat.Lenders))
}

func validate(cat catalogFile) error {
	seen := make(map[string]bool, len(cat.Criteria))
	for _, c := range cat.Criteria {
		if c.ID == "" || c.Category == "" {
			return fmt.Errorf("criterion %q: id and category required", c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("criterion %q: duplicate id", c.ID)
		}
		seen[c.ID] = true
		if c.Weight <= 0 {
			return fmt.Errorf("criterion %q: weight must be positive", c.ID)
		}
		switch c.AnswerType {
		case scoring.AnswerBoolean, scoring.AnswerSelect, scoring.AnswerNumber, scoring.AnswerText:
		default:
			return fmt.Errorf("criterion %q: unknown answer type %q", c.ID, c.AnswerType)
		}
	}
	for _, l := range cat.Lenders {
		if l.ID == "" {
			return fmt.Errorf("lender %q: id required", l.Name)
		}
	}
	return nil
}
