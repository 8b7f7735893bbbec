// Command dbsetup checks database connectivity, applies the schema and can
// load a starter product catalogue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"order-relay/internal/config"
	"order-relay/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

type sampleProduct struct {
	id, name, unit, category string
}

var sampleProducts = []sampleProduct{
	{"P001", "牛乳", "本", "乳製品"},
	{"P002", "卵", "パック", "乳製品"},
	{"P003", "薄力粉", "kg", "粉類"},
	{"P004", "グラニュー糖", "kg", "粉類"},
	{"P005", "無塩バター", "個", "乳製品"},
}

func main() {
	seed := flag.Bool("seed", false, "insert the sample product catalogue")
	flag.Parse()

	if err := run(*seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(seed bool) error {
	_ = godotenv.Load()

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("failed to query current database: %w", err)
	}
	fmt.Printf("Connected to database: %s\n", dbName)

	if err := database.ApplySchema(ctx, conn); err != nil {
		return err
	}
	fmt.Println("Schema applied")

	if !seed {
		return nil
	}

	for _, p := range sampleProducts {
		tag, err := conn.Exec(ctx,
			`INSERT INTO products (id, name, default_unit, category) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			p.id, p.name, p.unit, p.category,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.id, err)
		}
		if tag.RowsAffected() > 0 {
			fmt.Printf("  + %s %s\n", p.id, p.name)
		}
	}

	return nil
}
