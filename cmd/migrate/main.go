package main

import (
	"flag"
	"fmt"
	"log"

	"civicreport/backend/config"
	"civicreport/backend/database"
	"civicreport/backend/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbPath := flag.String("db", cfg.DatabasePath, "path to the SQLite database")
	importPath := flag.String("import", "", "JSON report document to import after migrating")
	seed := flag.Bool("seed", false, "replace all reports with demo data (refused in production)")
	flag.Parse()

	// Initialize database connection and run migrations
	db, err := database.Init(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	fmt.Println("Migrations completed successfully!")

	if *importPath != "" {
		n, err := migrations.ImportJSONReports(db, *importPath)
		if err != nil {
			log.Fatalf("Failed to import reports: %v", err)
		}
		fmt.Printf("Imported %d report(s) from %s\n", n, *importPath)
	}

	if *seed {
		if err := migrations.SeedTestData(db, cfg.Production); err != nil {
			log.Fatalf("Failed to seed demo reports: %v", err)
		}
	}
}
