/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the promise calculation server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Open the SQLite supply snapshot store
  3. Optionally seed the snapshot from CSV demo data
  4. Build the warehouse classifier and promise engine
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8001)
  -db       SQLite database path (default: promise.db)
            Use ":memory:" for an in-memory database
  -stock    CSV file to seed stock bins from (optional)
  -po       CSV file to seed purchase orders from (optional)
  -env      .env file to load (default: .env, ignored when missing)

ENVIRONMENT:
  PROMISE_DEFAULT_WAREHOUSE   Warehouse for lines that name none
  PROMISE_TIMEZONE            IANA zone for date arithmetic
  PROMISE_CUTOFF              Daily cutoff, HH:MM

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

EXAMPLES:
  # Run with demo data
  ./server -db=":memory:" -stock=./data/stock.csv -po=./data/purchase_orders.csv

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Snapshot store
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/promise-engine/api"
	"github.com/warp/promise-engine/factory"
	"github.com/warp/promise-engine/promise"
	"github.com/warp/promise-engine/store/sqlite"
	"github.com/warp/promise-engine/supply"
)

func main() {
	// Flags
	port := flag.Int("port", 8001, "HTTP server port")
	dbPath := flag.String("db", "promise.db", "SQLite database path")
	stockCSV := flag.String("stock", "", "CSV file to seed stock bins from")
	poCSV := flag.String("po", "", "CSV file to seed purchase orders from")
	envFile := flag.String("env", ".env", "env file to load")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load %s: %v", *envFile, err)
	}

	// Initialize the snapshot store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Seed demo data when requested
	if *stockCSV != "" || *poCSV != "" {
		loader, err := supply.NewCSVProvider(*stockCSV, *poCSV)
		if err != nil {
			log.Fatalf("Failed to load seed data: %v", err)
		}
		if err := store.ReplaceSupplyData(context.Background(), loader.StockRows(), loader.Receipts()); err != nil {
			log.Fatalf("Failed to seed snapshot: %v", err)
		}
		log.Printf("Seeded %d stock rows and %d purchase orders",
			len(loader.StockRows()), len(loader.Receipts()))
	}

	rules, err := rulesFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	classifier, err := classifierFromStore(store)
	if err != nil {
		log.Fatalf("Failed to load warehouse configuration: %v", err)
	}

	engine := promise.NewEngine(store, classifier, rules)
	handler := api.NewHandler(engine, store, classifier)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Promise server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// rulesFromEnv starts from the standard defaults and applies environment
// overrides.
func rulesFromEnv() (promise.Rules, error) {
	rules := promise.DefaultRules()

	if wh := os.Getenv("PROMISE_DEFAULT_WAREHOUSE"); wh != "" {
		rules.DefaultWarehouse = wh
	}
	if tz := os.Getenv("PROMISE_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return promise.Rules{}, fmt.Errorf("PROMISE_TIMEZONE: unknown zone %q", tz)
		}
		rules.Timezone = tz
	}
	if cutoff := os.Getenv("PROMISE_CUTOFF"); cutoff != "" {
		parsed, err := factory.ParseCutoff(cutoff)
		if err != nil {
			return promise.Rules{}, fmt.Errorf("PROMISE_CUTOFF: %w", err)
		}
		rules.Cutoff = parsed
	}

	return rules, nil
}

// classifierFromStore builds the warehouse classifier from stored overrides
// layered over the built-in defaults.
func classifierFromStore(store *sqlite.Store) (*promise.Classifier, error) {
	classifications, hierarchy, err := store.ClassifierConfig(context.Background())
	if err != nil {
		return nil, err
	}
	return promise.NewClassifier(classifications, hierarchy), nil
}
