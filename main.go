package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/polymer.report/internal/config"
	"github.com/banshee-data/polymer.report/internal/db"
	"github.com/banshee-data/polymer.report/internal/saw/monitor"
	sqlite "github.com/banshee-data/polymer.report/internal/saw/storage/sqlite"
	"github.com/banshee-data/polymer.report/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbFile        = flag.String("db", "saw_results.db", "Results database file ('' disables persistence)")
	configFile    = flag.String("config", "", "Simulation config JSON (falls back to "+config.DefaultConfigPath+" when present)")
	migrationsDir = flag.String("migrations", "db/migrations", "Schema migrations directory")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	var cfg *config.SimConfig
	var err error
	if *configFile != "" {
		cfg, err = config.LoadSimConfig(*configFile)
	} else {
		cfg, err = config.LoadDefaultSimConfig()
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var store *sqlite.RunStore
	if *dbFile != "" {
		database, err := db.New(*dbFile)
		if err != nil {
			log.Fatalf("failed to open results database: %v", err)
		}
		defer database.Close()

		if err := database.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("failed to migrate results database: %v", err)
		}
		store = sqlite.NewRunStore(database.DB)
	}

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address: *listen,
		Store:   store,
		Config:  cfg,
	})

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("web server error: %v", err)
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
