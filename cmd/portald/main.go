package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuscatalyst/portal/internal/api"
	"github.com/campuscatalyst/portal/internal/config"
	"github.com/campuscatalyst/portal/internal/ratelimit"
	"github.com/campuscatalyst/portal/internal/resume"
	"github.com/campuscatalyst/portal/internal/vault"
	"github.com/campuscatalyst/portal/pkg/engine"
)

func main() {
	migrateFrom := flag.String("migrate-from", "", "copy the JSON files of this data directory into the configured store, then exit")
	flag.Parse()

	fmt.Println("Starting CampusCatalyst API Daemon...")

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	sc := cfg.Server

	// 2. Initialize Persistence
	var persister engine.Persister
	if sc.DatabaseURL != "" {
		persister, err = engine.OpenPostgres(sc.DatabaseURL)
		fmt.Println("Using Postgres persistence.")
	} else {
		persister, err = engine.NewPersistence(sc.DataDir)
		fmt.Printf("Using file persistence in %s.\n", sc.DataDir)
	}
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}

	// 3. Load existing data and start the Engine
	store, scopes, err := openStore(persister)
	if err != nil {
		log.Fatalf("Failed to load existing data: %v", err)
	}
	fmt.Printf("Engine started. Loaded %d scopes.\n", scopes)

	if *migrateFrom != "" {
		migrate(*migrateFrom, store)
		return
	}

	if sc.Seed {
		seeded, err := api.Seed(store)
		if err != nil {
			log.Printf("Warning: Seeding failed: %v", err)
		} else if seeded {
			fmt.Println("Empty store seeded with example data.")
		}
	}

	// 4. Login rate limiting, shared through Redis when configured
	limiter, closeLimiter := ratelimit.New(sc.RedisAddr, sc.LoginLimit, sc.LoginWindow)
	defer closeLimiter()

	// 5. Resume analyzer
	analyzer := resume.New(nil)
	if sc.GeminiAPIKey != "" {
		analyzer, err = resume.NewGemini(context.Background(), sc.GeminiAPIKey, sc.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to initialize resume analyzer: %v", err)
		}
		fmt.Printf("Resume analysis enabled (%s).\n", sc.GeminiModel)
	} else {
		fmt.Println("Resume analysis disabled (GEMINI_API_KEY not set). Serving the sample report.")
	}

	// 6. Initialize HTTP API
	h := api.NewHandler(store)
	h.Limiter = limiter
	h.Analyzer = analyzer
	h.TokenTTL = sc.TokenTTL

	srv := &http.Server{
		Addr:              ":" + sc.HTTPPort,
		Handler:           api.NewRouter(h, sc.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 7. Setup TLS
	if sc.EnableTLS {
		fmt.Println("Generating self-signed certificate for TLS...")
		cert, err := vault.GenerateSelfSignedCert()
		if err != nil {
			log.Fatalf("Failed to generate TLS certificate: %v", err)
		}
		srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
		fmt.Println("TLS encryption enabled.")
	}

	// 8. Start server
	go func() {
		fmt.Printf("HTTP API listening on :%s\n", sc.HTTPPort)
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 9. Handle Graceful Shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutdown signal received. Finalizing disk writes...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Warning: HTTP shutdown: %v", err)
	}
	store.Wait()
	fmt.Println("Persistence complete. Exiting.")
}

// openStore starts the engine on everything p holds. A failed load is fatal:
// starting empty would let seeding overwrite the stored scopes.
func openStore(p engine.Persister) (*engine.MemStore, int, error) {
	data, err := p.LoadAll()
	if err != nil {
		return nil, 0, err
	}
	return engine.NewMemStore(data, p), len(data), nil
}

// migrate copies a file-persisted data directory into store.
func migrate(dir string, store *engine.MemStore) {
	src, err := engine.NewPersistence(dir)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", dir, err)
	}
	data, err := src.LoadAll()
	if err != nil {
		log.Fatalf("Failed to load %s: %v", dir, err)
	}
	if err := engine.Migrate(engine.NewMemStore(data, nil), store); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	store.Wait()
	fmt.Printf("Migrated %d scopes from %s.\n", len(data), dir)
}
