package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tskinner/inkwell/internal/database"
	"github.com/tskinner/inkwell/internal/logging"
	"github.com/tskinner/inkwell/internal/push"
	"github.com/tskinner/inkwell/internal/server"
)

func main() {
	port := os.Getenv("INKWELL_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("INKWELL_DB_PATH")
	if dbPath == "" {
		dbPath = "inkwell.db"
	}

	logger := logging.Setup(os.Getenv("INKWELL_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("INKWELL_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("INKWELL_VAPID_PRIVATE_KEY"),
		Subscriber:      os.Getenv("INKWELL_VAPID_SUBSCRIBER"),
	}
	if pushCfg.VAPIDPublicKey == "" || pushCfg.VAPIDPrivateKey == "" {
		// Ephemeral keys keep push working on a fresh instance, but existing
		// browser subscriptions break on every restart. Set the env vars to
		// make them durable.
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("failed to generate VAPID keys: %v", err)
		}
		pushCfg.VAPIDPublicKey = pub
		pushCfg.VAPIDPrivateKey = priv
		logger.Warn("generated ephemeral VAPID keys; set INKWELL_VAPID_PUBLIC_KEY and INKWELL_VAPID_PRIVATE_KEY to persist them",
			"public_key", pub)
	}

	srv := server.New(db, pushCfg, logger)

	// Periodic cleanup of expired sessions and stale rate-limit entries
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("session cleanup", "deleted", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Inkwell running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
