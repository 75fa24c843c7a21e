package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emberhold/fortress-replay-go/internal/api"
	"github.com/emberhold/fortress-replay-go/internal/config"
	"github.com/emberhold/fortress-replay-go/internal/store"
	"github.com/emberhold/fortress-replay-go/internal/token"
)

func main() {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags|log.LUTC)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	signer, err := token.NewSigner([]byte(cfg.TokenSecret), cfg.TokenIssuer, nil)
	if err != nil {
		logger.Fatalf("signer: %v", err)
	}

	srv := api.NewServer(db, signer, api.Options{
		RunTTL:          cfg.RunTTL,
		VerifyWorkers:   cfg.VerifyWorkers,
		StartPerMinute:  cfg.StartPerMinute,
		FinishPerMinute: cfg.FinishPerMinute,
	})
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("listening addr=%s db=%s", cfg.Addr, cfg.DBPath)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Print("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
