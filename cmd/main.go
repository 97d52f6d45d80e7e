package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Zerg00s/extract-site-collection-url/internal/biz"
	"github.com/Zerg00s/extract-site-collection-url/internal/data"
	"github.com/Zerg00s/extract-site-collection-url/internal/logx"
	"github.com/Zerg00s/extract-site-collection-url/internal/server"
	"github.com/Zerg00s/extract-site-collection-url/internal/service"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Env vars:
//
//	LISTEN_ADDR  default :8080
//	DB_PATH      default collections.db
//	CHUNK_SIZE   lines per progress chunk, default 1000
func main() {
	logx.Init()
	log := logx.FromContext(context.Background())

	addr := envOr("LISTEN_ADDR", ":8080")
	dbPath := envOr("DB_PATH", "collections.db")

	cfg := biz.BatchConfig{ChunkSize: biz.DefaultChunkSize}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.ChunkSize = parsed
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logx.NewGormLogger()})
	if err != nil {
		log.Error("open database failed", "path", dbPath, "err", err)
		os.Exit(1)
	}

	repo := data.NewSQLRepo(db)
	extractor := data.NewSiteExtractor()
	uc := biz.NewBatchUsecase(repo, extractor, cfg)
	srv := server.NewHTTPServer(addr, service.NewService(uc))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
