// Command rebuild-busy-index recomputes the guide busy-date index from the
// package assignments and records the rebuild in the audit log. Run it after
// restoring a backup or whenever the index is suspected to be out of sync.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/tourops-backend/internal/app"
	"github.com/heartmarshall/tourops-backend/internal/config"
	"github.com/heartmarshall/tourops-backend/internal/service/assignment"
	"github.com/heartmarshall/tourops-backend/internal/service/audit"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

const actor = "cli:rebuild-busy-index"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		log.Fatalf("rebuild-busy-index needs postgres storage, got %q", cfg.Storage.Driver)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	st, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	svc := assignment.NewService(logger, st.Packages, st.Guides, audit.NewService(logger, st.Audit), st.Tx)

	rows, err := svc.RebuildBusyIndex(ctxutil.WithActor(ctx, actor))
	if err != nil {
		logger.Error("rebuild busy index failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("busy index rebuilt", slog.Int("rows", rows))
}
