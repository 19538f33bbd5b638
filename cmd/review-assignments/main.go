// Command review-assignments re-evaluates every assigned package against
// its guide's current profile and prints the assignments that no longer
// pass, one JSON object per line. It never changes an assignment.
//
// Exit codes: 0 = nothing flagged, 1 = error, 2 = flagged assignments found.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/tourops-backend/internal/app"
	"github.com/heartmarshall/tourops-backend/internal/config"
	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/assignment"
	"github.com/heartmarshall/tourops-backend/internal/service/audit"
)

type flaggedLine struct {
	PackageID string   `json:"packageId"`
	GuideID   string   `json:"guideId"`
	Date      string   `json:"date"`
	Reasons   []string `json:"reasons"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		log.Fatalf("review-assignments needs postgres storage, got %q", cfg.Storage.Driver)
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

	flagged, err := svc.Review(ctx)
	if err != nil {
		logger.Error("review failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, f := range flagged {
		reasons := make([]string, len(f.Verdict.Reasons))
		for i, r := range f.Verdict.Reasons {
			reasons[i] = r.String()
		}
		if err := enc.Encode(flaggedLine{
			PackageID: f.PackageID.String(),
			GuideID:   f.GuideID.String(),
			Date:      domain.FormatDate(f.Date),
			Reasons:   reasons,
		}); err != nil {
			logger.Error("write result", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("assignment review completed", slog.Int("flagged", len(flagged)))
	if len(flagged) > 0 {
		os.Exit(2)
	}
}
