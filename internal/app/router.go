package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/tourops-backend/internal/adapter/docstore"
	"github.com/heartmarshall/tourops-backend/internal/auth"
	"github.com/heartmarshall/tourops-backend/internal/config"
	"github.com/heartmarshall/tourops-backend/internal/transport/dataloader"
	"github.com/heartmarshall/tourops-backend/internal/transport/middleware"
	"github.com/heartmarshall/tourops-backend/internal/transport/rest"
)

// NewRouter mounts every REST route behind the middleware chain. The
// returned stop function releases the rate limiter.
func NewRouter(
	cfg *config.Config,
	log *slog.Logger,
	st *Storage,
	svcs *Services,
	docs *docstore.Store,
	jwt *auth.JWTManager,
) (http.Handler, func()) {
	mux := http.NewServeMux()
	rest.Register(mux, rest.Handlers{
		Health:         rest.NewHealthHandler(st.Pinger, st.Driver, BuildVersion()),
		Documents:      rest.NewDocumentHandler(docs, cfg.Documents.MaxBytes, log),
		Applications:   rest.NewApplicationHandler(svcs.Applications, log),
		Guides:         rest.NewGuideHandler(svcs.Guides, log),
		ChangeRequests: rest.NewChangeRequestHandler(svcs.ChangeRequests, log),
		Packages:       rest.NewPackageHandler(svcs.Assignments, log),
		Audit:          rest.NewAuditHandler(svcs.Audit, log),
	})

	var limit middleware.Middleware
	stop := func() {}
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		limit = limiter.Limit(cfg.RateLimit.RequestsPerMinute, "/live", "/ready", "/health")
		stop = limiter.Stop
	}

	chain := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.CORS(cfg.CORS),
		limit,
		middleware.Auth(jwt),
		dataloader.Middleware(&dataloader.Repos{Guide: st.Guides}),
	)

	return chain(mux), stop
}
