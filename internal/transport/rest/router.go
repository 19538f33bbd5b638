package rest

import "net/http"

// Handlers groups every REST handler registered by Register.
type Handlers struct {
	Health         *HealthHandler
	Documents      *DocumentHandler
	Applications   *ApplicationHandler
	Guides         *GuideHandler
	ChangeRequests *ChangeRequestHandler
	Packages       *PackageHandler
	Audit          *AuditHandler
}

// Register mounts all routes on mux. Package and assignment listings read
// guides through per-request loaders, so the mux must be wrapped in the
// dataloader middleware.
func Register(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /documents", h.Documents.Upload)

	mux.HandleFunc("POST /applications", h.Applications.Submit)
	mux.HandleFunc("GET /applications", h.Applications.List)
	mux.HandleFunc("GET /applications/{id}", h.Applications.Get)
	mux.HandleFunc("POST /applications/{id}/approve", h.Applications.Approve)
	mux.HandleFunc("POST /applications/{id}/reject", h.Applications.Reject)

	mux.HandleFunc("GET /guides", h.Guides.List)
	mux.HandleFunc("GET /guides/{id}", h.Guides.Get)
	mux.HandleFunc("GET /guides/{id}/history", h.Guides.History)
	mux.HandleFunc("POST /guides/{id}/suspend", h.Guides.Suspend)
	mux.HandleFunc("POST /guides/{id}/activate", h.Guides.Activate)
	mux.HandleFunc("POST /guides/{id}/change-requests", h.ChangeRequests.Submit)

	mux.HandleFunc("GET /change-requests", h.ChangeRequests.List)
	mux.HandleFunc("GET /change-requests/{id}", h.ChangeRequests.Get)
	mux.HandleFunc("POST /change-requests/{id}/evidence", h.ChangeRequests.AttachEvidence)
	mux.HandleFunc("POST /change-requests/{id}/approve", h.ChangeRequests.Approve)
	mux.HandleFunc("POST /change-requests/{id}/reject", h.ChangeRequests.Reject)

	mux.HandleFunc("PUT /packages/{id}", h.Packages.Upsert)
	mux.HandleFunc("GET /packages", h.Packages.List)
	mux.HandleFunc("GET /packages/{id}", h.Packages.Get)
	mux.HandleFunc("GET /packages/{id}/eligible-guides", h.Packages.EligibleGuides)
	mux.HandleFunc("GET /packages/{id}/eligibility/{guideId}", h.Packages.Eligibility)
	mux.HandleFunc("POST /packages/{id}/assign", h.Packages.Assign)
	mux.HandleFunc("POST /packages/{id}/unassign", h.Packages.Unassign)
	mux.HandleFunc("POST /packages/{id}/reassign", h.Packages.Reassign)

	mux.HandleFunc("GET /assignments/flagged", h.Packages.Flagged)
	mux.HandleFunc("POST /assignments/rebuild-index", h.Packages.RebuildIndex)

	mux.HandleFunc("GET /audit", h.Audit.List)
	mux.HandleFunc("GET /audit/{subjectType}/{subjectId}", h.Audit.Subject)
}
