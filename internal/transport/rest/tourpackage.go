package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/assignment"
	"github.com/heartmarshall/tourops-backend/internal/transport/dataloader"
)

type assignmentService interface {
	UpsertPackage(ctx context.Context, input assignment.UpsertPackageInput) (*domain.TourPackage, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*domain.TourPackage, error)
	ListPackages(ctx context.Context, filter domain.PackageFilter) (*assignment.PackageListResult, error)
	CheckEligibility(ctx context.Context, packageID, guideID uuid.UUID) (domain.Verdict, error)
	EligibleGuides(ctx context.Context, packageID uuid.UUID) ([]assignment.Candidate, error)
	Assign(ctx context.Context, input assignment.AssignInput) (*domain.TourPackage, error)
	Unassign(ctx context.Context, packageID uuid.UUID) (*domain.TourPackage, error)
	Reassign(ctx context.Context, input assignment.AssignInput) (*domain.TourPackage, error)
	Review(ctx context.Context) ([]domain.FlaggedAssignment, error)
	RebuildBusyIndex(ctx context.Context) (int, error)
}

// PackageHandler serves tour packages and guide assignment.
type PackageHandler struct {
	svc assignmentService
	log *slog.Logger
}

// NewPackageHandler creates a PackageHandler.
func NewPackageHandler(svc assignmentService, logger *slog.Logger) *PackageHandler {
	return &PackageHandler{svc: svc, log: logger.With("handler", "package")}
}

type upsertPackageRequest struct {
	Name              string   `json:"name"`
	Date              string   `json:"date"`
	RequiredLanguages []string `json:"requiredLanguages"`
	RequiredAreas     []string `json:"requiredAreas"`
}

type assignRequest struct {
	GuideID string `json:"guideId"`
}

type candidateResponse struct {
	Guide   guideSummary    `json:"guide"`
	Verdict verdictResponse `json:"verdict"`
}

type rebuildResponse struct {
	Rows int `json:"rows"`
}

// Upsert handles PUT /packages/{id}, the package directory sync.
func (h *PackageHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req upsertPackageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = domain.ParseDate(req.Date)
		if err != nil {
			handleError(h.log, w, r, domain.NewValidationError("date", "must be YYYY-MM-DD"))
			return
		}
	}

	pkg, err := h.svc.UpsertPackage(r.Context(), assignment.UpsertPackageInput{
		ID:                id,
		Name:              req.Name,
		Date:              date,
		RequiredLanguages: req.RequiredLanguages,
		RequiredAreas:     req.RequiredAreas,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPackageResponse(pkg))
}

// List handles GET /packages?assigned=&guideId=&limit=&offset=. Each item
// carries a summary of its assigned guide.
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}

	page, err := pageFromQuery(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	assigned, err := optionalBool(r, "assigned")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	filter := domain.PackageFilter{Assigned: assigned, Page: page}
	if v := optionalQuery(r, "guideId"); v != nil {
		id, err := parseID("guideId", *v)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		filter.GuideID = &id
	}

	result, err := h.svc.ListPackages(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	guideIDs := make([]uuid.UUID, 0, len(result.Packages))
	for _, pkg := range result.Packages {
		if pkg.AssignedGuideID != nil {
			guideIDs = append(guideIDs, *pkg.AssignedGuideID)
		}
	}
	guides, err := dataloader.LoadGuides(r.Context(), guideIDs)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]packageResponse, len(result.Packages))
	for i, pkg := range result.Packages {
		items[i] = toPackageResponse(pkg)
		if pkg.AssignedGuideID != nil {
			items[i].AssignedGuide = toGuideSummary(guides[*pkg.AssignedGuideID])
		}
	}

	writeJSON(w, http.StatusOK, listResponse[packageResponse]{Items: items, Total: result.Total})
}

// Get handles GET /packages/{id}.
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	pkg, err := h.svc.GetPackage(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := toPackageResponse(pkg)
	if pkg.AssignedGuideID != nil {
		guides, err := dataloader.LoadGuides(r.Context(), []uuid.UUID{*pkg.AssignedGuideID})
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		resp.AssignedGuide = toGuideSummary(guides[*pkg.AssignedGuideID])
	}

	writeJSON(w, http.StatusOK, resp)
}

// EligibleGuides handles GET /packages/{id}/eligible-guides.
func (h *PackageHandler) EligibleGuides(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	candidates, err := h.svc.EligibleGuides(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]candidateResponse, len(candidates))
	for i, c := range candidates {
		items[i] = candidateResponse{Guide: *toGuideSummary(c.Guide), Verdict: toVerdictResponse(c.Verdict)}
	}
	writeJSON(w, http.StatusOK, listResponse[candidateResponse]{Items: items, Total: len(items)})
}

// Eligibility handles GET /packages/{id}/eligibility/{guideId}.
func (h *PackageHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	pkgID, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	guideID, err := pathID(r, "guideId")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	verdict, err := h.svc.CheckEligibility(r.Context(), pkgID, guideID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toVerdictResponse(verdict))
}

// Assign handles POST /packages/{id}/assign.
func (h *PackageHandler) Assign(w http.ResponseWriter, r *http.Request) {
	h.bind(w, r, h.svc.Assign)
}

// Reassign handles POST /packages/{id}/reassign.
func (h *PackageHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	h.bind(w, r, h.svc.Reassign)
}

func (h *PackageHandler) bind(w http.ResponseWriter, r *http.Request, op func(context.Context, assignment.AssignInput) (*domain.TourPackage, error)) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	pkgID, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	guideID, err := parseID("guideId", req.GuideID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	pkg, err := op(r.Context(), assignment.AssignInput{PackageID: pkgID, GuideID: guideID})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPackageResponse(pkg))
}

// Unassign handles POST /packages/{id}/unassign.
func (h *PackageHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	pkg, err := h.svc.Unassign(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPackageResponse(pkg))
}

// Flagged handles GET /assignments/flagged: assignments that no longer pass
// eligibility against the current profiles.
func (h *PackageHandler) Flagged(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}

	flagged, err := h.svc.Review(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	guideIDs := make([]uuid.UUID, len(flagged))
	for i, f := range flagged {
		guideIDs[i] = f.GuideID
	}
	guides, err := dataloader.LoadGuides(r.Context(), guideIDs)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := toFlaggedResponses(flagged, guides)
	writeJSON(w, http.StatusOK, listResponse[flaggedResponse]{Items: items, Total: len(items)})
}

// RebuildIndex handles POST /assignments/rebuild-index.
func (h *PackageHandler) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}

	rows, err := h.svc.RebuildBusyIndex(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rebuildResponse{Rows: rows})
}
