package app

import (
	"log/slog"

	"github.com/heartmarshall/tourops-backend/internal/adapter/docstore"
	"github.com/heartmarshall/tourops-backend/internal/service/application"
	"github.com/heartmarshall/tourops-backend/internal/service/assignment"
	"github.com/heartmarshall/tourops-backend/internal/service/audit"
	"github.com/heartmarshall/tourops-backend/internal/service/guide"
	"github.com/heartmarshall/tourops-backend/internal/service/profilechange"
)

// Services holds every domain service built over one Storage.
type Services struct {
	Audit          *audit.Service
	Applications   *application.Service
	Guides         *guide.Service
	ChangeRequests *profilechange.Service
	Assignments    *assignment.Service
}

// NewServices wires the services. docs backs evidence checks on change
// requests.
func NewServices(log *slog.Logger, st *Storage, docs *docstore.Store) *Services {
	auditService := audit.NewService(log, st.Audit)
	assignments := assignment.NewService(log, st.Packages, st.Guides, auditService, st.Tx)

	return &Services{
		Audit:          auditService,
		Applications:   application.NewService(log, st.Applications, st.Guides, auditService, st.Tx),
		Guides:         guide.NewService(log, st.Guides, st.ChangeRequests, auditService, auditService, st.Tx),
		ChangeRequests: profilechange.NewService(log, st.ChangeRequests, st.Guides, docs, assignments, auditService, st.Tx),
		Assignments:    assignments,
	}
}
