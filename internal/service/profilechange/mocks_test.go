package profilechange

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

var _ assignmentReviewer = &assignmentReviewerMock{}

type assignmentReviewerMock struct {
	ReviewGuideFunc func(ctx context.Context, guideID uuid.UUID) ([]domain.FlaggedAssignment, error)

	calls struct {
		ReviewGuide []struct {
			Ctx     context.Context
			GuideID uuid.UUID
		}
	}
	lockReviewGuide sync.RWMutex
}

func (mock *assignmentReviewerMock) ReviewGuide(ctx context.Context, guideID uuid.UUID) ([]domain.FlaggedAssignment, error) {
	if mock.ReviewGuideFunc == nil {
		panic("assignmentReviewerMock.ReviewGuideFunc: method is nil but assignmentReviewer.ReviewGuide was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		GuideID uuid.UUID
	}{Ctx: ctx, GuideID: guideID}
	mock.lockReviewGuide.Lock()
	mock.calls.ReviewGuide = append(mock.calls.ReviewGuide, callInfo)
	mock.lockReviewGuide.Unlock()
	return mock.ReviewGuideFunc(ctx, guideID)
}

func (mock *assignmentReviewerMock) ReviewGuideCalls() []struct {
	Ctx     context.Context
	GuideID uuid.UUID
} {
	mock.lockReviewGuide.RLock()
	calls := mock.calls.ReviewGuide
	mock.lockReviewGuide.RUnlock()
	return calls
}

var _ documentStore = &documentStoreMock{}

type documentStoreMock struct {
	ExistsFunc func(ctx context.Context, ref string) (bool, error)

	calls struct {
		Exists []struct {
			Ctx context.Context
			Ref string
		}
	}
	lockExists sync.RWMutex
}

func (mock *documentStoreMock) Exists(ctx context.Context, ref string) (bool, error) {
	if mock.ExistsFunc == nil {
		panic("documentStoreMock.ExistsFunc: method is nil but documentStore.Exists was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ref string
	}{Ctx: ctx, Ref: ref}
	mock.lockExists.Lock()
	mock.calls.Exists = append(mock.calls.Exists, callInfo)
	mock.lockExists.Unlock()
	return mock.ExistsFunc(ctx, ref)
}

func (mock *documentStoreMock) ExistsCalls() []struct {
	Ctx context.Context
	Ref string
} {
	mock.lockExists.RLock()
	calls := mock.calls.Exists
	mock.lockExists.RUnlock()
	return calls
}
