package application

import (
	"context"
	"sync"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

var _ guideRepo = &guideRepoMock{}

type guideRepoMock struct {
	CreateFunc func(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error)

	calls struct {
		Create []struct {
			Ctx context.Context
			P   *domain.GuideProfile
		}
	}
	lockCreate sync.RWMutex
}

func (mock *guideRepoMock) Create(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error) {
	if mock.CreateFunc == nil {
		panic("guideRepoMock.CreateFunc: method is nil but guideRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		P   *domain.GuideProfile
	}{Ctx: ctx, P: p}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, p)
}

func (mock *guideRepoMock) CreateCalls() []struct {
	Ctx context.Context
	P   *domain.GuideProfile
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

var _ auditLogger = &auditLoggerMock{}

type auditLoggerMock struct {
	LogFunc func(ctx context.Context, entry domain.AuditEntry) error

	calls struct {
		Log []struct {
			Ctx   context.Context
			Entry domain.AuditEntry
		}
	}
	lockLog sync.RWMutex
}

func (mock *auditLoggerMock) Log(ctx context.Context, entry domain.AuditEntry) error {
	if mock.LogFunc == nil {
		panic("auditLoggerMock.LogFunc: method is nil but auditLogger.Log was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Entry domain.AuditEntry
	}{Ctx: ctx, Entry: entry}
	mock.lockLog.Lock()
	mock.calls.Log = append(mock.calls.Log, callInfo)
	mock.lockLog.Unlock()
	return mock.LogFunc(ctx, entry)
}

func (mock *auditLoggerMock) LogCalls() []struct {
	Ctx   context.Context
	Entry domain.AuditEntry
} {
	mock.lockLog.RLock()
	calls := mock.calls.Log
	mock.lockLog.RUnlock()
	return calls
}
