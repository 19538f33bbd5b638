// Package dataloader provides per-request DataLoaders that batch guide
// lookups made while rendering package and assignment listings into single
// repository calls. Loaders call repositories directly, bypassing services.
package dataloader

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

type guideRepo interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.GuideProfile, error)
}

// Repos holds the repositories required by the loaders.
type Repos struct {
	Guide guideRepo
}

// Loaders is created per request via NewLoaders.
type Loaders struct {
	GuideByID *dataloader.Loader[uuid.UUID, *domain.GuideProfile]
}

// NewLoaders creates a new set of loaders. Results are cached for the
// lifetime of the returned value, so call it once per request.
func NewLoaders(repos *Repos) *Loaders {
	return &Loaders{
		GuideByID: newLoader(newGuideBatchFn(repos.Guide)),
	}
}

func newLoader[V any](batchFn dataloader.BatchFunc[uuid.UUID, V]) *dataloader.Loader[uuid.UUID, V] {
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[uuid.UUID, V](wait),
		dataloader.WithBatchCapacity[uuid.UUID, V](maxBatch),
	)
}

type contextKey string

const loadersKey contextKey = "dataloaders"

// WithLoaders stores Loaders in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext retrieves Loaders from the context.
// Panics if loaders are not present (middleware misconfiguration).
func FromContext(ctx context.Context) *Loaders {
	l, ok := ctx.Value(loadersKey).(*Loaders)
	if !ok || l == nil {
		panic("dataloader: loaders not found in context, is the middleware configured?")
	}
	return l
}

// LoadGuides resolves ids through the request's loader. Missing guides are
// absent from the returned map.
func LoadGuides(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.GuideProfile, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.GuideProfile{}, nil
	}
	thunk := FromContext(ctx).GuideByID.LoadMany(ctx, ids)
	guides, errs := thunk()

	out := make(map[uuid.UUID]*domain.GuideProfile, len(ids))
	for i, id := range ids {
		if len(errs) > i && errs[i] != nil {
			return nil, errs[i]
		}
		if guides[i] != nil {
			out[id] = guides[i]
		}
	}
	return out, nil
}
