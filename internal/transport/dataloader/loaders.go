package dataloader

import (
	"context"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// Guide by ID (1:1 nullable)
func newGuideBatchFn(repo guideRepo) dataloader.BatchFunc[uuid.UUID, *domain.GuideProfile] {
	return func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[*domain.GuideProfile] {
		guides, err := repo.GetByIDs(ctx, keys)
		if err != nil {
			return errorResults[*domain.GuideProfile](len(keys), err)
		}

		byID := make(map[uuid.UUID]*domain.GuideProfile, len(guides))
		for _, g := range guides {
			byID[g.ID] = g
		}

		results := make([]*dataloader.Result[*domain.GuideProfile], len(keys))
		for i, key := range keys {
			results[i] = &dataloader.Result[*domain.GuideProfile]{Data: byID[key]}
		}
		return results
	}
}

func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}
