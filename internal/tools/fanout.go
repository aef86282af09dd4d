package tools

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// fanOut runs fetch for every id concurrently and partitions the outcomes
// into results and errors keyed by the id's decimal string. The two maps are
// disjoint and their key union equals the deduplicated id set. Outbound HTTP
// concurrency is bounded by the providers' shared semaphore, not here.
func fanOut[T any](ctx context.Context, ids []int64, fetch func(ctx context.Context, id int64) (T, error)) (map[string]T, map[string]string) {
	results := make(map[string]T)
	errs := make(map[string]string)
	var mu sync.Mutex

	seen := make(map[int64]bool, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		id := id
		g.Go(func() error {
			val, err := fetch(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			key := strconv.FormatInt(id, 10)
			if err != nil {
				errs[key] = err.Error()
			} else {
				results[key] = val
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

// firstError returns the error message of the lowest-ordered requested id
// that failed, for the all-entities-failed case.
func firstError(ids []int64, errs map[string]string) string {
	for _, id := range ids {
		if msg, ok := errs[strconv.FormatInt(id, 10)]; ok {
			return msg
		}
	}
	return "unknown error"
}
