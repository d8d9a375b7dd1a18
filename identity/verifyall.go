package identity

import (
	"context"
	"sync"
)

// DefaultConcurrency bounds parallel resolutions in VerifyAll when the
// caller passes limit <= 0.
const DefaultConcurrency = 8

// VerifyAll resolves every request with at most limit concurrent
// resolutions. Results are positionally aligned with reqs. Resolution order
// is unspecified; results are not.
func (rs *Resolver) VerifyAll(ctx context.Context, reqs []Request, limit int) []Resolution {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	out := make([]Resolution, len(reqs))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = rs.Resolve(ctx, reqs[i])
		}(i)
	}
	wg.Wait()
	return out
}
