// SPDX-License-Identifier: MIT

package scorer

import (
	"context"
	"fmt"

	"github.com/rostro36/evodiff/model"
	"golang.org/x/sync/semaphore"
)

// Pooled bounds the number of concurrent calls into a Scorer, e.g. to the
// number of model replicas or accelerator slots.
type Pooled struct {
	next model.Scorer
	sem  *semaphore.Weighted
}

// NewPooled wraps next so that at most size calls run at once.
func NewPooled(next model.Scorer, size int) (*Pooled, error) {
	if next == nil || size <= 0 {
		return nil, fmt.Errorf("NewPooled(size=%d): %w", size, ErrOptionViolation)
	}

	return &Pooled{next: next, sem: semaphore.NewWeighted(int64(size))}, nil
}

// Score waits for a free slot, honouring ctx, then delegates.
func (p *Pooled) Score(ctx context.Context, ec model.ExecContext, tokens [][]int, timesteps []int) (*model.Logits, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("scorer: acquire slot: %w", err)
	}
	defer p.sem.Release(1)

	return p.next.Score(ctx, ec, tokens, timesteps)
}
