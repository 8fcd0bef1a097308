package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Engine processes many documents in parallel on a bounded goroutine pool.
// Documents share nothing, so the only coordination is collecting results.
type Engine struct {
	proc *Processor
	pool *ants.Pool
}

// NewEngine creates a pool of size workers; size <= 0 means one per CPU.
func NewEngine(proc *Processor, size int) (*Engine, error) {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Engine{proc: proc, pool: pool}, nil
}

// ProcessBatch runs every document and returns results in input order.
// Cancelling ctx stops submitting new documents; ones already running
// finish.
func (e *Engine) ProcessBatch(ctx context.Context, docs []Document) ([]Result, error) {
	results := make([]Result, len(docs))
	var wg sync.WaitGroup

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results[i] = e.proc.Process(doc)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit document %d: %w", i, err)
		}
	}

	wg.Wait()
	return results, nil
}

// Release stops the pool.
func (e *Engine) Release() {
	e.pool.Release()
}
