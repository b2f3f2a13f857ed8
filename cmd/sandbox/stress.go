package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/pool"
)

// stressOptions controls one stress run.
type stressOptions struct {
	Workers    int
	Iterations int
	Window     int
}

// stressReport sums the final pool statistics of every worker.
type stressReport struct {
	Workers       int
	Allocations   uint64
	Deallocations uint64
	Blocks        int
	Capacity      int
	Leaked        int
}

// particle is the stress workload, small enough to pack many per block.
type particle struct {
	X, Y, VX, VY float32
	TTL          int
}

// runStress runs opts.Workers goroutines, each churning shared pointers
// through its own allocator. Allocators are never shared between workers.
func runStress(ctx context.Context, spec pool.Specification, opts stressOptions, log *zap.Logger) (stressReport, error) {
	if opts.Workers < 1 || opts.Iterations < 0 || opts.Window < 1 {
		return stressReport{}, fmt.Errorf("invalid stress options: %+v", opts)
	}

	var (
		mu     sync.Mutex
		report = stressReport{Workers: opts.Workers}
	)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			alloc := pool.New(spec)
			defer alloc.Close()

			if err := churn(ctx, alloc, w, opts); err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, s := range alloc.Stats() {
				report.Allocations += s.Allocations
				report.Deallocations += s.Deallocations
				report.Blocks += s.Blocks
				report.Capacity += s.Capacity
				report.Leaked += s.InUse
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	log.Info("stress finished",
		zap.Int("workers", report.Workers),
		zap.Uint64("allocations", report.Allocations),
		zap.Uint64("deallocations", report.Deallocations),
		zap.Int("blocks", report.Blocks),
		zap.Int("leaked", report.Leaked))
	return report, nil
}

// churn keeps a sliding window of live particles. Every slot is shared
// with a second holder for one step, so both the copy and the move paths
// release chunks.
func churn(ctx context.Context, alloc *pool.PoolAllocator, worker int, opts stressOptions) error {
	window := make([]*memory.SharedPtr[particle], opts.Window)
	for i := range window {
		window[i] = &memory.SharedPtr[particle]{}
	}
	defer func() {
		for _, p := range window {
			p.Reset()
		}
	}()

	for i := 0; i < opts.Iterations; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		slot := (i*7 + worker) % opts.Window
		p := pool.AllocateShared(alloc, particle{X: float32(i), TTL: i % 13})
		if !p.Valid() {
			return fmt.Errorf("worker %d: allocation %d failed", worker, i)
		}

		holder := p.Copy()
		window[slot].MoveAssign(p)
		holder.Get().VX = 1
		holder.Reset()
	}
	return nil
}

func printStressReport(w io.Writer, r stressReport) {
	fmt.Fprintf(w, "Workers:       %d\n", r.Workers)
	fmt.Fprintf(w, "Allocations:   %d\n", r.Allocations)
	fmt.Fprintf(w, "Deallocations: %d\n", r.Deallocations)
	fmt.Fprintf(w, "Blocks:        %d\n", r.Blocks)
	fmt.Fprintf(w, "Capacity:      %d\n", r.Capacity)
	fmt.Fprintf(w, "Leaked:        %d\n", r.Leaked)
}
