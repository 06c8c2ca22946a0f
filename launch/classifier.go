package launch

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
	"golang.org/x/sync/errgroup"

	"dataclassification/classify"
	"dataclassification/entity"
)

const chunkSize = 2048

// WorkerCount returns configured when positive, otherwise the number of
// logical CPUs.
func WorkerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// ClassifyAll assigns a classification to every record in place. Chunks are
// spread over workers goroutines; each goroutine only touches its own chunk,
// so the slice keeps its order. Cancellation is checked between chunks.
func ClassifyAll(ctx context.Context, records []entity.ActivityRecord, workers int, log zerolog.Logger) error {
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(records); start += chunkSize {
		if gctx.Err() != nil {
			break
		}
		chunk := records[start:min(start+chunkSize, len(records))]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := range chunk {
				rule := classify.ClassifyRecord(&chunk[i])
				if e := log.Trace(); e.Enabled() {
					e.Str("rule", rule).
						Str("process", chunk[i].ProcessName).
						Str("category", chunk[i].Classification.Category).
						Str("sub_category", chunk[i].Classification.SubCategory).
						Msg("record classified")
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
