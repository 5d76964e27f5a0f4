package enrich

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Pipeline coordinates the execution of a sequence of stages for items flowing
// through a channel. For each incoming item, steps within the same stage run in
// parallel, and stages themselves run sequentially. Any step errors are logged
// and do not stop processing of the current item.
//
// Pipeline is generic over the item type T.
type Pipeline[T any] struct {
	stages []Stage[T]
	logger zerolog.Logger
}

// NewPipeline constructs a Pipeline from the provided stages. Stages will be
// applied to each item in order.
func NewPipeline[T any](logger zerolog.Logger, stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages, logger: logger}
}

// Len returns the number of stages.
func (p *Pipeline[T]) Len() int {
	return len(p.stages)
}

// Process consumes items from the input channel until it is closed, applying
// every stage to each item in place:
//   - All steps in a stage are started concurrently and must complete before
//     moving to the next stage (a stage barrier).
//   - Errors returned by steps are logged and ignored.
//   - Once ctx is done the remaining items are drained without running steps,
//     and ctx.Err() is returned.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) error {
	for item := range in {
		if ctx.Err() != nil {
			continue
		}
		for i, stage := range p.stages {
			var wg sync.WaitGroup
			for _, step := range stage.steps {
				wg.Add(1)
				go func(step Step[T]) {
					defer wg.Done()
					if err := step(ctx, item); err != nil {
						p.logger.Warn().Err(err).Int("stage", i).Msg("Step failed")
					}
				}(step)
			}
			wg.Wait() // stage barrier
		}
	}
	return ctx.Err()
}

// ProcessSlice runs the pipeline over every element of items.
func (p *Pipeline[T]) ProcessSlice(ctx context.Context, items []T) error {
	in := make(chan *T)
	go func() {
		defer close(in)
		for i := range items {
			in <- &items[i]
		}
	}()
	return p.Process(ctx, in)
}
