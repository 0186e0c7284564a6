package em

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// RunRestarts trains the model once per restart parameters, with at most concurrency trainings at the same time, and
// keeps the restart with the highest log-likelihood. On ties the lowest restart index wins.
// The first failing restart cancels the others.
func (m *Model[P, S]) RunRestarts(ctx context.Context, restarts []Params, maxIters int, stopValue float64, concurrency int) error {
	if len(restarts) == 0 {
		return ErrNoRestarts
	}

	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*Result[P, S], len(restarts))

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(concurrency)

	for idx := range restarts {
		localIdx := idx
		errGrp.Go(func() error {
			res, err := m.train(dCtx, localIdx, restarts[localIdx], maxIters, stopValue)
			if err != nil {
				return errors.Wrapf(err, "restart %d", localIdx)
			}

			results[localIdx] = res

			return nil
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return err
	}

	m.setResult(bestResult(results))

	return nil
}

func bestResult[P, S any](results []*Result[P, S]) *Result[P, S] {
	best := results[0]
	for _, res := range results[1:] {
		if res.LogLikelihood > best.LogLikelihood {
			best = res
		}
	}

	return best
}
