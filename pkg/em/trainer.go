package em

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-emloh/pkg/em/model"
)

// Result is the outcome of one training.
type Result[P, S any] struct {
	RestartIndex    int
	ModelParameters ModelParameters[P, S]
	LogLikelihood   float64
	Iterations      int
	StopReason      model.StopReason
	// History holds the log-likelihood computed at the end of every iteration.
	History []float64
}

// Parameters returns the trained parameters.
func (r *Result[P, S]) Parameters() P {
	return r.ModelParameters.Parameters()
}

// Trainer runs the EM loop over the components of a model.
type Trainer[P, S any] struct {
	setup      *Setup
	components *Components[P, S]
	observers  []model.Observer

	maxIters  int
	stopValue float64

	iters         int
	logLikelihood float64
	stopReason    model.StopReason
	history       []float64
}

// NewTrainer creates a trainer. The components are built by the factory from the setup.
func NewTrainer[P, S any](
	ctx context.Context,
	setup *Setup,
	factory ComponentsFunc[P, S],
	maxIters int,
	stopValue float64,
	observers ...model.Observer,
) (*Trainer[P, S], error) {
	if factory == nil {
		return nil, ErrFactoryMustBeSet
	}

	if maxIters < 0 {
		return nil, ErrNegativeMaxIters
	}

	if stopValue < 0 || math.IsNaN(stopValue) {
		return nil, ErrNegativeStopValue
	}

	if setup == nil {
		setup = &Setup{}
	}

	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "unable to init components")
	}

	components, err := factory(ctx, setup)
	if err != nil {
		return nil, errors.Wrap(err, "unable to init components")
	}

	err = components.validate()
	if err != nil {
		return nil, err
	}

	return &Trainer[P, S]{
		setup:      setup,
		components: components,
		observers:  observers,
		maxIters:   maxIters,
		stopValue:  stopValue,
	}, nil
}

// Train runs E-step, M-step and likelihood evaluation until the relative change of the log-likelihood is lower than
// the stop value, or the maximum number of iterations is exceeded. At least one iteration always runs.
func (t *Trainer[P, S]) Train(ctx context.Context) error {
	startTime := time.Now()

	err := t.prepareObservers()
	if err != nil {
		return err
	}

	priors := t.setup.Priors
	parameters := t.components.ModelParameters.Parameters()

	oldLogLikelihood, err := t.components.ModelLikelihood.LogLikelihood(parameters, priors)
	if err != nil {
		return errors.Wrap(err, "unable to compute initial log-likelihood")
	}

	var newLogLikelihood float64

	converged := false
	for !converged {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "iteration %d", t.iters)
		}

		err = t.runStage(model.EStepStage, func() error {
			return t.components.LatentVariables.Update(ctx, parameters, t.iters)
		})
		if err != nil {
			return err
		}

		err = t.runStage(model.MStepStage, func() error {
			return t.components.ModelParameters.Update(ctx, t.components.LatentVariables.SufficientStatistics())
		})
		if err != nil {
			return err
		}

		parameters = t.components.ModelParameters.Parameters()

		err = t.runStage(model.LikelihoodStage, func() error {
			var llErr error
			newLogLikelihood, llErr = t.components.ModelLikelihood.LogLikelihood(parameters, priors)

			return llErr
		})
		if err != nil {
			return err
		}

		info := &model.IterationInfo{
			RestartIndex:     t.setup.RestartIndex,
			Iteration:        t.iters,
			NewLogLikelihood: newLogLikelihood,
			OldLogLikelihood: oldLogLikelihood,
		}

		err = t.runStage(model.ConvergenceStage, func() error {
			t.checkConvergence(info)

			return nil
		})
		if err != nil {
			return err
		}

		oldLogLikelihood = newLogLikelihood
		converged = info.Converged()
		t.history = append(t.history, newLogLikelihood)

		for _, obs := range t.observers {
			err = obs.OnIteration(info)
			if err != nil {
				return errors.Wrapf(err, "unable to report iteration %d", t.iters)
			}
		}

		if converged {
			t.stopReason = info.StopReason()
		}

		t.iters++
	}

	t.logLikelihood = newLogLikelihood

	return t.finishObservers(time.Since(startTime))
}

// checkConvergence fills the relative change of the log-likelihood and the stop conditions.
// A NaN change never reaches the stop value.
func (t *Trainer[P, S]) checkConvergence(info *model.IterationInfo) {
	info.LLChange = math.Inf(1)
	if t.iters > 0 {
		info.LLChange = (info.NewLogLikelihood - info.OldLogLikelihood) / math.Abs(info.OldLogLikelihood)
	}

	info.StopValueReached = math.Abs(info.LLChange) < t.stopValue
	info.MaxItersReached = t.iters >= t.maxIters
}

func (t *Trainer[P, S]) runStage(stage *model.StageInfo, stageFn func() error) error {
	start := time.Now()

	err := stageFn()
	if err != nil {
		return errors.Wrapf(err, "%s iteration %d", stage.Name, t.iters)
	}

	elapsed := time.Since(start)
	for _, obs := range t.observers {
		err = obs.OnStageOutput(stage, t.iters, elapsed)
		if err != nil {
			return errors.Wrapf(err, "unable to report %s output", stage.Name)
		}
	}

	return nil
}

func (t *Trainer[P, S]) prepareObservers() error {
	for _, obs := range t.observers {
		err := obs.New()
		if err != nil {
			return errors.Wrap(err, "unable to init observer")
		}

		for _, link := range model.StageLinks() {
			err = obs.PrepareStage(link[0], link[1])
			if err != nil {
				return errors.Wrapf(err, "unable to prepare stage %s", link[1].Name)
			}
		}
	}

	return nil
}

func (t *Trainer[P, S]) finishObservers(totalDuration time.Duration) error {
	for _, obs := range t.observers {
		err := obs.Finish(totalDuration)
		if err != nil {
			return errors.Wrap(err, "unable to finish observer")
		}
	}

	return nil
}

// Iterations returns the number of EM iterations run so far.
func (t *Trainer[P, S]) Iterations() int {
	return t.iters
}

// LogLikelihood returns the log-likelihood reached by the last training.
func (t *Trainer[P, S]) LogLikelihood() float64 {
	return t.logLikelihood
}

// ModelParameters returns the parameters component.
func (t *Trainer[P, S]) ModelParameters() ModelParameters[P, S] {
	return t.components.ModelParameters
}

// Result returns the outcome of the training.
func (t *Trainer[P, S]) Result() *Result[P, S] {
	history := make([]float64, len(t.history))
	copy(history, t.history)

	return &Result[P, S]{
		RestartIndex:    t.setup.RestartIndex,
		ModelParameters: t.components.ModelParameters,
		LogLikelihood:   t.logLikelihood,
		Iterations:      t.iters,
		StopReason:      t.stopReason,
		History:         history,
	}
}
