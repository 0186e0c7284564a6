package em_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-emloh/pkg/em"
	"github.com/askiada/go-emloh/pkg/em/model"
	"github.com/askiada/go-emloh/pkg/priors"
)

func TestNewTrainerNilFactory(t *testing.T) {
	t.Parallel()

	_, err := em.NewTrainer[float64, int](context.Background(), nil, nil, 10, 1e-3)
	assert.ErrorIs(t, err, em.ErrFactoryMustBeSet)
}

func TestNewTrainerInvalidSettings(t *testing.T) {
	t.Parallel()

	s := newScripted(-1)

	_, err := em.NewTrainer(context.Background(), nil, s.factory, -1, 1e-3)
	assert.ErrorIs(t, err, em.ErrNegativeMaxIters)

	_, err = em.NewTrainer(context.Background(), nil, s.factory, 10, -1e-3)
	assert.ErrorIs(t, err, em.ErrNegativeStopValue)

	_, err = em.NewTrainer(context.Background(), nil, s.factory, 10, math.NaN())
	assert.ErrorIs(t, err, em.ErrNegativeStopValue)
}

func TestNewTrainerFactoryError(t *testing.T) {
	t.Parallel()

	_, err := em.NewTrainer(context.Background(), nil, func(ctx context.Context, setup *em.Setup) (*em.Components[float64, int], error) {
		return nil, assert.AnError
	}, 10, 1e-3)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewTrainerMissingComponent(t *testing.T) {
	t.Parallel()

	s := newScripted(-1)

	_, err := em.NewTrainer(context.Background(), nil, func(ctx context.Context, setup *em.Setup) (*em.Components[float64, int], error) {
		return nil, nil
	}, 10, 1e-3)
	assert.ErrorIs(t, err, em.ErrComponentMustBeSet)

	_, err = em.NewTrainer(context.Background(), nil, func(ctx context.Context, setup *em.Setup) (*em.Components[float64, int], error) {
		return &em.Components[float64, int]{
			LatentVariables: s.latent,
			ModelParameters: s.parameters,
		}, nil
	}, 10, 1e-3)
	assert.ErrorIs(t, err, em.ErrComponentMustBeSet)
}

func TestTrainStopValue(t *testing.T) {
	t.Parallel()

	// initial, then one value per iteration: changes are +Inf, 0.5 and 0.
	s := newScripted(-100, -50, -25, -25)
	rec := &recordingObserver{}

	trainer, err := em.NewTrainer(context.Background(), nil, s.factory, 10, 1e-3, rec)
	require.NoError(t, err)

	err = trainer.Train(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, trainer.Iterations())
	assert.Equal(t, -25.0, trainer.LogLikelihood())
	assert.Equal(t, []int{0, 1, 2}, s.latent.iterations)
	assert.Equal(t, []int{1, 2, 3}, s.parameters.stats)
	// the likelihood always sees the parameters after the M-step
	assert.Equal(t, []float64{0, 1, 2, 3}, s.likelihood.params)

	require.Len(t, rec.iterations, 3)
	assert.True(t, math.IsInf(rec.iterations[0].LLChange, 1))
	assert.Equal(t, -100.0, rec.iterations[0].OldLogLikelihood)
	assert.Equal(t, -50.0, rec.iterations[0].NewLogLikelihood)
	assert.InDelta(t, 0.5, rec.iterations[1].LLChange, 1e-12)
	assert.Equal(t, -50.0, rec.iterations[1].OldLogLikelihood)
	assert.Equal(t, 0.0, rec.iterations[2].LLChange)
	assert.False(t, rec.iterations[1].Converged())
	assert.True(t, rec.iterations[2].StopValueReached)
	assert.False(t, rec.iterations[2].MaxItersReached)

	res := trainer.Result()
	assert.Equal(t, model.StopValue, res.StopReason)
	assert.Equal(t, []float64{-50, -25, -25}, res.History)
	assert.Equal(t, 3.0, res.Parameters())
}

func TestTrainMaxItersZeroRunsOnce(t *testing.T) {
	t.Parallel()

	s := newScripted(-100, -50)

	trainer, err := em.NewTrainer(context.Background(), nil, s.factory, 0, 1e-3)
	require.NoError(t, err)

	err = trainer.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, trainer.Iterations())
	assert.Equal(t, -50.0, trainer.LogLikelihood())
	assert.Equal(t, model.MaxIterations, trainer.Result().StopReason)
}

func TestTrainZeroStopValueRunsMaxIters(t *testing.T) {
	t.Parallel()

	s := newScripted(-100, -50, -50)

	trainer, err := em.NewTrainer(context.Background(), nil, s.factory, 3, 0)
	require.NoError(t, err)

	err = trainer.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, trainer.Iterations())
	assert.Equal(t, model.MaxIterations, trainer.Result().StopReason)
}

func TestTrainNaNChangeNeverReachesStopValue(t *testing.T) {
	t.Parallel()

	s := newScripted(0, 0, 0)
	rec := &recordingObserver{}

	trainer, err := em.NewTrainer(context.Background(), nil, s.factory, 2, 1e-3, rec)
	require.NoError(t, err)

	err = trainer.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, trainer.Iterations())
	assert.True(t, math.IsNaN(rec.iterations[1].LLChange))
	assert.False(t, rec.iterations[1].StopValueReached)
	assert.Equal(t, model.MaxIterations, trainer.Result().StopReason)
}

func TestTrainBothStopConditions(t *testing.T) {
	t.Parallel()

	s := newScripted(-10, -5, -5)
	rec := &recordingObserver{}

	trainer, err := em.NewTrainer(context.Background(), nil, s.factory, 1, 1e-3, rec)
	require.NoError(t, err)

	err = trainer.Train(context.Background())
	require.NoError(t, err)
	require.Len(t, rec.iterations, 2)
	assert.True(t, rec.iterations[1].StopValueReached)
	assert.True(t, rec.iterations[1].MaxItersReached)
	assert.Equal(t, model.StopValue, trainer.Result().StopReason)
}

func TestTrainObserverCalls(t *testing.T) {
	t.Parallel()

	s := newScripted(-100, -50, -50)
	rec := &recordingObserver{}

	trainer, err := em.NewTrainer(context.Background(), &em.Setup{RestartIndex: 4}, s.factory, 10, 1e-3, rec)
	require.NoError(t, err)

	err = trainer.Train(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rec.news)
	assert.Equal(t, 1, rec.finished)
	assert.Len(t, rec.links, len(model.StageLinks()))
	assert.Equal(t, [2]string{"start", "e-step"}, rec.links[0])
	assert.Equal(t, []stageOutput{
		{"e-step", 0}, {"m-step", 0}, {"likelihood", 0}, {"convergence", 0},
		{"e-step", 1}, {"m-step", 1}, {"likelihood", 1}, {"convergence", 1},
	}, rec.outputs)
	for _, info := range rec.iterations {
		assert.Equal(t, 4, info.RestartIndex)
	}
}

func TestTrainObserverError(t *testing.T) {
	t.Parallel()

	s := newScripted(-100, -50, -50)
	rec := &recordingObserver{err: assert.AnError}

	trainer, err := em.NewTrainer(context.Background(), nil, s.factory, 10, 1e-3, rec)
	require.NoError(t, err)

	err = trainer.Train(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, rec.finished)
}

func TestTrainStageErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]func(s *scripted){
		"e-step":     func(s *scripted) { s.latent.err = assert.AnError },
		"m-step":     func(s *scripted) { s.parameters.err = assert.AnError },
		"likelihood": func(s *scripted) { s.likelihood.err = assert.AnError },
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := newScripted(-100, -50)
			tc(s)

			trainer, err := em.NewTrainer(context.Background(), nil, s.factory, 10, 1e-3)
			require.NoError(t, err)

			err = trainer.Train(context.Background())
			assert.ErrorIs(t, err, assert.AnError)
		})
	}
}

func TestTrainCancel(t *testing.T) {
	t.Parallel()

	s := newScripted(-100, -50)
	ctx, cancel := context.WithCancel(context.Background())

	trainer, err := em.NewTrainer(ctx, nil, s.factory, 10, 1e-3)
	require.NoError(t, err)

	cancel()

	err = trainer.Train(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.latent.iterations)
}

func TestNewTrainerCanceledSkipsFactory(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := em.NewTrainer(ctx, nil, func(ctx context.Context, setup *em.Setup) (*em.Components[float64, int], error) {
		calls++
		return newScripted(-1).factory(ctx, setup)
	}, 10, 1e-3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestTrainBinomialMixture(t *testing.T) {
	t.Parallel()

	data := newCountsData(t)
	setup := &em.Setup{
		Priors: priors.New([]float64{1, 1}),
		Data:   data,
		RestartParameters: em.Params{
			"p0": 0.2,
			"p1": 0.4,
		},
	}

	trainer, err := em.NewTrainer(context.Background(), setup, mixtureFactory, 200, 1e-10)
	require.NoError(t, err)

	err = trainer.Train(context.Background())
	require.NoError(t, err)

	res := trainer.Result()
	assert.Equal(t, model.StopValue, res.StopReason)
	assert.Equal(t, res.History[len(res.History)-1], res.LogLikelihood)

	for i := 1; i < len(res.History); i++ {
		assert.GreaterOrEqual(t, res.History[i], res.History[i-1]-1e-9, "log-likelihood decreased at iteration %d", i)
	}

	params := res.Parameters()
	assert.InDelta(t, 0.1, params.Probs[0], 0.01)
	assert.InDelta(t, 0.5, params.Probs[1], 0.01)
	assert.InDelta(t, 0.5, params.Weights[0], 0.01)
	assert.InDelta(t, 1, params.Weights[0]+params.Weights[1], 1e-9)
}
