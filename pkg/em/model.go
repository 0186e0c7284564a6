package em

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-emloh/pkg/em/model"
	"github.com/askiada/go-emloh/pkg/priors"
)

// Model is a probabilistic model fitted with EM. P is the type of the model parameters and S the type of the
// sufficient statistics exchanged between the E-step and the M-step.
type Model[P, S any] struct {
	allelenumberMax int
	priorsParser    *priors.Parser
	data            Data
	factory         ComponentsFunc[P, S]
	opts            *modelOptions

	mu               sync.RWMutex
	priors           *priors.Priors
	configParameters Params
	result           *Result[P, S]
}

// NewModel creates a model enumerating tumor copy numbers up to allelenumberMax.
func NewModel[P, S any](allelenumberMax int, data Data, factory ComponentsFunc[P, S], opts ...ModelOption) (*Model[P, S], error) {
	if allelenumberMax < 0 {
		return nil, ErrInvalidAllelenumberMax
	}

	if data == nil {
		return nil, ErrDataMustBeSet
	}

	if factory == nil {
		return nil, ErrFactoryMustBeSet
	}

	options := &modelOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.logger == nil {
		options.logger = logrus.StandardLogger()
	}

	return &Model[P, S]{
		allelenumberMax:  allelenumberMax,
		priorsParser:     priors.NewParser(),
		data:             data,
		factory:          factory,
		opts:             options,
		configParameters: options.configParameters.Clone(),
	}, nil
}

// ReadPriors reads the priors of every tumor copy number of the model.
func (m *Model[P, S]) ReadPriors(priorsFilename string) error {
	p, err := m.priorsParser.ReadPriors(priorsFilename, m.allelenumberMax)
	if err != nil {
		return errors.Wrap(err, "unable to read priors")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.priors = p

	return nil
}

// SetPriors sets the priors without reading a file.
func (m *Model[P, S]) SetPriors(p *priors.Priors) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priors = p
}

// ReadData reads the data of the model.
func (m *Model[P, S]) ReadData(filenameBase string) error {
	err := m.data.ReadData(filenameBase)
	if err != nil {
		return errors.Wrapf(err, "unable to read data %s", filenameBase)
	}

	return nil
}

// Preprocess computes the config parameters from the data. It returns ErrNotImplemented when the model has no
// preprocessing hook.
func (m *Model[P, S]) Preprocess(ctx context.Context) error {
	if m.opts.preprocess == nil {
		return errors.Wrap(ErrNotImplemented, "preprocess")
	}

	params, err := m.opts.preprocess(ctx, m.data)
	if err != nil {
		return errors.Wrap(err, "unable to preprocess data")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.configParameters = params.Clone()

	return nil
}

// Run trains the model once from the given restart parameters and keeps the trained parameters.
func (m *Model[P, S]) Run(ctx context.Context, idxRestart int, restartParameters Params, maxIters int, stopValue float64) error {
	res, err := m.train(ctx, idxRestart, restartParameters, maxIters, stopValue)
	if err != nil {
		return err
	}

	m.setResult(res)

	return nil
}

// RunConfig runs every restart of the config and keeps the best one.
func (m *Model[P, S]) RunConfig(ctx context.Context, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	err := cfg.Validate()
	if err != nil {
		return err
	}

	return m.RunRestarts(ctx, cfg.restarts(), cfg.MaxIters, cfg.StopValue, cfg.Concurrency)
}

func (m *Model[P, S]) train(ctx context.Context, idxRestart int, restartParameters Params, maxIters int, stopValue float64) (*Result[P, S], error) {
	m.mu.RLock()
	setup := &Setup{
		Priors:            m.priors,
		Data:              m.data,
		RestartIndex:      idxRestart,
		RestartParameters: restartParameters.Clone(),
		ConfigParameters:  m.configParameters.Clone(),
	}
	m.mu.RUnlock()

	if setup.Priors == nil {
		return nil, ErrPriorsNotRead
	}

	observers, err := m.observers(idxRestart)
	if err != nil {
		return nil, err
	}

	trainer, err := NewTrainer(ctx, setup, m.factory, maxIters, stopValue, observers...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create trainer")
	}

	err = trainer.Train(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to train model")
	}

	return trainer.Result(), nil
}

func (m *Model[P, S]) observers(idxRestart int) ([]model.Observer, error) {
	observers := []model.Observer{
		NewLoggingObserver(m.opts.logger.WithField("restart", idxRestart)),
	}

	if m.opts.observerFactory == nil {
		return observers, nil
	}

	extra, err := m.opts.observerFactory(idxRestart)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create observers of restart %d", idxRestart)
	}

	return append(observers, extra...), nil
}

func (m *Model[P, S]) setResult(res *Result[P, S]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = res
}

// WriteParameters writes the trained parameters. The parameters must implement ParameterWriter.
func (m *Model[P, S]) WriteParameters(filenameBase string) error {
	res := m.Result()
	if res == nil {
		return ErrNotTrained
	}

	writer, ok := res.ModelParameters.(ParameterWriter)
	if !ok {
		return errors.Wrap(ErrNotImplemented, "write parameters")
	}

	err := writer.WriteParameters(filenameBase)
	if err != nil {
		return errors.Wrapf(err, "unable to write parameters %s", filenameBase)
	}

	return nil
}

// Result returns the outcome of the last run, nil before any run.
func (m *Model[P, S]) Result() *Result[P, S] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.result
}

// Parameters returns the trained parameters.
func (m *Model[P, S]) Parameters() (P, error) {
	res := m.Result()
	if res == nil {
		var zero P
		return zero, ErrNotTrained
	}

	return res.Parameters(), nil
}

// LogLikelihood returns the log-likelihood of the trained parameters.
func (m *Model[P, S]) LogLikelihood() (float64, error) {
	res := m.Result()
	if res == nil {
		return 0, ErrNotTrained
	}

	return res.LogLikelihood, nil
}

// BestRestart returns the index of the restart whose parameters were kept.
func (m *Model[P, S]) BestRestart() (int, error) {
	res := m.Result()
	if res == nil {
		return 0, ErrNotTrained
	}

	return res.RestartIndex, nil
}

// Priors returns the priors of the model, nil before they are read.
func (m *Model[P, S]) Priors() *priors.Priors {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.priors
}

// ConfigParameters returns a copy of the config parameters.
func (m *Model[P, S]) ConfigParameters() Params {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.configParameters.Clone()
}

// AllelenumberMax returns the highest tumor copy number of the model.
func (m *Model[P, S]) AllelenumberMax() int {
	return m.allelenumberMax
}
