package em

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-emloh/pkg/priors"
)

// Data is the container of the paired tumor/normal measurements a model is fitted to.
type Data interface {
	// ReadData loads the data stored under filenameBase.
	ReadData(filenameBase string) error
}

// LatentVariables holds the posterior of the latent states. It is updated by the E-step.
type LatentVariables[P, S any] interface {
	// Update computes the posterior of the latent states given the current parameters.
	Update(ctx context.Context, parameters P, iteration int) error
	// SufficientStatistics returns the statistics the M-step needs.
	SufficientStatistics() S
}

// ModelParameters holds the parameters of a model. It is updated by the M-step.
type ModelParameters[P, S any] interface {
	// Parameters returns the current parameters.
	Parameters() P
	// Update computes new parameters from the sufficient statistics of the E-step.
	Update(ctx context.Context, stats S) error
}

// ParameterWriter is implemented by model parameters that can be saved.
type ParameterWriter interface {
	WriteParameters(filenameBase string) error
}

// ModelLikelihood evaluates the log-likelihood of a model.
type ModelLikelihood[P any] interface {
	LogLikelihood(parameters P, priors *priors.Priors) (float64, error)
}

// Setup gathers what the components of one training need.
type Setup struct {
	Priors            *priors.Priors
	Data              Data
	RestartIndex      int
	RestartParameters Params
	ConfigParameters  Params
}

// Components are the parts of a concrete model driven by the trainer.
type Components[P, S any] struct {
	LatentVariables LatentVariables[P, S]
	ModelParameters ModelParameters[P, S]
	ModelLikelihood ModelLikelihood[P]
}

// ComponentsFunc builds the components of one training. It must be safe for concurrent use when restarts run
// concurrently.
type ComponentsFunc[P, S any] func(ctx context.Context, setup *Setup) (*Components[P, S], error)

func (c *Components[P, S]) validate() error {
	if c == nil {
		return ErrComponentMustBeSet
	}

	if c.LatentVariables == nil {
		return errors.Wrap(ErrComponentMustBeSet, "latent variables")
	}

	if c.ModelParameters == nil {
		return errors.Wrap(ErrComponentMustBeSet, "model parameters")
	}

	if c.ModelLikelihood == nil {
		return errors.Wrap(ErrComponentMustBeSet, "model likelihood")
	}

	return nil
}
