package em

import "github.com/pkg/errors"

var (
	ErrNotImplemented         = errors.New("not implemented")
	ErrDataMustBeSet          = errors.New("data must be set")
	ErrFactoryMustBeSet       = errors.New("components factory must be set")
	ErrComponentMustBeSet     = errors.New("component must be set")
	ErrInvalidAllelenumberMax = errors.New("allele number max must be greater or equal to 0")
	ErrNegativeMaxIters       = errors.New("max iters must be greater or equal to 0")
	ErrNegativeStopValue      = errors.New("stop value must be greater or equal to 0")
	ErrPriorsNotRead          = errors.New("priors must be read before running the model")
	ErrNotTrained             = errors.New("model must be trained first")
	ErrNoRestarts             = errors.New("at least one restart is required")
	ErrMissingParameter       = errors.New("missing parameter")
	ErrNotInteger             = errors.New("parameter is not an integer")
)
