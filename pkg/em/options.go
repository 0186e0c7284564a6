package em

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/askiada/go-emloh/pkg/em/model"
)

// PreprocessFunc computes the config parameters of a model from its data.
type PreprocessFunc func(ctx context.Context, data Data) (Params, error)

// ObserverFactory builds the observers of one restart.
type ObserverFactory func(restartIndex int) ([]model.Observer, error)

type ModelOption func(opts *modelOptions)

type modelOptions struct {
	logger           logrus.FieldLogger
	preprocess       PreprocessFunc
	observerFactory  ObserverFactory
	configParameters Params
}

// WithLogger sets the logger reporting the running information of the trainers.
func WithLogger(logger logrus.FieldLogger) ModelOption {
	return func(opts *modelOptions) {
		opts.logger = logger
	}
}

// WithPreprocess sets the preprocessing hook of the model.
func WithPreprocess(preprocess PreprocessFunc) ModelOption {
	return func(opts *modelOptions) {
		opts.preprocess = preprocess
	}
}

// WithObserverFactory adds observers to every restart.
func WithObserverFactory(factory ObserverFactory) ModelOption {
	return func(opts *modelOptions) {
		opts.observerFactory = factory
	}
}

// WithConfigParameters sets the config parameters without running the preprocessing.
func WithConfigParameters(params Params) ModelOption {
	return func(opts *modelOptions) {
		opts.configParameters = params
	}
}
