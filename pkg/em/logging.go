package em

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/askiada/go-emloh/pkg/em/model"
)

// LoggingObserver logs the running information of the EM iterations.
type LoggingObserver struct {
	logger logrus.FieldLogger
}

// NewLoggingObserver creates an observer logging with the given logger. A nil logger uses the standard logger.
func NewLoggingObserver(logger logrus.FieldLogger) *LoggingObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &LoggingObserver{logger: logger}
}

func (lo *LoggingObserver) New() error {
	return nil
}

func (lo *LoggingObserver) PrepareStage(parentStage, stage *model.StageInfo) error {
	return nil
}

func (lo *LoggingObserver) OnStageOutput(stage *model.StageInfo, iteration int, elapsed time.Duration) error {
	lo.logger.WithFields(logrus.Fields{
		"stage":     stage.Name,
		"iteration": iteration,
		"elapsed":   elapsed,
	}).Debug("stage done")

	return nil
}

func (lo *LoggingObserver) OnIteration(info *model.IterationInfo) error {
	entry := lo.logger.WithFields(logrus.Fields{
		"restart":            info.RestartIndex,
		"iteration":          info.Iteration,
		"new_log_likelihood": info.NewLogLikelihood,
		"old_log_likelihood": info.OldLogLikelihood,
		"ll_change":          info.LLChange,
	})
	entry.Info("EM iteration")

	if info.StopValueReached {
		entry.Info("Stop value of EM iterations exceeded. Exiting training...")
	}

	if info.MaxItersReached {
		entry.Info("Maximum numbers of EM iterations exceeded. Exiting training...")
	}

	return nil
}

func (lo *LoggingObserver) Finish(totalDuration time.Duration) error {
	lo.logger.WithField("elapsed", totalDuration).Debug("training finished")

	return nil
}

var _ model.Observer = (*LoggingObserver)(nil)
