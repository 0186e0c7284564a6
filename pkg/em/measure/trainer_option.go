package measure

import (
	"time"

	"github.com/askiada/go-emloh/pkg/em/model"
)

type trainerMeasure struct {
	Measure
}

func (tm *trainerMeasure) New() error {
	tm.AddMetric(model.StartStage.Name)
	tm.AddMetric(model.EndStage.Name)

	return nil
}

func (tm *trainerMeasure) PrepareStage(parentStage, stage *model.StageInfo) error {
	tm.AddMetric(stage.Name)

	return nil
}

func (tm *trainerMeasure) OnStageOutput(stage *model.StageInfo, iteration int, elapsed time.Duration) error {
	tm.AddMetric(stage.Name).AddDuration(elapsed)

	return nil
}

func (tm *trainerMeasure) OnIteration(info *model.IterationInfo) error {
	return nil
}

func (tm *trainerMeasure) Finish(totalDuration time.Duration) error {
	tm.AddMetric(model.EndStage.Name).SetTotalDuration(totalDuration)

	return nil
}

// TrainerMeasure returns an observer recording the duration of every stage into measure.
func TrainerMeasure(measure Measure) model.Observer {
	return &trainerMeasure{measure}
}
