package drawer

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-emloh/pkg/em/measure"
	"github.com/askiada/go-emloh/pkg/em/model"
)

type trainerDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
}

func (td *trainerDrawer) New() error {
	td.startTime = time.Now()

	err := td.AddStage(model.StartStage)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}

	err = td.AddStage(model.EndStage)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (td *trainerDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	err := td.AddStage(stage)
	if err != nil {
		return err
	}

	return td.AddLink(parentStage.Name, stage.Name)
}

func (td *trainerDrawer) OnStageOutput(stage *model.StageInfo, iteration int, elapsed time.Duration) error {
	return nil
}

func (td *trainerDrawer) OnIteration(info *model.IterationInfo) error {
	if !info.Converged() {
		return nil
	}

	td.SetLabel(fmt.Sprintf("restart %d: log-likelihood %.6f after %d iterations (%s)",
		info.RestartIndex, info.NewLogLikelihood, info.Iteration+1, info.StopReason()))

	return nil
}

func (td *trainerDrawer) Finish(totalDuration time.Duration) error {
	if td.m != nil {
		err := td.SetTotalTime(model.EndStage.Name, td.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}

		err = td.AddMeasure(td.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := td.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw EM loop")
	}

	return nil
}

// TrainerDrawer returns an observer drawing the EM loop when the training finishes. When msr is set, the stages are
// annotated with their durations. msr must be filled by an observer registered before this one.
func TrainerDrawer(drawer Drawer, msr measure.Measure) model.Observer {
	return &trainerDrawer{Drawer: drawer, m: msr}
}
