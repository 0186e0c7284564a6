// Package progress displays the progress of an EM training in a terminal.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/askiada/go-emloh/pkg/em/model"
)

// Bar is an observer advancing a progress bar at every EM iteration. The bar is sized for the maximum number of
// iterations and completes early when the stop value is reached.
type Bar struct {
	writer       io.Writer
	maxIters     int
	restartIndex int
	bar          *progressbar.ProgressBar
	current      int
}

// New creates a progress observer for a training of at most maxIters+1 iterations.
func New(writer io.Writer, restartIndex, maxIters int) *Bar {
	return &Bar{
		writer:       writer,
		maxIters:     maxIters,
		restartIndex: restartIndex,
	}
}

func (b *Bar) New() error {
	b.bar = progressbar.NewOptions(b.maxIters+1,
		progressbar.OptionSetWriter(b.writer),
		progressbar.OptionSetDescription(fmt.Sprintf("restart %d", b.restartIndex)),
		progressbar.OptionShowCount(),
	)

	return nil
}

func (b *Bar) PrepareStage(parentStage, stage *model.StageInfo) error {
	return nil
}

func (b *Bar) OnStageOutput(stage *model.StageInfo, iteration int, elapsed time.Duration) error {
	return nil
}

func (b *Bar) OnIteration(info *model.IterationInfo) error {
	b.bar.Describe(fmt.Sprintf("restart %d ll=%.4f", b.restartIndex, info.NewLogLikelihood))

	err := b.bar.Add(1)
	if err != nil {
		return errors.Wrap(err, "unable to advance progress bar")
	}

	b.current++

	return nil
}

func (b *Bar) Finish(totalDuration time.Duration) error {
	err := b.bar.Finish()
	if err != nil {
		return errors.Wrap(err, "unable to finish progress bar")
	}

	return nil
}

// Current returns the number of iterations displayed so far.
func (b *Bar) Current() int {
	return b.current
}

var _ model.Observer = (*Bar)(nil)
