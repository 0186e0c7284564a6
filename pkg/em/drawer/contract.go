package drawer

import (
	"time"

	"github.com/askiada/go-emloh/pkg/em/measure"
	"github.com/askiada/go-emloh/pkg/em/model"
)

// Drawer is an interface that defines the methods for drawing the EM loop.
type Drawer interface {
	// AddStage adds a stage to the drawer. Adding a stage twice is a no-op.
	AddStage(stage *model.StageInfo) error
	// AddLink adds a transition between parent and child stages.
	AddLink(parentStageName, childStageName string) error
	// SetLabel sets the caption of the graph.
	SetLabel(label string)
	// Draw creates a file with the graph.
	Draw() error
	// SetTotalTime sets the total time for the stage.
	SetTotalTime(stageName string, startTime time.Time) error
	// AddMeasure adds a measure to the drawer.
	AddMeasure(measure measure.Measure) error
}
