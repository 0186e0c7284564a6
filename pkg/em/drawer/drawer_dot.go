package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-emloh/pkg/em/measure"
	"github.com/askiada/go-emloh/pkg/em/model"
)

// DOTDrawer is a drawer that creates a DOT file with the graph of the EM loop.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	dotFileName string
	label       string
}

// NewDOTDrawer creates a new DOT drawer.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	return &DOTDrawer{
		dotFileName: dotFileName,
		graph:       graph.New(graph.StringHash, graph.Directed()),
	}
}

var stageShapes = map[string]string{
	string(model.BoundaryStageType):    "circle",
	string(model.ConvergenceStageType): "diamond",
}

// AddStage adds a stage to the graph.
func (d *DOTDrawer) AddStage(stage *model.StageInfo) error {
	shape, ok := stageShapes[string(stage.Type)]
	if !ok {
		shape = "box"
	}

	err := d.graph.AddVertex(stage.Name, graph.VertexAttribute("shape", shape))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and child stages.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// SetLabel sets the caption of the graph.
func (d *DOTDrawer) SetLabel(label string) {
	d.label = label
}

// Draw creates a DOT file with the graph of the EM loop.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	attributes := map[string]string{}
	if d.label != "" {
		attributes["label"] = d.label
	}

	err = writeDOT(d.graph, file, attributes)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.dotFileName)
	}

	return nil
}

// SetTotalTime sets the total time for the stage.
func (d *DOTDrawer) SetTotalTime(stageName string, startTime time.Time) error {
	_, properties, err := d.graph.VertexWithProperties(stageName)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stageName)
	}

	properties.Attributes["xlabel"] = measure.Round(time.Since(startTime)).String()

	return nil
}

const maxRGB = 240

// AddMeasure colours the transitions leading to every stage, from blue for the fastest stage to red for the slowest.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	allStageElapsed := make(map[time.Duration]string)
	sortedAllStageElapsed := []time.Duration{}

	for _, stage := range msr.AllMetrics() {
		elapsed := stage.AVGDuration()
		if elapsed == 0 {
			continue
		}

		if _, ok := allStageElapsed[elapsed]; ok {
			continue
		}

		allStageElapsed[elapsed] = ""

		sortedAllStageElapsed = append(sortedAllStageElapsed, elapsed)
	}

	if len(sortedAllStageElapsed) == 0 {
		return nil
	}

	sort.Slice(sortedAllStageElapsed, func(i, j int) bool {
		return sortedAllStageElapsed[i] > sortedAllStageElapsed[j]
	})

	maxValue := sortedAllStageElapsed[0]
	minValue := sortedAllStageElapsed[len(sortedAllStageElapsed)-1]

	for curr := range allStageElapsed {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(curr-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := maxRGB - maxRGB*fraction

		stageColor, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		allStageElapsed[curr] = stageColor.ToHEX().String()
	}

	err := d.updateMetrics(msr, allStageElapsed)
	if err != nil {
		return errors.Wrap(err, "unable to update metrics")
	}

	return nil
}

func (d *DOTDrawer) updateMetrics(msr measure.Measure, allStageElapsed map[time.Duration]string) error {
	predecessors, err := d.graph.PredecessorMap()
	if err != nil {
		return errors.Wrap(err, "unable to get predecessor map")
	}

	for name, stage := range msr.AllMetrics() {
		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			return errors.Wrapf(err, "unable to get %s vertex properties", name)
		}

		stageAvg := stage.AVGDuration()
		if stageAvg != 0 {
			properties.Attributes["xlabel"] = fmt.Sprintf("%s x%d", stageAvg, stage.Count())
		}

		if stage.GetTotalDuration() > 0 {
			properties.Attributes["xlabel"] = "total: " + measure.Round(stage.GetTotalDuration()).String()
		}

		if stageAvg == 0 {
			continue
		}

		for parentName := range predecessors[name] {
			err := d.graph.UpdateEdge(parentName, name,
				graph.EdgeAttribute("label", stageAvg.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", allStageElapsed[stageAvg]), //nolint
			)
			if err != nil {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

//nolint:lll //this is a template
var dotTemplate = template.Must(template.New("em-loop").Parse(`strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`))

// dotGraph is the data rendered by dotTemplate.
type dotGraph struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []dotStatement
}

// dotStatement is either a vertex, when Target is empty, or an edge.
type dotStatement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func writeDOT(gra graph.Graph[string, string], wrt io.Writer, attributes map[string]string) error {
	desc, err := buildDOTGraph(gra, attributes)
	if err != nil {
		return errors.Wrap(err, "unable to describe graph")
	}

	err = dotTemplate.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

// buildDOTGraph turns the vertices and edges of gra into statements. An xlabel vertex attribute is rendered as a
// second line of an HTML label.
func buildDOTGraph(gra graph.Graph[string, string], attributes map[string]string) (*dotGraph, error) {
	desc := &dotGraph{
		GraphType:    "graph",
		Attributes:   attributes,
		EdgeOperator: "--",
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get adjacency map")
	}

	for vertex, adjacencies := range adjacencyMap {
		_, properties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to get %s vertex properties", vertex)
		}

		vertexStmt := dotStatement{
			Source:           vertex,
			SourceWeight:     properties.Weight,
			SourceAttributes: make(map[string]string, len(properties.Attributes)),
			HTMLAttributes:   make(map[string]string),
		}

		for k, v := range properties.Attributes {
			if k == "xlabel" {
				vertexStmt.HTMLAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, v)
				continue
			}

			vertexStmt.SourceAttributes[k] = v
		}

		desc.Statements = append(desc.Statements, vertexStmt)

		for target, edge := range adjacencies {
			desc.Statements = append(desc.Statements, dotStatement{
				Source:         vertex,
				Target:         target,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

var _ Drawer = (*DOTDrawer)(nil)
