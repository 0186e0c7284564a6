package model

type stageType string

const (
	BoundaryStageType     stageType = "boundary"
	ExpectationStageType  stageType = "expectation"
	MaximisationStageType stageType = "maximisation"
	LikelihoodStageType   stageType = "likelihood"
	ConvergenceStageType  stageType = "convergence"
)

// StageInfo describes one stage of the EM loop.
type StageInfo struct {
	Type stageType
	Name string
}

var (
	StartStage       = &StageInfo{Type: BoundaryStageType, Name: "start"}
	EStepStage       = &StageInfo{Type: ExpectationStageType, Name: "e-step"}
	MStepStage       = &StageInfo{Type: MaximisationStageType, Name: "m-step"}
	LikelihoodStage  = &StageInfo{Type: LikelihoodStageType, Name: "likelihood"}
	ConvergenceStage = &StageInfo{Type: ConvergenceStageType, Name: "convergence"}
	EndStage         = &StageInfo{Type: BoundaryStageType, Name: "end"}
)

// StageLinks lists the transitions of the EM loop as parent, child pairs.
// The convergence stage leads back to the e-step until the training stops.
func StageLinks() [][2]*StageInfo {
	return [][2]*StageInfo{
		{StartStage, EStepStage},
		{EStepStage, MStepStage},
		{MStepStage, LikelihoodStage},
		{LikelihoodStage, ConvergenceStage},
		{ConvergenceStage, EStepStage},
		{ConvergenceStage, EndStage},
	}
}
