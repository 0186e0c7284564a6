package model

import "time"

// Observer defines the interface for trainer observers.
type Observer interface {
	// New initialises the observer.
	New() error
	// PrepareStage runs once per stage, before the training starts.
	PrepareStage(parentStage, stage *StageInfo) error
	// OnStageOutput runs everytime a stage completes.
	OnStageOutput(stage *StageInfo, iteration int, elapsed time.Duration) error
	// OnIteration runs after the convergence check of every iteration.
	OnIteration(info *IterationInfo) error
	// Finish runs after the training is finished.
	Finish(totalDuration time.Duration) error
}
