package model

// StopReason tells why the EM loop stopped.
type StopReason string

const (
	NotStopped    StopReason = ""
	StopValue     StopReason = "stop value"
	MaxIterations StopReason = "max iterations"
)

// IterationInfo is the running information reported after each EM iteration.
type IterationInfo struct {
	RestartIndex     int
	Iteration        int
	NewLogLikelihood float64
	OldLogLikelihood float64
	// LLChange is the relative change of the log-likelihood. It is +Inf on the first iteration.
	LLChange         float64
	StopValueReached bool
	MaxItersReached  bool
}

// Converged reports whether the training stops after this iteration.
func (i *IterationInfo) Converged() bool {
	return i.StopValueReached || i.MaxItersReached
}

// StopReason returns why the training stops after this iteration. The stop value wins when both conditions hold.
func (i *IterationInfo) StopReason() StopReason {
	switch {
	case i.StopValueReached:
		return StopValue
	case i.MaxItersReached:
		return MaxIterations
	default:
		return NotStopped
	}
}
