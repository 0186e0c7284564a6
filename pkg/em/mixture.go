package em

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormalizeLogProbs turns unnormalised log-probabilities into probabilities, in place, and returns the log of the
// normalising constant. When every value is -Inf the probabilities are uniform.
func NormalizeLogProbs(logProbs []float64) float64 {
	if len(logProbs) == 0 {
		return math.Inf(-1)
	}

	logNorm := floats.LogSumExp(logProbs)
	if math.IsInf(logNorm, -1) {
		for i := range logProbs {
			logProbs[i] = 1 / float64(len(logProbs))
		}

		return logNorm
	}

	for i, logProb := range logProbs {
		logProbs[i] = math.Exp(logProb - logNorm)
	}

	return logNorm
}
