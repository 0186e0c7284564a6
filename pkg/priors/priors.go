package priors

import (
	"github.com/pkg/errors"
)

// OmegaSection is the name of the section holding the copy number priors.
const OmegaSection = "omega"

// Priors holds the prior weights of a model.
type Priors struct {
	// AllelenumberMax is the highest tumor copy number.
	AllelenumberMax int
	// Omega holds one weight per tumor copy number, in the order of CopyNumberTumor.
	Omega []float64
}

// New creates priors from the weights of each copy number.
func New(omega []float64) *Priors {
	return &Priors{
		AllelenumberMax: len(omega) - 1,
		Omega:           omega,
	}
}

// OmegaFor returns the prior weight of the given tumor copy number.
func (p *Priors) OmegaFor(copyNumber int) (float64, error) {
	if copyNumber < 0 || copyNumber >= len(p.Omega) {
		return 0, errors.Wrapf(ErrCopyNumberOutOfRange, "copy number %d, max %d", copyNumber, p.AllelenumberMax)
	}

	return p.Omega[copyNumber], nil
}

// Clone returns a deep copy of the priors.
func (p *Priors) Clone() *Priors {
	omega := make([]float64, len(p.Omega))
	copy(omega, p.Omega)

	return &Priors{
		AllelenumberMax: p.AllelenumberMax,
		Omega:           omega,
	}
}
