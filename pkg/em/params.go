package em

import (
	"math"

	"github.com/pkg/errors"
)

// Params holds named numeric parameters, such as the initial values of a restart or the configuration computed while
// preprocessing the data.
type Params map[string]float64

// Get returns the value of a parameter.
func (p Params) Get(name string) (float64, error) {
	value, ok := p[name]
	if !ok {
		return 0, errors.Wrap(ErrMissingParameter, name)
	}

	return value, nil
}

// GetInt returns the value of a parameter holding an integer.
func (p Params) GetInt(name string) (int, error) {
	value, err := p.Get(name)
	if err != nil {
		return 0, err
	}

	if value != math.Trunc(value) || math.IsInf(value, 0) {
		return 0, errors.Wrapf(ErrNotInteger, "%s=%v", name, value)
	}

	return int(value), nil
}

// Clone returns a copy of the parameters. A nil receiver returns an empty set.
func (p Params) Clone() Params {
	res := make(Params, len(p))
	for name, value := range p {
		res[name] = value
	}

	return res
}
