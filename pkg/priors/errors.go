package priors

import "github.com/pkg/errors"

var (
	ErrSectionNotFound        = errors.New("section not found")
	ErrKeyNotFound            = errors.New("key not found")
	ErrInvalidAllelenumberMax = errors.New("allele number max must be greater or equal to 0")
	ErrCopyNumberOutOfRange   = errors.New("copy number out of range")
)
