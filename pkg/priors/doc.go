// Package priors reads the prior weights of the EM models.
//
// Priors are stored in an INI file with one `omega` section. Each key of the section is a tumor copy number and each
// value the prior weight of that copy number:
//
//	[omega]
//	0 = 1
//	1 = 1
//	2 = 20
//
// The same content can be written as YAML, with an `omega` mapping from copy number to weight.
package priors
