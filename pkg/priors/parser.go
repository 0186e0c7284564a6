package priors

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// source gives access to the float values of the omega section, whatever the file format.
type source interface {
	getFloat(key string) (float64, error)
}

// Parser reads priors files.
type Parser struct {
	priors *Priors
}

// NewParser creates a new priors parser.
func NewParser() *Parser {
	return &Parser{}
}

// Priors returns the last priors read by the parser.
func (p *Parser) Priors() *Priors {
	return p.priors
}

// ReadPriors reads the omega weight of every tumor copy number up to allelenumberMax.
// Files ending with .yaml or .yml are read as YAML, everything else as INI.
func (p *Parser) ReadPriors(filename string, allelenumberMax int) (*Priors, error) {
	if allelenumberMax < 0 {
		return nil, ErrInvalidAllelenumberMax
	}

	src, err := openSource(filename)
	if err != nil {
		return nil, err
	}

	copyNumbers := CopyNumberTumor(allelenumberMax)
	omega := make([]float64, CopyNumberTumorNum(allelenumberMax))

	for i, copyNumber := range copyNumbers {
		omega[i], err = src.getFloat(strconv.Itoa(copyNumber))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read %s prior from %s", OmegaSection, filename)
		}
	}

	p.priors = &Priors{
		AllelenumberMax: allelenumberMax,
		Omega:           omega,
	}

	return p.priors, nil
}

func openSource(filename string) (source, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return openYAMLSource(filename)
	default:
		return openINISource(filename)
	}
}

// iniSource looks keys up in the omega section, then in the DEFAULT section.
type iniSource struct {
	section  *ini.Section
	defaults *ini.Section
}

func openINISource(filename string) (*iniSource, error) {
	cfg, err := ini.Load(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load priors file %s", filename)
	}

	section, err := cfg.GetSection(OmegaSection)
	if err != nil {
		return nil, errors.Wrapf(ErrSectionNotFound, "%s in %s", OmegaSection, filename)
	}

	return &iniSource{section: section, defaults: cfg.Section(ini.DefaultSection)}, nil
}

func (s *iniSource) getFloat(key string) (float64, error) {
	section := s.section
	if !section.HasKey(key) {
		if !s.defaults.HasKey(key) {
			return 0, errors.Wrapf(ErrKeyNotFound, "%s.%s", OmegaSection, key)
		}

		section = s.defaults
	}

	value, err := section.Key(key).Float64()
	if err != nil {
		return 0, errors.Wrapf(err, "unable to parse %s.%s", OmegaSection, key)
	}

	return value, nil
}

type yamlSource struct {
	omega map[string]float64
}

func openYAMLSource(filename string) (*yamlSource, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read priors file %s", filename)
	}

	var doc map[string]map[string]float64

	err = yaml.Unmarshal(content, &doc)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode priors file %s", filename)
	}

	omega, ok := doc[OmegaSection]
	if !ok {
		return nil, errors.Wrapf(ErrSectionNotFound, "%s in %s", OmegaSection, filename)
	}

	return &yamlSource{omega: omega}, nil
}

func (s *yamlSource) getFloat(key string) (float64, error) {
	value, ok := s.omega[key]
	if !ok {
		return 0, errors.Wrapf(ErrKeyNotFound, "%s.%s", OmegaSection, key)
	}

	return value, nil
}
