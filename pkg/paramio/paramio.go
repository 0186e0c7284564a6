// Package paramio saves and loads the parameters of trained models.
//
// Array parameters are stored in numpy .npz archives so they can be inspected with the usual python tooling, scalar
// summaries in YAML.
package paramio

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
	"gopkg.in/yaml.v3"
)

const (
	NPZSuffix  = ".params.npz"
	YAMLSuffix = ".params.yaml"
	npySuffix  = ".npy"
)

var ErrEmptyName = errors.New("parameter name must be set")

// NPZFilename returns the archive name of the parameters saved under filenameBase.
func NPZFilename(filenameBase string) string {
	return filenameBase + NPZSuffix
}

// YAMLFilename returns the summary name of the parameters saved under filenameBase.
func YAMLFilename(filenameBase string) string {
	return filenameBase + YAMLSuffix
}

// WriteNPZ writes one array per parameter in a numpy archive. Arrays are written in name order.
func WriteNPZ(filename string, params map[string][]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		if name == "" {
			return ErrEmptyName
		}

		names = append(names, name)
	}

	sort.Strings(names)

	wrt, err := npz.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", filename)
	}

	for _, name := range names {
		err = wrt.Write(name+npySuffix, params[name])
		if err != nil {
			_ = wrt.Close()
			return errors.Wrapf(err, "unable to write %s to %s", name, filename)
		}
	}

	err = wrt.Close()
	if err != nil {
		return errors.Wrapf(err, "unable to close %s", filename)
	}

	return nil
}

// ReadNPZ reads every array of a numpy archive.
func ReadNPZ(filename string) (map[string][]float64, error) {
	rdr, err := npz.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", filename)
	}
	defer rdr.Close()

	params := make(map[string][]float64)

	for _, key := range rdr.Keys() {
		var values []float64

		err = rdr.Read(key, &values)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read %s from %s", key, filename)
		}

		params[strings.TrimSuffix(key, npySuffix)] = values
	}

	return params, nil
}

// WriteYAML writes a summary of the parameters.
func WriteYAML(filename string, summary any) error {
	content, err := yaml.Marshal(summary)
	if err != nil {
		return errors.Wrap(err, "unable to encode parameters")
	}

	err = os.WriteFile(filename, content, 0o600)
	if err != nil {
		return errors.Wrapf(err, "unable to write %s", filename)
	}

	return nil
}

// ReadYAML reads a summary written by WriteYAML into summary.
func ReadYAML(filename string, summary any) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", filename)
	}

	err = yaml.Unmarshal(content, summary)
	if err != nil {
		return errors.Wrapf(err, "unable to decode %s", filename)
	}

	return nil
}
