package ipopt

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options holds the solver options in Ipopt's three categories. Names are
// the ones documented by Ipopt (max_iter, tol, linear_solver, ...). Setting
// the same name twice keeps the last value.
type Options struct {
	Integer map[string]int32   `yaml:"integer"`
	Numeric map[string]float64 `yaml:"numeric"`
	String  map[string]string  `yaml:"string"`
}

func newOptions() Options {
	return Options{
		Integer: map[string]int32{},
		Numeric: map[string]float64{},
		String:  map[string]string{},
	}
}

func (o Options) clone() Options {
	return Options{
		Integer: maps.Clone(o.Integer),
		Numeric: maps.Clone(o.Numeric),
		String:  maps.Clone(o.String),
	}
}

// merge copies every option of src into o, overwriting existing names.
func (o *Options) merge(src Options) {
	maps.Copy(o.Integer, src.Integer)
	maps.Copy(o.Numeric, src.Numeric)
	maps.Copy(o.String, src.String)
}

// validate checks that every name and string value can be passed as a C
// string.
func (o Options) validate() error {
	for _, name := range slices.Sorted(maps.Keys(o.Integer)) {
		if err := checkCString(name); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(o.Numeric)) {
		if err := checkCString(name); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(o.String)) {
		if err := checkCString(name); err != nil {
			return err
		}
		if err := checkCString(o.String[name]); err != nil {
			return fmt.Errorf("option %q: %w", name, err)
		}
	}
	return nil
}

func checkCString(s string) error {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return fmt.Errorf("%w: %q at byte %d", ErrInvalidOptionString, s, i)
	}
	return nil
}

// ParseOptions decodes a YAML document of the form
//
//	integer:
//	  max_iter: 500
//	numeric:
//	  tol: 1.0e-8
//	string:
//	  linear_solver: mumps
//
// Unknown top-level keys are rejected.
func ParseOptions(r io.Reader) (Options, error) {
	opts := newOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Options
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	opts.merge(doc)
	return opts, nil
}

// ReadOptionsFile parses the YAML options file at path.
func ReadOptionsFile(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer f.Close()
	opts, err := ParseOptions(f)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}
