// Package request defines the sweep-request file: the user's declaration
// of which parameters to vary, over which ranges, with which design
// algorithm. Requests load from YAML and compile into design dimensions.
package request

import (
	"fmt"
	"os"

	"github.com/vtrials/vtdb/pkg/design"
	"github.com/vtrials/vtdb/pkg/param"
	"gopkg.in/yaml.v3"
)

// Request is one parsed sweep-request file.
type Request struct {
	// Name labels the sweep in logs and reports.
	Name string `yaml:"name"`

	// Design selects the generator: grid, lhs, sobol, rbd, moat,
	// sobol_sample.
	Design string `yaml:"design"`

	// Points is n for lhs/sobol/rbd/sobol_sample and the number of
	// trajectories for moat. Ignored by grid.
	Points int `yaml:"points"`

	// Replicates is the replicate-group size per design point.
	Replicates int `yaml:"replicates"`

	// Reuse requests shortfall-only creation against existing groups
	// and refinement-friendly point layouts (rbd half period).
	Reuse bool `yaml:"reuse"`

	// Jitter, Orthogonal tune lhs; Skip tunes sobol.
	Jitter     bool `yaml:"jitter"`
	Orthogonal bool `yaml:"orthogonal"`
	Skip       int  `yaml:"skip"`

	// Seed makes randomized designs reproducible; 0 means derive one.
	Seed uint64 `yaml:"seed"`

	// Inputs maps location kinds to folder names.
	Inputs map[string]string `yaml:"inputs"`

	// Parameters declares the varied parameters.
	Parameters []Parameter `yaml:"parameters"`
}

// Parameter is one varied parameter declaration.
type Parameter struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
	Type string `yaml:"type"`

	// Base is the parameter's default value, the one variation_id 0
	// stands for.
	Base any `yaml:"base"`

	// Values declares a discrete variation.
	Values []any `yaml:"values"`

	// Distribution declares a continuous variation.
	Distribution *DistSpec `yaml:"distribution"`

	// Flip substitutes the CDF argument p with 1-p.
	Flip bool `yaml:"flip"`

	// Covary groups parameters sharing a tag into one design dimension
	// advanced together instead of crossed.
	Covary string `yaml:"covary"`
}

// DistSpec is a distribution declaration.
type DistSpec struct {
	Kind string  `yaml:"kind"` // uniform, log_uniform, normal
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Mean float64 `yaml:"mean"`
	SD   float64 `yaml:"sd"`
	Lo   float64 `yaml:"lo"`
	Hi   float64 `yaml:"hi"`
}

// Load reads and validates a sweep-request file.
func Load(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read sweep request: %w", err)
	}

	var res Request
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("cannot parse sweep request: %w", err)
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &res, nil
}

// Validate checks the request's internal consistency.
func (r *Request) Validate() error {
	switch r.Design {
	case "grid", "lhs", "sobol", "rbd", "moat", "sobol_sample":
	default:
		return fmt.Errorf("unknown design %q", r.Design)
	}
	if r.Design != "grid" && r.Points < 1 {
		return fmt.Errorf("design %q needs points >= 1", r.Design)
	}
	if r.Replicates < 1 {
		r.Replicates = 1
	}
	if len(r.Parameters) == 0 {
		return fmt.Errorf("sweep request declares no parameters")
	}
	for _, k := range r.Inputs {
		if k == "" {
			return fmt.Errorf("empty input folder name")
		}
	}
	for i := range r.Parameters {
		if _, err := r.Parameters[i].def(); err != nil {
			return err
		}
	}
	return nil
}

// Defs compiles the declared parameters into definitions, in file order.
func (r *Request) Defs() ([]param.Def, error) {
	res := make([]param.Def, len(r.Parameters))
	for i := range r.Parameters {
		d, err := r.Parameters[i].def()
		if err != nil {
			return nil, err
		}
		res[i] = d
	}
	return res, nil
}

// Dimensions compiles the declared parameters into design dimensions,
// folding covary groups into single dimensions.
func (r *Request) Dimensions() ([]design.Dimension, error) {
	groups := make(map[string]int)
	var dims []design.Dimension

	for i := range r.Parameters {
		p := &r.Parameters[i]
		el, err := p.elementary()
		if err != nil {
			return nil, err
		}

		if p.Covary == "" {
			dims = append(dims, design.Dim(el))
			continue
		}
		if gi, ok := groups[p.Covary]; ok {
			dims[gi].Elements = append(dims[gi].Elements, el)
			continue
		}
		groups[p.Covary] = len(dims)
		dims = append(dims, design.Dim(el))
	}

	for _, d := range dims {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return dims, nil
}

func (p *Parameter) def() (param.Def, error) {
	kind := param.LocationKind(p.Kind)
	vt := param.ValueType(p.Type)
	if !vt.Valid() {
		return param.Def{}, fmt.Errorf("parameter %s: unknown type %q", p.Path, p.Type)
	}
	base, err := toValue(vt, p.Base)
	if err != nil {
		return param.Def{}, fmt.Errorf("parameter %s: base: %w", p.Path, err)
	}
	d := param.Def{Kind: kind, Path: p.Path, Type: vt, Base: base}
	if err := d.Validate(); err != nil {
		return param.Def{}, err
	}
	if len(p.Values) == 0 && p.Distribution == nil {
		return param.Def{}, fmt.Errorf(
			"parameter %s declares neither values nor a distribution", p.Path)
	}
	if len(p.Values) > 0 && p.Distribution != nil {
		return param.Def{}, fmt.Errorf(
			"parameter %s declares both values and a distribution", p.Path)
	}
	return d, nil
}

func (p *Parameter) elementary() (design.Elementary, error) {
	d, err := p.def()
	if err != nil {
		return nil, err
	}

	if len(p.Values) > 0 {
		values := make([]param.Value, len(p.Values))
		for i, raw := range p.Values {
			v, err := toValue(d.Type, raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: value %d: %w", p.Path, i, err)
			}
			values[i] = v
		}
		return design.Discrete{D: d, Values: values}, nil
	}

	dist, err := p.Distribution.distribution()
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", p.Path, err)
	}
	return design.Distributed{D: d, Dist: dist, Flip: p.Flip}, nil
}

func (ds *DistSpec) distribution() (design.Distribution, error) {
	switch ds.Kind {
	case "uniform":
		if ds.Max <= ds.Min {
			return nil, fmt.Errorf("uniform needs min < max")
		}
		return design.Uniform{Min: ds.Min, Max: ds.Max}, nil
	case "log_uniform":
		if ds.Min <= 0 || ds.Max <= ds.Min {
			return nil, fmt.Errorf("log_uniform needs 0 < min < max")
		}
		return design.LogUniform{Min: ds.Min, Max: ds.Max}, nil
	case "normal":
		if ds.SD <= 0 {
			return nil, fmt.Errorf("normal needs sd > 0")
		}
		return design.Normal{Mean: ds.Mean, SD: ds.SD, Lo: ds.Lo, Hi: ds.Hi}, nil
	default:
		return nil, fmt.Errorf("unknown distribution %q", ds.Kind)
	}
}

// toValue converts a YAML scalar into a typed parameter value.
func toValue(t param.ValueType, raw any) (param.Value, error) {
	if raw == nil {
		return param.Value{}, fmt.Errorf("missing value")
	}
	switch t {
	case param.TypeInt:
		switch x := raw.(type) {
		case int:
			return param.Int(int64(x)), nil
		case int64:
			return param.Int(x), nil
		case float64:
			return param.Int(int64(x)), nil
		}
	case param.TypeFloat:
		switch x := raw.(type) {
		case float64:
			return param.Float(x), nil
		case int:
			return param.Float(float64(x)), nil
		}
	case param.TypeBool:
		if x, ok := raw.(bool); ok {
			return param.Bool(x), nil
		}
	case param.TypeString:
		if x, ok := raw.(string); ok {
			return param.String(x), nil
		}
	}
	return param.Value{}, fmt.Errorf("cannot use %v (%T) as %s", raw, raw, t)
}
