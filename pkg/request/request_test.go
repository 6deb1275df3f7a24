package request_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtrials/vtdb/pkg/design"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/request"
)

const sweepYAML = `
name: immune-sweep
design: lhs
points: 16
replicates: 3
jitter: true
seed: 42
inputs:
  config: base
  custom_code: stub
parameters:
  - kind: config
    path: overall/max_time
    type: int
    base: 720
    values: [360, 720, 1440]
  - kind: rulesets
    path: cancer/attack_rate
    type: float
    base: 0.1
    distribution:
      kind: uniform
      min: 0.0
      max: 1.0
`

func writeRequest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestLoad(t *testing.T) {
	req, err := request.Load(writeRequest(t, sweepYAML))
	require.NoError(t, err)

	assert.Equal(t, "immune-sweep", req.Name)
	assert.Equal(t, "lhs", req.Design)
	assert.Equal(t, 16, req.Points)
	assert.Equal(t, 3, req.Replicates)
	assert.True(t, req.Jitter)
	assert.Equal(t, uint64(42), req.Seed)
	assert.Equal(t, "base", req.Inputs["config"])
	require.Len(t, req.Parameters, 2)

	t.Run("missing file", func(t *testing.T) {
		_, err := request.Load("/no/such/sweep.yaml")
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := request.Load(writeRequest(t, "parameters: {nope"))
		assert.Error(t, err)
	})
}

func TestDefs(t *testing.T) {
	req, err := request.Load(writeRequest(t, sweepYAML))
	require.NoError(t, err)

	defs, err := req.Defs()
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, param.Config, defs[0].Kind)
	assert.Equal(t, "overall/max_time", defs[0].Path)
	assert.True(t, param.Int(720).Equal(defs[0].Base))

	assert.Equal(t, param.RulesetsCollection, defs[1].Kind)
	assert.Equal(t, param.TypeFloat, defs[1].Type)
	assert.True(t, param.Float(0.1).Equal(defs[1].Base))
}

func TestDimensions(t *testing.T) {
	req, err := request.Load(writeRequest(t, sweepYAML))
	require.NoError(t, err)

	dims, err := req.Dimensions()
	require.NoError(t, err)
	require.Len(t, dims, 2)

	assert.Equal(t, 3, dims[0].Cardinality())
	assert.Equal(t, 0, dims[1].Cardinality(), "continuous dimension")

	t.Run("feeds a grid design", func(t *testing.T) {
		m, err := design.Grid(dims[:1])
		require.NoError(t, err)
		assert.Len(t, m.Points, 3)
	})
}

func TestCovaryFolding(t *testing.T) {
	req := &request.Request{
		Name:   "paired",
		Design: "lhs",
		Points: 8,
		Parameters: []request.Parameter{
			{
				Kind: "config", Path: "a", Type: "float", Base: 0.0,
				Distribution: &request.DistSpec{Kind: "uniform", Min: 0, Max: 1},
				Covary:       "pair",
			},
			{
				Kind: "config", Path: "b", Type: "float", Base: 0.0,
				Distribution: &request.DistSpec{Kind: "uniform", Min: 0, Max: 1},
				Flip:         true,
				Covary:       "pair",
			},
			{
				Kind: "config", Path: "c", Type: "float", Base: 0.0,
				Distribution: &request.DistSpec{Kind: "uniform", Min: 0, Max: 1},
			},
		},
	}
	require.NoError(t, req.Validate())

	dims, err := req.Dimensions()
	require.NoError(t, err)
	require.Len(t, dims, 2, "covary group folds into one dimension")
	assert.Len(t, dims[0].Elements, 2)
	assert.Len(t, dims[1].Elements, 1)

	t.Run("flipped element moves oppositely", func(t *testing.T) {
		row := dims[0].PointFromQuantile(0.25)
		assert.InDelta(t, 0.25, row[0].Float, 1e-12)
		assert.InDelta(t, 0.75, row[1].Float, 1e-12)
	})

	t.Run("mismatched discrete lengths are rejected", func(t *testing.T) {
		bad := &request.Request{
			Name:   "bad-pair",
			Design: "grid",
			Parameters: []request.Parameter{
				{
					Kind: "config", Path: "a", Type: "int", Base: 0,
					Values: []any{1, 2}, Covary: "pair",
				},
				{
					Kind: "config", Path: "b", Type: "int", Base: 0,
					Values: []any{1, 2, 3}, Covary: "pair",
				},
			},
		}
		require.NoError(t, bad.Validate())
		_, err := bad.Dimensions()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *request.Request {
		return &request.Request{
			Name:   "s",
			Design: "sobol",
			Points: 8,
			Parameters: []request.Parameter{{
				Kind: "config", Path: "a", Type: "int", Base: 1,
				Values: []any{1, 2},
			}},
		}
	}

	t.Run("valid request passes", func(t *testing.T) {
		req := valid()
		require.NoError(t, req.Validate())
		assert.Equal(t, 1, req.Replicates, "replicates default to 1")
	})

	tests := []struct {
		msg    string
		mutate func(*request.Request)
	}{
		{"unknown design", func(r *request.Request) { r.Design = "fancy" }},
		{"points required", func(r *request.Request) { r.Points = 0 }},
		{"no parameters", func(r *request.Request) { r.Parameters = nil }},
		{"empty input folder", func(r *request.Request) {
			r.Inputs = map[string]string{"config": ""}
		}},
		{"unknown parameter type", func(r *request.Request) {
			r.Parameters[0].Type = "blob"
		}},
		{"unknown kind", func(r *request.Request) {
			r.Parameters[0].Kind = "plots"
		}},
		{"missing base", func(r *request.Request) {
			r.Parameters[0].Base = nil
		}},
		{"neither values nor distribution", func(r *request.Request) {
			r.Parameters[0].Values = nil
		}},
		{"both values and distribution", func(r *request.Request) {
			r.Parameters[0].Distribution = &request.DistSpec{
				Kind: "uniform", Min: 0, Max: 1,
			}
		}},
	}

	for _, v := range tests {
		req := valid()
		v.mutate(req)
		assert.Error(t, req.Validate(), v.msg)
	}

	t.Run("grid ignores points", func(t *testing.T) {
		req := valid()
		req.Design = "grid"
		req.Points = 0
		assert.NoError(t, req.Validate())
	})
}

func TestDistSpec(t *testing.T) {
	tests := []struct {
		msg  string
		spec request.DistSpec
	}{
		{"uniform min >= max", request.DistSpec{Kind: "uniform", Min: 1, Max: 1}},
		{"log_uniform min <= 0", request.DistSpec{Kind: "log_uniform", Min: 0, Max: 1}},
		{"normal sd <= 0", request.DistSpec{Kind: "normal", Mean: 1}},
		{"unknown kind", request.DistSpec{Kind: "beta"}},
	}

	for _, v := range tests {
		req := &request.Request{
			Name:   "d",
			Design: "lhs",
			Points: 4,
			Parameters: []request.Parameter{{
				Kind: "config", Path: "a", Type: "float", Base: 0.5,
				Distribution: &v.spec,
			}},
		}
		require.NoError(t, req.Validate(), v.msg)
		_, err := req.Dimensions()
		assert.Error(t, err, v.msg)
	}
}
