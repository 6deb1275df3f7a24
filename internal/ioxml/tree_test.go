package ioxml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtrials/vtdb/internal/ioxml"
	"github.com/vtrials/vtdb/pkg/param"
)

const sampleConfig = `<PhysiCell_settings>
  <overall>
    <max_time units="min">720</max_time>
  </overall>
  <cell_definitions>
    <cell_definition name="tumor">
      <phenotype>
        <motility>
          <speed units="micron/min">1.0</speed>
        </motility>
      </phenotype>
    </cell_definition>
    <cell_definition name="immune">
      <phenotype>
        <motility>
          <speed units="micron/min">4.0</speed>
        </motility>
      </phenotype>
    </cell_definition>
  </cell_definitions>
</PhysiCell_settings>
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))
	return path
}

func TestValue(t *testing.T) {
	tree, err := ioxml.Load(writeSample(t))
	require.NoError(t, err)

	v, err := tree.Value("overall/max_time")
	require.NoError(t, err)
	assert.Equal(t, "720", v)

	// Attribute selectors pick one sibling among many.
	v, err = tree.Value(
		"cell_definitions/cell_definition:name:immune/phenotype/motility/speed")
	require.NoError(t, err)
	assert.Equal(t, "4.0", v)
}

func TestSetValueAndSave(t *testing.T) {
	src := writeSample(t)
	tree, err := ioxml.Load(src)
	require.NoError(t, err)

	path := "cell_definitions/cell_definition:name:tumor/phenotype/motility/speed"
	require.NoError(t, tree.SetValue(path, "2.5"))

	dst := filepath.Join(t.TempDir(), "out.xml")
	require.NoError(t, tree.Save(dst))

	reread, err := ioxml.Load(dst)
	require.NoError(t, err)
	v, err := reread.Value(path)
	require.NoError(t, err)
	assert.Equal(t, "2.5", v)

	// The sibling with a different attribute value is untouched.
	v, err = reread.Value(
		"cell_definitions/cell_definition:name:immune/phenotype/motility/speed")
	require.NoError(t, err)
	assert.Equal(t, "4.0", v)
}

func TestApply(t *testing.T) {
	tree, err := ioxml.Load(writeSample(t))
	require.NoError(t, err)

	defs := []param.Def{
		{
			Kind: param.Config,
			Path: "overall/max_time",
			Type: param.TypeInt,
			Base: param.Int(720),
		},
		{
			Kind: param.Config,
			Path: "cell_definitions/cell_definition:name:tumor/phenotype/motility/speed",
			Type: param.TypeFloat,
			Base: param.Float(1.0),
		},
	}
	values := []param.Value{param.Int(1440), param.Float(0.25)}
	require.NoError(t, tree.Apply(defs, values))

	v, err := tree.Value("overall/max_time")
	require.NoError(t, err)
	assert.Equal(t, "1440", v)
}

func TestPathErrors(t *testing.T) {
	tree, err := ioxml.Load(writeSample(t))
	require.NoError(t, err)

	_, err = tree.Value("overall/no_such_tag")
	assert.Error(t, err)

	err = tree.SetValue(
		"cell_definitions/cell_definition:name:stromal/phenotype", "x")
	assert.Error(t, err, "unknown attribute selector fails, never creates")
}

func TestLoadErrors(t *testing.T) {
	_, err := ioxml.Load(filepath.Join(t.TempDir(), "absent.xml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte("  "), 0644))
	_, err = ioxml.Load(bad)
	assert.Error(t, err)
}
