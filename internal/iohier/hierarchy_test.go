package iohier_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtrials/vtdb/internal/iohier"
	"github.com/vtrials/vtdb/internal/iotesting"
	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

func setupHier(t *testing.T) (context.Context, string, vtdb.Hierarchy) {
	t.Helper()
	ctx := context.Background()
	dataDir := iotesting.SetupDataDir(t)
	op := iotesting.SetupDB(t, dataDir)
	return ctx, dataDir, iohier.NewHierarchy(op, dataDir)
}

func testIdentity() (param.LocationSet, param.Identity) {
	locs := param.LocationSet{
		param.Config:     1,
		param.CustomCode: 2,
	}
	id := param.Identity{param.Config: 3}
	return locs, id
}

func TestMakeSimulationIdempotent(t *testing.T) {
	ctx, _, h := setupHier(t)
	locs, id := testIdentity()

	sim1, created, err := h.MakeSimulation(ctx, locs, id)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, vtdb.NotStarted, sim1.Status)

	sim2, created, err := h.MakeSimulation(ctx, locs, id)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sim1.ID, sim2.ID,
		"same identity resolves to the same simulation")

	// A different variation id is a different simulation.
	sim3, created, err := h.MakeSimulation(ctx, locs,
		param.Identity{param.Config: 4})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, sim1.ID, sim3.ID)
}

func TestMakeMonadShortfall(t *testing.T) {
	ctx, _, h := setupHier(t)
	locs, id := testIdentity()

	m1, added, err := h.MakeMonad(ctx, locs, id, 3, true)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Len(t, m1.Members, 3)

	// Asking for 5 with reuse creates only the 2 missing replicates.
	m2, added, err := h.MakeMonad(ctx, locs, id, 5, true)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, m2.ID)
	assert.Equal(t, 2, added)
	assert.Len(t, m2.Members, 5)
	assert.Subset(t, m2.Members, m1.Members,
		"existing members are never discarded")

	// Asking for fewer than exist creates nothing.
	m3, added, err := h.MakeMonad(ctx, locs, id, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Len(t, m3.Members, 5)
}

func TestMakeMonadWithoutReuse(t *testing.T) {
	ctx, _, h := setupHier(t)
	locs, id := testIdentity()

	m1, _, err := h.MakeMonad(ctx, locs, id, 2, true)
	require.NoError(t, err)

	// Without reuse the group gains n fresh replicates.
	m2, added, err := h.MakeMonad(ctx, locs, id, 2, false)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, m2.ID)
	assert.Equal(t, 2, added)
	assert.Len(t, m2.Members, 4)
}

func TestMakeSamplingPreservesOrder(t *testing.T) {
	ctx, _, h := setupHier(t)
	locs, _ := testIdentity()

	ids := []param.Identity{
		{param.Config: 1},
		{param.Config: 2},
		{param.Config: 3},
	}
	s, err := h.MakeSampling(ctx, locs, ids, "grid", "{}", 2, true)
	require.NoError(t, err)
	assert.Equal(t, "grid", s.Method)
	require.Len(t, s.Monads, 3)

	// One monad per point, each with the requested replicates.
	for i, monadID := range s.Monads {
		m, added, err := h.MakeMonad(ctx, locs, ids[i], 2, true)
		require.NoError(t, err)
		assert.Equal(t, monadID, m.ID, "design order preserved")
		assert.Equal(t, 0, added, "sampling already created replicates")
	}

	// Repeating the same points reuses every monad.
	s2, err := h.MakeSampling(ctx, locs, ids, "grid", "{}", 2, true)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, s2.ID, "samplings are distinct records")
	assert.Equal(t, s.Monads, s2.Monads)
}

func TestGetSamplingAndGroups(t *testing.T) {
	ctx, _, h := setupHier(t)
	locs, _ := testIdentity()

	ids := []param.Identity{
		{param.Config: 1},
		{param.Config: 2},
	}
	s, err := h.MakeSampling(ctx, locs, ids, "moat", `{"r":1}`, 2, true)
	require.NoError(t, err)

	got, err := h.GetSampling(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "moat", got.Method)
	assert.Equal(t, `{"r":1}`, got.DesignMeta)
	assert.Equal(t, s.Monads, got.Monads)

	groups, err := h.SamplingGroups(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for i, group := range groups {
		m, _, err := h.MakeMonad(ctx, locs, ids[i], 2, true)
		require.NoError(t, err)
		assert.Equal(t, m.Members, group, "design order preserved")
	}

	_, err = h.GetSampling(ctx, 9999)
	assert.Error(t, err)
}

func TestMakeTrial(t *testing.T) {
	ctx, _, h := setupHier(t)
	locs, _ := testIdentity()

	s1, err := h.MakeSampling(ctx, locs,
		[]param.Identity{{param.Config: 1}}, "grid", "{}", 1, true)
	require.NoError(t, err)
	s2, err := h.MakeSampling(ctx, locs,
		[]param.Identity{{param.Config: 2}}, "lhs", "{}", 1, true)
	require.NoError(t, err)

	tr, err := h.MakeTrial(ctx, []int64{s1.ID, s2.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{s1.ID, s2.ID}, tr.Samplings)
}

func TestGetAndDeleteSimulation(t *testing.T) {
	ctx, dataDir, h := setupHier(t)
	locs, id := testIdentity()

	sim, _, err := h.MakeSimulation(ctx, locs, id)
	require.NoError(t, err)

	got, err := h.GetSimulation(ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, sim.ID, got.ID)
	assert.True(t, got.Locations.Equal(locs))
	assert.True(t, got.Identity.Equal(id))

	// Deleting removes the row and the output directory.
	outDir := config.SimulationDir(dataDir, sim.ID)
	require.NoError(t, os.MkdirAll(outDir, 0755))

	require.NoError(t, h.DeleteSimulation(ctx, sim.ID))
	_, err = h.GetSimulation(ctx, sim.ID)
	assert.Error(t, err)
	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))

	err = h.DeleteSimulation(ctx, sim.ID)
	assert.Error(t, err, "double delete reports the missing row")
}

func TestExportLedger(t *testing.T) {
	ctx, _, h := setupHier(t)
	locs, id := testIdentity()

	m, _, err := h.MakeMonad(ctx, locs, id, 2, true)
	require.NoError(t, err)

	path, err := h.ExportLedger(ctx, m.ID)
	require.NoError(t, err)

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(bs), `"monadId"`)
	assert.Contains(t, string(bs), `"simulations"`)
}
