package iostore

import (
	"context"

	"github.com/vtrials/vtdb/pkg/design"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

// MaterializeMatrix writes every point of a design matrix into the
// store and returns one variation identity per point, in design order.
// Columns for every definition of the matrix must already exist; call
// EnsureColumns first.
func MaterializeMatrix(
	ctx context.Context,
	st vtdb.VariationStore,
	m design.Matrix,
) ([]param.Identity, error) {
	ids := make([]param.Identity, len(m.Points))
	for i := range m.Points {
		identity := param.Identity{}
		for kind, vector := range m.Vectors(i) {
			id, _, err := st.InsertOrGet(ctx, kind, vector)
			if err != nil {
				return nil, err
			}
			identity[kind] = id
		}
		ids[i] = identity
	}
	return ids, nil
}
