package iohier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gnfmt"
	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/param"
)

// ledger is the exported flat form of one replicate group. The file is
// a cache for external tools; the database stays authoritative.
type ledger struct {
	MonadID     int64            `json:"monadId"`
	Locations   map[string]int64 `json:"locations"`
	Identity    map[string]int64 `json:"identity"`
	Simulations []int64          `json:"simulations"`
}

func (h *hierarchy) ExportLedger(
	ctx context.Context,
	monadID int64,
) (string, error) {
	pool := h.operator.DB()

	cols, nLocs := identityColumns()
	q := `SELECT ` + strings.Join(cols, ", ") + ` FROM monads WHERE id = ?`
	raws := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raws {
		ptrs[i] = &raws[i]
	}
	err := pool.QueryRowContext(ctx, q, monadID).Scan(ptrs...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", NotFoundError("monad", monadID)
	}
	if err != nil {
		return "", LookupError("monad", err)
	}

	led := ledger{
		MonadID:   monadID,
		Locations: map[string]int64{},
		Identity:  map[string]int64{},
	}
	for i, k := range param.AllKinds() {
		if v := raws[i].(int64); v >= 0 {
			led.Locations[string(k)] = v
		}
	}
	for i, k := range param.VariableKinds() {
		led.Identity[string(k)] = raws[nLocs+i].(int64)
	}

	conn, err := pool.Conn(ctx)
	if err != nil {
		return "", LookupError("monad members", err)
	}
	defer conn.Close()
	led.Simulations, err = monadMembers(ctx, conn, monadID)
	if err != nil {
		return "", err
	}

	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(led)
	if err != nil {
		return "", LedgerError(monadID, err)
	}

	dir := config.LedgersDir(h.dataDir)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return "", LedgerError(monadID, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("monad_%d.json", monadID))
	if err = os.WriteFile(path, bs, 0644); err != nil {
		return "", LedgerError(monadID, err)
	}
	return path, nil
}
