// Package iocompile builds the simulator executable for a custom-code
// location and a macro-flag set. Builds are memoized in the builds
// table under a deterministic key, so a combination compiles once and
// is reused by every later run.
package iocompile

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnuuid"
	"github.com/vtrials/vtdb/pkg/config"
	"github.com/vtrials/vtdb/pkg/db"
	"github.com/vtrials/vtdb/pkg/param"
	"github.com/vtrials/vtdb/pkg/vtdb"
)

type compiler struct {
	operator db.Operator
	registry vtdb.Registry
	dataDir  string
	cfg      config.BuildConfig

	// locks serializes builds per combination key; unrelated
	// combinations build in parallel.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCompiler creates a Compiler over the campaign database.
func NewCompiler(
	op db.Operator,
	reg vtdb.Registry,
	dataDir string,
	cfg config.BuildConfig,
) vtdb.Compiler {
	return &compiler{
		operator: op,
		registry: reg,
		dataDir:  dataDir,
		cfg:      cfg,
		locks:    map[string]*sync.Mutex{},
	}
}

// BuildKey derives the deterministic key of one (custom code, macro
// set) combination. Macro order does not matter.
func BuildKey(codeLocationID int64, macros []string) string {
	sorted := append([]string(nil), macros...)
	sort.Strings(sorted)
	seed := strconv.FormatInt(codeLocationID, 10) + "|" +
		strings.Join(sorted, " ")
	return gnuuid.New(seed).String()
}

func (c *compiler) Stale(
	ctx context.Context,
	codeLocationID int64,
	macros []string,
) (bool, error) {
	key := BuildKey(codeLocationID, macros)
	pool := c.operator.DB()

	q := `SELECT executable_path FROM builds WHERE key = ?`
	var exe string
	err := pool.QueryRowContext(ctx, q, key).Scan(&exe)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, StaleCheckError(key, err)
	}
	if _, err = os.Stat(exe); err != nil {
		return true, nil
	}
	return false, nil
}

func (c *compiler) Build(
	ctx context.Context,
	codeLocationID int64,
	macros []string,
) (string, error) {
	key := BuildKey(codeLocationID, macros)

	lock := c.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	stale, err := c.Stale(ctx, codeLocationID, macros)
	if err != nil {
		return "", err
	}
	if !stale {
		pool := c.operator.DB()
		var exe string
		err = pool.QueryRowContext(ctx,
			`SELECT executable_path FROM builds WHERE key = ?`, key).
			Scan(&exe)
		if err != nil {
			return "", StaleCheckError(key, err)
		}
		slog.Debug("Reusing executable", "key", key, "path", exe)
		return exe, nil
	}

	start := time.Now()
	exe, logPath, err := c.compile(ctx, key, codeLocationID, macros)
	if err != nil {
		return "", err
	}

	pool := c.operator.DB()
	sorted := append([]string(nil), macros...)
	sort.Strings(sorted)
	q := `
INSERT OR REPLACE INTO builds
  (key, custom_code_location_id, macro_flags, executable_path, log_path, built_at)
  VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`
	_, err = pool.ExecContext(ctx, q,
		key, codeLocationID, strings.Join(sorted, " "), exe, logPath)
	if err != nil {
		return "", BuildError(key, err)
	}

	slog.Info("Compiled simulator",
		"key", key, "path", exe,
		"duration", time.Since(start).Round(time.Millisecond))
	return exe, nil
}

// compile stages the base source plus the custom-code folder into the
// build directory and runs make there, log captured to build.log.
func (c *compiler) compile(
	ctx context.Context,
	key string,
	codeLocationID int64,
	macros []string,
) (string, string, error) {
	folder, err := c.registry.FolderName(ctx, param.CustomCode, codeLocationID)
	if err != nil {
		return "", "", err
	}

	buildDir := filepath.Join(config.BuildsDir(c.dataDir), key)
	if err = os.RemoveAll(buildDir); err != nil {
		return "", "", BuildError(key, err)
	}
	if err = os.MkdirAll(buildDir, 0755); err != nil {
		return "", "", BuildError(key, err)
	}

	if c.cfg.BaseSource != "" {
		if err = os.CopyFS(buildDir, os.DirFS(c.cfg.BaseSource)); err != nil {
			return "", "", BuildError(key, err)
		}
	}
	codeDir := config.LocationDir(c.dataDir, string(param.CustomCode), folder)
	if err = os.CopyFS(buildDir, os.DirFS(codeDir)); err != nil {
		return "", "", BuildError(key, err)
	}

	logPath := filepath.Join(buildDir, "build.log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return "", "", BuildError(key, err)
	}
	defer logFile.Close()

	jobs := c.cfg.MakeJobs
	if jobs < 1 {
		jobs = 1
	}
	cmd := exec.CommandContext(ctx, "make",
		"-j", strconv.Itoa(jobs), c.cfg.Target)
	cmd.Dir = buildDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if len(macros) > 0 {
		cmd.Env = append(os.Environ(),
			"EXTRA_CFLAGS="+strings.Join(macros, " "))
	}

	if err = cmd.Run(); err != nil {
		return "", "", MakeError(key, logPath, err)
	}

	exe := filepath.Join(buildDir, c.cfg.Target)
	info, err := os.Stat(exe)
	if err != nil {
		return "", "", MakeError(key, logPath, err)
	}
	slog.Debug("Build produced executable",
		"path", exe, "size", humanize.Bytes(uint64(info.Size())))
	return exe, logPath, nil
}

func (c *compiler) lockFor(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	c.locks[key] = l
	return l
}
