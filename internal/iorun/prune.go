package iorun

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// prunePatterns maps each prune category to the glob patterns of the
// heavy artifacts it removes from a completed output directory.
var prunePatterns = map[string][]string{
	"images":    {"*.svg", "*.png", "*.jpg"},
	"snapshots": {"output*.xml", "output*.mat", "*.mat"},
	"logs":      {"*.log"},
}

// prune removes the configured artifact categories from one completed
// simulation's output directory.
func (s *scheduler) prune(outDir string) error {
	return PruneDir(outDir, s.cfg.Run.Marker, s.cfg.Run.PruneCategories)
}

// PruneDir removes the artifacts of the given categories from one
// output directory. The completion marker always survives.
func PruneDir(outDir, marker string, categories []string) error {
	markerPath := filepath.Join(outDir, marker)

	var removed int
	var freed uint64
	for _, category := range categories {
		patterns, ok := prunePatterns[category]
		if !ok {
			return PruneError(category, errUnknownCategory)
		}
		for _, pattern := range patterns {
			matches, err := filepath.Glob(filepath.Join(outDir, pattern))
			if err != nil {
				return PruneError(category, err)
			}
			for _, m := range matches {
				if m == markerPath {
					continue
				}
				if info, err := os.Stat(m); err == nil {
					freed += uint64(info.Size())
				}
				if err := os.Remove(m); err != nil {
					return PruneError(category, err)
				}
				removed++
			}
		}
	}

	if removed > 0 {
		slog.Debug("Pruned output artifacts",
			"dir", outDir, "files", removed, "freed", humanize.Bytes(freed))
	}
	return nil
}
