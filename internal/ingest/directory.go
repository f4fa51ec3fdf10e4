package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ScanDirectory walks root, filters by includeExts (or defaults), skips hidden
// entries if requested and hashes every match. Files whose content was already
// seen in this scan are flagged Deduplicated. Walk errors on single entries are
// recorded and the walk continues.
func ScanDirectory(ctx context.Context, root string, includeExts []string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}
	exts := extSet(includeExts)
	seen := map[string]struct{}{}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowed(path, exts) {
			return nil
		}
		stats.Matched++

		hash, size, err := HashFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		_, dup := seen[hash]
		seen[hash] = struct{}{}

		results = append(results, FileResult{Path: path, HashHex: hash, Size: size, Deduplicated: dup})
		stats.Succeeded++
		if dup {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

// Unique returns the paths of successful, non-duplicate results.
func Unique(results []FileResult) []string {
	var out []string
	for _, r := range results {
		if r.Err == "" && !r.Deduplicated {
			out = append(out, r.Path)
		}
	}
	return out
}
