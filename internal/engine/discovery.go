package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DiscoveryResult contains the Python files found under the requested paths.
type DiscoveryResult struct {
	Files    []string
	Excluded int
	Duration time.Duration
}

// Discover walks paths and returns every *.py file not excluded, sorted and
// de-duplicated. Explicit file arguments are kept even when excluded.
func (e *Engine) Discover(paths []string) (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}
	seen := make(map[string]bool)

	if len(paths) == 0 {
		paths = []string{"."}
	}

	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			result.Files = append(result.Files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot lint %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				e.logger.Debug("skipping unreadable path", "path", path, "error", walkErr)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if path != root && e.isExcluded(d.Name()) {
				result.Excluded++
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".py") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(result.Files)
	result.Duration = time.Since(start)

	e.logger.Debug("discovery complete",
		"files", len(result.Files),
		"excluded", result.Excluded,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// isExcluded matches a base name against the exclude patterns.
func (e *Engine) isExcluded(name string) bool {
	for _, pattern := range e.exclude {
		if pattern == name {
			return true
		}
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// RulePath is the path a file is analyzed and cached under: slash separated
// and relative to root when the file lies inside it, absolute otherwise.
// Directory names above the project never reach path based rules.
func RulePath(root, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	if root != "" {
		rel, err := filepath.Rel(root, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(abs)
}
