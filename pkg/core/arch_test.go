package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// importsOf returns the imports of every non-test Go file directly in dir,
// keyed by file name.
func importsOf(t *testing.T, dir string) map[string][]string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	fset := token.NewFileSet()
	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		if strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		for _, imp := range f.Imports {
			out[path] = append(out[path], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return out
}

// TestCoreImportsOnly verifies pkg/core only imports the standard library.
func TestCoreImportsOnly(t *testing.T) {
	for file, imports := range importsOf(t, ".") {
		for _, importPath := range imports {
			// stdlib paths have no dot in the first element
			if strings.Contains(strings.Split(importPath, "/")[0], ".") {
				t.Errorf("%s imports forbidden package: %s", file, importPath)
			}
		}
	}
}

// TestPublicPackagesDoNotImportInternal verifies the library packages under pkg/
// stay usable outside this module.
func TestPublicPackagesDoNotImportInternal(t *testing.T) {
	dirs := []string{
		".",
		"../pyast",
		"../smell",
		"../smell/rules",
		"../smell/rules/data",
		"../smell/rules/pipeline",
		"../smell/rules/reproducibility",
	}
	for _, dir := range dirs {
		for file, imports := range importsOf(t, dir) {
			for _, importPath := range imports {
				if strings.Contains(importPath, "/internal/") {
					t.Errorf("%s imports internal package: %s", file, importPath)
				}
			}
		}
	}
}

// TestRulesDoNotImportParser verifies rules only see the node model, never the
// tree-sitter front end.
func TestRulesDoNotImportParser(t *testing.T) {
	for _, dir := range []string{"../smell", "../smell/rules/data", "../smell/rules/pipeline", "../smell/rules/reproducibility"} {
		for file, imports := range importsOf(t, dir) {
			for _, importPath := range imports {
				if strings.Contains(importPath, "go-tree-sitter") {
					t.Errorf("%s imports the parser backend: %s", file, importPath)
				}
			}
		}
	}
}
