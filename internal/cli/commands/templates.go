package commands

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

//go:embed all:templates
var templateFS embed.FS

// dotfiles are stored without the leading dot so they survive embedding.
var dotfiles = map[string]string{
	"gitignore": ".gitignore",
}

// copyTemplate writes an embedded template into targetDir. Existing files are
// kept unless force is set.
func copyTemplate(name, targetDir string, force bool) error {
	root := path.Join("templates", name)

	return fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := p[len(root):]
		if rel == "" {
			return nil
		}
		target := filepath.Join(targetDir, filepath.FromSlash(targetName(rel[1:])))

		if d.IsDir() {
			return os.MkdirAll(target, 0750)
		}
		if !force {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", p, err)
		}
		return os.WriteFile(target, content, 0600)
	})
}

func targetName(rel string) string {
	dir, base := path.Split(rel)
	if renamed, ok := dotfiles[base]; ok {
		return dir + renamed
	}
	return rel
}

// listTemplateFiles returns the files a template creates, sorted.
func listTemplateFiles(name string) ([]string, error) {
	root := path.Join("templates", name)
	var files []string
	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, targetName(p[len(root)+1:]))
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
