package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML document shape for template catalogs.
type catalogFile struct {
	Templates []Template `yaml:"templates"`
}

// ParseCatalog decodes a YAML template catalog from the reader.
func ParseCatalog(r io.Reader) ([]Template, error) {
	var doc catalogFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	for i, tpl := range doc.Templates {
		if tpl.Name == "" {
			return nil, fmt.Errorf("%w: template %d has no name", ErrInvalidCatalog, i)
		}
	}
	return doc.Templates, nil
}

// LoadCatalog reads every *.yaml and *.yml file in the filesystem and
// seeds the store with the templates found. Files are processed in
// lexical order so catalogs can layer: a later file re-declaring a name
// creates a new version. Returns the number of templates created.
func LoadCatalog(ctx context.Context, store Store, fsys fs.FS) (int, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, errors.Join(ErrInvalidCatalog, err)
	}

	created := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		f, err := fsys.Open(entry.Name())
		if err != nil {
			return created, errors.Join(ErrInvalidCatalog, err)
		}

		templates, err := ParseCatalog(f)
		_ = f.Close()
		if err != nil {
			return created, fmt.Errorf("%s: %w", entry.Name(), err)
		}

		for _, tpl := range templates {
			if _, err := store.Create(ctx, tpl); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
