package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ccloudctl/pkg/logging"
)

// Load reads desired-state documents from path, which may be a single
// manifest file or a directory holding *.yaml / *.yml files. Directory
// entries load in name order, so numbering files orders the apply.
// Manifests render through the template engine before parsing; values is
// the data available as .Values.
func Load(path string, values map[string]any) ([]Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !IsManifestFile(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no manifest files (*.yaml, *.yml) found in %s", path)
		}
	} else {
		files = []string{path}
	}

	var docs []Document
	seen := make(map[string]string) // kind/name -> file
	for _, file := range files {
		fileDocs, err := loadFile(file, values)
		if err != nil {
			return nil, err
		}
		for _, doc := range fileDocs {
			key := doc.Kind + "/" + doc.Name
			if prev, ok := seen[key]; ok {
				return nil, fmt.Errorf("duplicate %s %q in %s (already declared in %s)", doc.Kind, doc.Name, doc.File, prev)
			}
			seen[key] = doc.File
			docs = append(docs, doc)
		}
	}

	logging.Debug("Manifest", "loaded %d documents from %s", len(docs), path)
	return docs, nil
}

// IsManifestFile reports whether a file name looks like a manifest.
func IsManifestFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// loadFile renders one file and parses all its documents.
func loadFile(path string, values map[string]any) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	rendered, err := Render(filepath.Base(path), string(data), values)
	if err != nil {
		return nil, err
	}

	var docs []Document
	dec := yaml.NewDecoder(strings.NewReader(rendered))
	for index := 0; ; index++ {
		var doc Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s document %d: %w", path, index, err)
		}

		doc.File = path
		doc.Index = index
		if doc.empty() {
			continue
		}
		if doc.State == "" {
			doc.State = StatePresent
		}
		doc.Kind = strings.ToLower(doc.Kind)
		if err := doc.validate(); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
