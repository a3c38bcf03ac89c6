package sources

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/stwalsh4118/devrights/internal/config"
)

// decodedFile closes the underlying file of a decoding reader.
type decodedFile struct {
	io.Reader
	file *os.File
}

func (d *decodedFile) Close() error {
	return d.file.Close()
}

// Open opens path and decodes it from encoding to UTF-8.
// Spreadsheet exports are often Windows-1252.
func Open(path, encoding string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", config.EncodingUTF8:
		return f, nil
	case config.EncodingWindows1252:
		return &decodedFile{Reader: transform.NewReader(f, charmap.Windows1252.NewDecoder()), file: f}, nil
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// Expand resolves file arguments to a sorted, de-duplicated list of paths.
// Patterns may use ** to match across directories. A plain path must exist
// and a pattern must match at least one file.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if !containsGlob(pattern) {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("input not found: %w", err)
			}
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", pattern)
		}
		for _, m := range matches {
			add(m)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
