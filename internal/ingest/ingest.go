// Package ingest turns files on disk into in-memory datasets.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// Options tunes how cells are read. Zero values mean auto-detection.
type Options struct {
	// Delimiter overrides the CSV field separator.
	Delimiter rune
	// DecimalSeparator and ThousandsSeparator enable locale-aware number parsing
	// (e.g. ',' and '.' for "1.234,5"). Plain Go float syntax is used otherwise.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Sheet selects an XLSX sheet by name; SheetIndex is the 1-based fallback.
	Sheet      string
	SheetIndex int
	// MaxRows caps the rows read; <= 0 means no cap.
	MaxRows int
}

// Loader reads one file format.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (*dataset.Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no loader accepts the file.
var ErrUnsupported = errors.New("unsupported dataset format")

// LoadFile selects a loader by file name and returns the dataset with column
// descriptors filled in.
func LoadFile(path string, opt Options) (*dataset.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	for _, l := range registry {
		if !l.CanLoad(path) {
			continue
		}
		ds, err := l.Load(path, opt)
		if err != nil {
			return nil, err
		}
		if ds.Name == "" {
			ds.Name = filepath.Base(path)
		}
		ds.Describe()
		return ds, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// Truncated reports whether ds hit the MaxRows cap of opt.
func Truncated(ds *dataset.Dataset, opt Options) bool {
	return ds != nil && opt.MaxRows > 0 && len(ds.Rows) >= opt.MaxRows
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(jsonLoader{})
}

// columnNames cleans header cells: blanks get positional names and repeats get
// a numeric suffix.
func columnNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := cleanHeader(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name]++
		out[i] = name
	}
	return out
}
