// Package views persists named chart configurations.
package views

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/KaramelBytes/datalens/internal/utils"
)

const storeFileName = "views.json"

// ErrNotFound is returned when no view has the requested name.
var ErrNotFound = errors.New("view not found")

// View is a saved chart: which dataset it was built from and how.
type View struct {
	ID        string               `json:"id" yaml:"id"`
	Name      string               `json:"name" yaml:"name"`
	Dataset   string               `json:"dataset" yaml:"dataset"`
	Config    analysis.ChartConfig `json:"config" yaml:"config"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" yaml:"updated_at"`
}

// Store is the views.json file of one directory.
type Store struct {
	Views []*View `json:"views"`

	// Not serialized: directory holding views.json
	dir string `json:"-"`
}

// Open loads the store in dir. A missing file yields an empty store.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir}
	path := filepath.Join(dir, storeFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read views: %w", err)
	}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse views %s: %w", path, err)
	}
	return s, nil
}

// Dir returns the directory holding views.json.
func (s *Store) Dir() string { return s.dir }

// Save creates or replaces the view called name and writes the store. An
// existing view keeps its ID and creation time.
func (s *Store) Save(name, datasetPath string, cfg analysis.ChartConfig) (*View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("view name is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("view %q: %w", name, err)
	}
	now := time.Now().UTC()
	next := make([]*View, len(s.Views), len(s.Views)+1)
	copy(next, s.Views)
	var v View
	old, i := s.find(name)
	if i < 0 {
		v = View{ID: uuid.NewString(), Name: name, CreatedAt: now}
	} else {
		v = *old
	}
	v.Dataset = datasetPath
	v.Config = cfg.Clone()
	v.UpdatedAt = now
	if i < 0 {
		next = append(next, &v)
	} else {
		next[i] = &v
	}
	if err := s.commit(next); err != nil {
		return nil, err
	}
	return &v, nil
}

// Get returns the view called name, compared case-insensitively.
func (s *Store) Get(name string) (*View, error) {
	v, i := s.find(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v, nil
}

// List returns the views sorted by name.
func (s *Store) List() []*View {
	out := make([]*View, len(s.Views))
	copy(out, s.Views)
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

// Delete removes the view called name and writes the store.
func (s *Store) Delete(name string) error {
	_, i := s.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	next := make([]*View, 0, len(s.Views)-1)
	next = append(next, s.Views[:i]...)
	next = append(next, s.Views[i+1:]...)
	return s.commit(next)
}

// commit writes views to disk and adopts them only if the write succeeds.
func (s *Store) commit(views []*View) error {
	prev := s.Views
	s.Views = views
	if err := s.write(); err != nil {
		s.Views = prev
		return err
	}
	return nil
}

func (s *Store) find(name string) (*View, int) {
	name = strings.TrimSpace(name)
	for i, v := range s.Views {
		if strings.EqualFold(v.Name, name) {
			return v, i
		}
	}
	return nil, -1
}

func (s *Store) write() error {
	if s.dir == "" {
		return errors.New("views directory not set")
	}
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.dir, storeFileName), data)
}
