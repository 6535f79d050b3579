package scenario

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

var (
	catalogOnce sync.Once
	catalog     map[string]*Scenario
	catalogErr  error
)

// Load decodes and validates one YAML scenario.
func Load(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if err := s.prepare(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile loads a scenario from path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario %s: %w", path, err)
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadDir loads every *.yaml and *.yml file of dir keyed by scenario name.
func LoadDir(dir string) (map[string]*Scenario, error) {
	return loadFS(os.DirFS(dir), ".")
}

func loadFS(fsys fs.FS, dir string) (map[string]*Scenario, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario dir %s: %w", dir, err)
	}
	out := make(map[string]*Scenario)
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		f, err := fsys.Open(pathJoin(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to open scenario %s: %w", e.Name(), err)
		}
		s, err := Load(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if _, dup := out[s.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q", e.Name(), s.Name)
		}
		out[s.Name] = s
	}
	return out, nil
}

func pathJoin(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

func loadCatalog() {
	catalog, catalogErr = loadFS(catalogFS, "catalog")
}

// Catalog returns the embedded scenarios sorted by name.
func Catalog() ([]*Scenario, error) {
	catalogOnce.Do(loadCatalog)
	if catalogErr != nil {
		return nil, catalogErr
	}
	out := make([]*Scenario, 0, len(catalog))
	for _, s := range catalog {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a copy of the named embedded scenario, safe to modify.
func Get(name string) (*Scenario, error) {
	catalogOnce.Do(loadCatalog)
	if catalogErr != nil {
		return nil, catalogErr
	}
	s, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	return s.clone(), nil
}

// MustGet is Get that panics on error.
func MustGet(name string) *Scenario {
	s, err := Get(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Resolve looks name up in dir first, then in the embedded catalog. An empty
// dir means the catalog only.
func Resolve(dir, name string) (*Scenario, error) {
	if dir != "" {
		found, err := LoadDir(dir)
		if err != nil {
			return nil, err
		}
		if s, ok := found[name]; ok {
			return s, nil
		}
	}
	return Get(name)
}
