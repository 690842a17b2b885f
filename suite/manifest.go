// Package suite runs check suites: TOML manifests that name compiled
// programs and equality checks to evaluate against them.
package suite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/needle-lang/needle/cas"
)

type Manifest struct {
	Suite    SuiteDetails           `toml:""`
	Programs map[string]ProgramSpec `toml:",omitempty"`
	Checks   map[string]CheckSpec   `toml:",omitempty"`
}

type SuiteDetails struct {
	Name string `toml:",omitempty"`
}

type ProgramSpec struct {
	File string `toml:",omitempty"`
}

// CheckSpec evaluates Expr with the named program's bindings in scope
// and compares it structurally against Expect. An empty Program refers
// to the default program "main".
type CheckSpec struct {
	Program string `toml:",omitempty"`
	Expr    string `toml:""`
	Expect  string `toml:""`
}

func parseManifest(r io.Reader) (*Manifest, error) {
	var out Manifest
	_, err := toml.NewDecoder(r).Decode(&out)
	return &out, err
}

func LoadManifestFromFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	m, err := parseManifest(f)
	if err != nil {
		return nil, err
	}
	if len(m.Programs) == 0 {
		// Default program: the manifest's name with a .ndl extension.
		parts := strings.Split(fi.Name(), ".")
		parts = parts[:len(parts)-1]
		parts = append(parts, "ndl")
		m.Programs = map[string]ProgramSpec{
			"main": {File: strings.Join(parts, ".")},
		}
	}
	filedir := filepath.Dir(path)
	for name, p := range m.Programs {
		if p.File == "" {
			return nil, fmt.Errorf("program %q has no file", name)
		}
		p.File = filepath.Clean(filepath.Join(filedir, p.File))
		m.Programs[name] = p
	}
	return m, nil
}

func (m *Manifest) BuildRunner() (*Runner, error) {
	for name, c := range m.Checks {
		if c.Expr == "" {
			return nil, fmt.Errorf("check %q has no expression", name)
		}
		if c.Expect == "" {
			return nil, fmt.Errorf("check %q has no expected value", name)
		}
		program := c.Program
		if program == "" {
			program = "main"
		}
		if _, ok := m.Programs[program]; !ok {
			return nil, fmt.Errorf("check %q references unknown program %q", name, program)
		}
	}
	store := cas.NewLRUStore(cas.NewMemoryStore(), 0)
	return &Runner{
		Manifest: m,
		Store:    store,
		programs: make(map[string]cas.Hash),
	}, nil
}
