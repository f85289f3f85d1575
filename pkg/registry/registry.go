// Package registry holds the static catalog of known commands used for local completion.
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// catalogFile represents the structure of catalog.yaml.
type catalogFile struct {
	Version int            `mapstructure:"version"`
	Groups  []catalogGroup `mapstructure:"groups"`
}

type catalogGroup struct {
	Name     string                 `mapstructure:"name"`
	Commands []domain.RegistryEntry `mapstructure:"commands"`
}

// Registry is an immutable catalog of commands.
// Safe for concurrent use; entries returned by its methods must not be modified.
type Registry struct {
	version int
	entries []domain.RegistryEntry // catalog order
	index   map[string]int         // lower-cased command -> position
}

// New builds a registry from entries, keeping their order.
// Later duplicates of the same command (case-insensitive) are ignored.
func New(version int, entries []domain.RegistryEntry) *Registry {
	r := &Registry{
		version: version,
		entries: make([]domain.RegistryEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		key := strings.ToLower(e.Command)
		if key == "" {
			continue
		}
		if _, dup := r.index[key]; dup {
			continue
		}
		r.index[key] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the built-in catalog.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Parse(builtinCatalog, ".yaml")
		if err != nil {
			panic(fmt.Sprintf("registry: embedded catalog is invalid: %v", err))
		}
		defaultReg = reg
	})
	return defaultReg
}

// LoadFile reads a catalog file (YAML or JSON, by extension).
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a catalog document. ext selects the syntax (".json" or YAML otherwise).
func Parse(data []byte, ext string) (*Registry, error) {
	var raw map[string]any
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	}

	var cat catalogFile
	if err := mapstructure.Decode(raw, &cat); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	var entries []domain.RegistryEntry
	for _, g := range cat.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("failed to decode catalog: group without name")
		}
		for _, e := range g.Commands {
			e.Group = g.Name
			if e.Category == "" {
				e.Category = g.Name
			}
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("failed to decode catalog: no commands")
	}
	return New(cat.Version, entries), nil
}

// Match returns the entries whose command contains partial, case-insensitively.
// Entries starting with partial come first; ties are broken by shorter command,
// then by catalog order. An empty partial matches nothing.
func (r *Registry) Match(partial string) []domain.RegistryEntry {
	if partial == "" {
		return []domain.RegistryEntry{}
	}
	needle := strings.ToLower(partial)

	type ranked struct {
		entry  domain.RegistryEntry
		prefix bool
	}
	var hits []ranked
	for _, e := range r.entries {
		cmd := strings.ToLower(e.Command)
		if strings.Contains(cmd, needle) {
			hits = append(hits, ranked{entry: e, prefix: strings.HasPrefix(cmd, needle)})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].prefix != hits[j].prefix {
			return hits[i].prefix
		}
		return len(hits[i].entry.Command) < len(hits[j].entry.Command)
	})

	out := make([]domain.RegistryEntry, len(hits))
	for i, h := range hits {
		out[i] = h.entry
	}
	return out
}

// Commands returns the command strings of the first limit matches (all when limit <= 0).
func (r *Registry) Commands(partial string, limit int) []string {
	matches := r.Match(partial)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Command
	}
	return out
}

// Lookup finds a command by exact (case-insensitive) name.
func (r *Registry) Lookup(command string) (domain.RegistryEntry, bool) {
	i, ok := r.index[strings.ToLower(strings.TrimSpace(command))]
	if !ok {
		return domain.RegistryEntry{}, false
	}
	return r.entries[i], true
}

// ByCategory returns the commands carrying the given category label.
func (r *Registry) ByCategory(category string) []domain.RegistryEntry {
	var out []domain.RegistryEntry
	for _, e := range r.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Categories returns the distinct category labels in first-seen order.
func (r *Registry) Categories() []string {
	return r.distinct(func(e domain.RegistryEntry) string { return e.Category })
}

// ByGroup returns the commands of a catalog group (system, git, ai, dev).
func (r *Registry) ByGroup(group string) []domain.RegistryEntry {
	var out []domain.RegistryEntry
	for _, e := range r.entries {
		if e.Group == group {
			out = append(out, e)
		}
	}
	return out
}

// Groups returns the catalog group names in order.
func (r *Registry) Groups() []string {
	return r.distinct(func(e domain.RegistryEntry) string { return e.Group })
}

// All returns every entry in catalog order.
func (r *Registry) All() []domain.RegistryEntry {
	return append([]domain.RegistryEntry(nil), r.entries...)
}

// Len returns the number of commands.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Version returns the catalog version.
func (r *Registry) Version() int {
	return r.version
}

func (r *Registry) distinct(key func(domain.RegistryEntry) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.entries {
		k := key(e)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
