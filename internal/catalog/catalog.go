// Package catalog holds the read-only hardware score tables used to
// compare computers.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeraldtan21/cts/internal/model"
)

//go:embed hardware.yaml
var builtin []byte

// Kind is a hardware component with its own score table.
type Kind string

const (
	KindCPU     Kind = "cpu"
	KindGPU     Kind = "gpu"
	KindRAM     Kind = "ram"
	KindStorage Kind = "storage"
)

// Kinds lists every component kind.
var Kinds = []Kind{KindCPU, KindGPU, KindRAM, KindStorage}

// Entry is one descriptor and its score.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type table struct {
	entries []Entry
	byKey   map[string]int
}

// Catalog is safe for concurrent reads; it is never modified after load.
type Catalog struct {
	tables map[Kind]table
}

type document struct {
	CPU     map[string]int `yaml:"cpu"`
	GPU     map[string]int `yaml:"gpu"`
	RAM     map[string]int `yaml:"ram"`
	Storage map[string]int `yaml:"storage"`
}

// Default returns the catalog built into the binary.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in tables are invalid: %v", err))
	}
	return c
}

// Load reads the catalog from path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hardware catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Negative scores are rejected.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse hardware catalog: %w", err)
	}

	c := &Catalog{tables: make(map[Kind]table, len(Kinds))}
	for kind, scores := range map[Kind]map[string]int{
		KindCPU:     doc.CPU,
		KindGPU:     doc.GPU,
		KindRAM:     doc.RAM,
		KindStorage: doc.Storage,
	} {
		t := table{entries: make([]Entry, 0, len(scores)), byKey: make(map[string]int, len(scores))}
		for name, score := range scores {
			if score < 0 {
				return nil, fmt.Errorf("hardware catalog: %s %q has negative score %d", kind, name, score)
			}
			t.entries = append(t.entries, Entry{Name: name, Score: score})
			t.byKey[normalize(name)] = score
		}
		// Highest score first, then by name.
		sort.Slice(t.entries, func(i, j int) bool {
			if t.entries[i].Score != t.entries[j].Score {
				return t.entries[i].Score > t.entries[j].Score
			}
			return t.entries[i].Name < t.entries[j].Name
		})
		c.tables[kind] = t
	}
	return c, nil
}

func normalize(descriptor string) string {
	return strings.ToLower(strings.Join(strings.Fields(descriptor), " "))
}

// Lookup returns the score for descriptor. Matching ignores case and
// repeated whitespace.
func (c *Catalog) Lookup(kind Kind, descriptor string) (int, bool) {
	score, ok := c.tables[kind].byKey[normalize(descriptor)]
	return score, ok
}

// Score returns the per-component breakdown. Unknown descriptors score 0.
func (c *Catalog) Score(cpu, gpu, ram, storage string) model.Performance {
	var p model.Performance
	p.CPU, _ = c.Lookup(KindCPU, cpu)
	p.GPU, _ = c.Lookup(KindGPU, gpu)
	p.RAM, _ = c.Lookup(KindRAM, ram)
	p.Storage, _ = c.Lookup(KindStorage, storage)
	p.Total = p.CPU + p.GPU + p.RAM + p.Storage
	return p
}

// ScoreComputer scores the descriptors of comp.
func (c *Catalog) ScoreComputer(comp model.Computer) model.Performance {
	return c.Score(comp.CPU, comp.GPU, comp.RAM, comp.Storage)
}

// Entries returns a copy of the table for kind, best first.
func (c *Catalog) Entries(kind Kind) []Entry {
	entries := c.tables[kind].entries
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// All returns every table keyed by kind.
func (c *Catalog) All() map[Kind][]Entry {
	all := make(map[Kind][]Entry, len(Kinds))
	for _, kind := range Kinds {
		all[kind] = c.Entries(kind)
	}
	return all
}
