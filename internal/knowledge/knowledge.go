// Package knowledge provides the static entity knowledge base used by
// query understanding and expansion. The base is immutable after
// construction and is injected into components rather than accessed as
// a process-wide singleton, so tests can substitute minimal fixtures.
package knowledge

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entity describes one known entity (a product, model, or system the
// corpus is expected to cover) together with the context used for
// query expansion.
type Entity struct {
	// Name is the canonical lowercase entity name (e.g. "gpt-5").
	Name string `yaml:"name"`

	// Aliases are alternative spellings matched during extraction.
	Aliases []string `yaml:"aliases"`

	// Organization is the owning organization (e.g. "OpenAI").
	Organization string `yaml:"organization"`

	// Category is the coarse entity category (e.g. "proprietary language model").
	Category string `yaml:"category"`

	// RelatedTerms are terms injected for comparison-style expansions.
	RelatedTerms []string `yaml:"related_terms"`

	// KeyFeatures are feature terms injected for capability/performance expansions.
	KeyFeatures []string `yaml:"key_features"`
}

// Base is the immutable knowledge base. All lookup maps are built once
// at construction; callers must not mutate the returned slices.
type Base struct {
	entities []Entity

	// byName maps lowercase canonical names and aliases to the entity.
	byName map[string]*Entity

	// technicalTerms are domain terms prioritized during key-term extraction.
	technicalTerms []string
	techSet        map[string]bool

	// benchmarks are benchmark names used for performance-query expansion.
	benchmarks []string

	// stopWords are filtered during key-term extraction.
	stopWords map[string]bool
}

// baseFile is the YAML shape for an external knowledge base override.
type baseFile struct {
	Entities       []Entity `yaml:"entities"`
	TechnicalTerms []string `yaml:"technical_terms"`
	Benchmarks     []string `yaml:"benchmarks"`
}

// New builds a knowledge base from the given entities and vocabulary.
// Entity names and aliases are lowercased for case-insensitive matching.
func New(entities []Entity, technicalTerms, benchmarks []string) *Base {
	b := &Base{
		entities:       make([]Entity, len(entities)),
		byName:         make(map[string]*Entity, len(entities)*2),
		technicalTerms: technicalTerms,
		techSet:        make(map[string]bool, len(technicalTerms)),
		benchmarks:     benchmarks,
		stopWords:      defaultStopWords,
	}
	copy(b.entities, entities)

	for i := range b.entities {
		e := &b.entities[i]
		e.Name = strings.ToLower(e.Name)
		b.byName[e.Name] = e
		for _, alias := range e.Aliases {
			b.byName[strings.ToLower(alias)] = e
		}
	}
	for _, t := range technicalTerms {
		b.techSet[strings.ToLower(t)] = true
	}
	return b
}

// Default returns the built-in knowledge base covering common language
// model entities, domain vocabulary, and benchmark names.
func Default() *Base {
	return New(defaultEntities, defaultTechnicalTerms, defaultBenchmarks)
}

// Load reads a knowledge base from a YAML file. Missing vocabulary
// sections fall back to the built-in defaults.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}

	var f baseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if len(f.Entities) == 0 {
		return nil, fmt.Errorf("knowledge base %s defines no entities", path)
	}

	terms := f.TechnicalTerms
	if len(terms) == 0 {
		terms = defaultTechnicalTerms
	}
	benchmarks := f.Benchmarks
	if len(benchmarks) == 0 {
		benchmarks = defaultBenchmarks
	}
	return New(f.Entities, terms, benchmarks), nil
}

// Lookup returns the entity for a canonical name or alias, or nil.
func (b *Base) Lookup(name string) *Entity {
	return b.byName[strings.ToLower(name)]
}

// Entities returns all entities in the base.
func (b *Base) Entities() []Entity {
	return b.entities
}

// Names returns all canonical names and aliases, longest first so
// multi-word names match before their substrings.
func (b *Base) Names() []string {
	names := make([]string, 0, len(b.byName))
	for name := range b.byName {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// TechnicalTerms returns the prioritized domain vocabulary.
func (b *Base) TechnicalTerms() []string {
	return b.technicalTerms
}

// IsTechnicalTerm reports whether the term is in the domain vocabulary.
func (b *Base) IsTechnicalTerm(term string) bool {
	return b.techSet[strings.ToLower(term)]
}

// Benchmarks returns benchmark names for performance-query expansion.
func (b *Base) Benchmarks() []string {
	return b.benchmarks
}

// IsStopWord reports whether the word carries no search value.
func (b *Base) IsStopWord(word string) bool {
	return b.stopWords[strings.ToLower(word)]
}
