// Package policy provides the change-type registry and the classifier that
// matches diff text against it.
package policy

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/adrianpk/stopgate/internal/config"
)

var (
	ErrEmptyID     = errors.New("change type id is empty")
	ErrDuplicateID = errors.New("duplicate change type id")
	ErrNoPatterns  = errors.New("change type has no patterns")
)

// ChangeType is a declarative rule: any pattern hit means the diff touches
// this category and the listed checks apply.
type ChangeType struct {
	ID       string
	Name     string
	Patterns []string
	Checks   []string
}

// Match records a change type detected in a diff and the pattern that hit first.
type Match struct {
	ChangeType
	Pattern string
}

// Classification is the ordered set of detected change types, in registry order.
type Classification []Match

// IDs returns the detected change type ids in order.
func (c Classification) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, m := range c {
		ids = append(ids, m.ID)
	}
	return ids
}

// Empty reports whether nothing was detected.
func (c Classification) Empty() bool {
	return len(c) == 0
}

type compiledRule struct {
	ChangeType
	patterns []*regexp.Regexp
}

// Registry holds change types in a fixed order. It is immutable once built.
type Registry struct {
	rules []compiledRule
}

// NewRegistry validates and compiles the given change types, keeping their order.
func NewRegistry(types []ChangeType) (*Registry, error) {
	r := &Registry{rules: make([]compiledRule, 0, len(types))}
	seen := make(map[string]bool, len(types))

	for _, ct := range types {
		if ct.ID == "" {
			return nil, ErrEmptyID
		}
		if seen[ct.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, ct.ID)
		}
		seen[ct.ID] = true

		rule, err := compile(ct)
		if err != nil {
			return nil, err
		}
		r.rules = append(r.rules, rule)
	}

	return r, nil
}

// compile builds the matchers for one change type. Matching is case-insensitive
// and anchors apply per line so file-name patterns like `\.sql$` see each path.
func compile(ct ChangeType) (compiledRule, error) {
	if len(ct.Patterns) == 0 {
		return compiledRule{}, fmt.Errorf("%w: %s", ErrNoPatterns, ct.ID)
	}

	rule := compiledRule{
		ChangeType: cloneChangeType(ct),
		patterns:   make([]*regexp.Regexp, 0, len(ct.Patterns)),
	}
	for _, p := range ct.Patterns {
		re, err := regexp.Compile("(?im)" + p)
		if err != nil {
			return compiledRule{}, fmt.Errorf("change type %s: pattern %q: %w", ct.ID, p, err)
		}
		rule.patterns = append(rule.patterns, re)
	}
	return rule, nil
}

// DefaultRegistry returns the built-in registry.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultChangeTypes)
	if err != nil {
		panic("policy: invalid built-in change types: " + err.Error())
	}
	return r
}

// Extend returns a registry with cfg applied on top of r. Custom rules with a
// known id replace that rule in place; new ids are appended. Disabled ids are
// dropped last. r is left untouched.
func (r *Registry) Extend(cfg *config.RulesConfig) (*Registry, error) {
	types := r.ChangeTypes()
	if cfg == nil {
		return NewRegistry(types)
	}

	for _, custom := range cfg.Custom {
		ct := ChangeType{
			ID:       custom.ID,
			Name:     custom.Name,
			Patterns: custom.Patterns,
			Checks:   custom.Checks,
		}
		if ct.Name == "" {
			ct.Name = ct.ID
		}
		idx := slices.IndexFunc(types, func(t ChangeType) bool { return t.ID == ct.ID })
		if idx >= 0 {
			types[idx] = ct
			continue
		}
		types = append(types, ct)
	}

	types = slices.DeleteFunc(types, func(t ChangeType) bool {
		return slices.Contains(cfg.Disable, t.ID)
	})

	return NewRegistry(types)
}

// ChangeTypes returns a copy of the registered change types in order.
func (r *Registry) ChangeTypes() []ChangeType {
	out := make([]ChangeType, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, cloneChangeType(rule.ChangeType))
	}
	return out
}

// Lookup returns the change type registered under id.
func (r *Registry) Lookup(id string) (ChangeType, bool) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return cloneChangeType(rule.ChangeType), true
		}
	}
	return ChangeType{}, false
}

// Len returns the number of registered change types.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Classify tests each change type against corpus in registry order. The first
// matching pattern records the type and skips its remaining patterns.
func (r *Registry) Classify(corpus string) Classification {
	var out Classification
	if corpus == "" {
		return out
	}

	for _, rule := range r.rules {
		for i, re := range rule.patterns {
			if re.MatchString(corpus) {
				out = append(out, Match{
					ChangeType: cloneChangeType(rule.ChangeType),
					Pattern:    rule.Patterns[i],
				})
				break
			}
		}
	}
	return out
}

func cloneChangeType(ct ChangeType) ChangeType {
	return ChangeType{
		ID:       ct.ID,
		Name:     ct.Name,
		Patterns: slices.Clone(ct.Patterns),
		Checks:   slices.Clone(ct.Checks),
	}
}
