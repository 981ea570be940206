package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dotcommander/schedlint/internal/cue"
	"gopkg.in/yaml.v3"
)

// overrideFile is the on-disk shape of a catalog override.
type overrideFile struct {
	CustomBlendWeight *float64       `yaml:"custom_blend_weight"`
	Replace           bool           `yaml:"replace"`
	Standard          []ruleOverride `yaml:"standard"`
	Custom            []ruleOverride `yaml:"custom"`
}

type ruleOverride struct {
	ID          string             `yaml:"id"`
	Name        *string            `yaml:"name"`
	Category    *string            `yaml:"category"`
	Weight      *float64           `yaml:"weight"`
	Threshold   *thresholdSpec     `yaml:"threshold"`
	Evaluator   *string            `yaml:"evaluator"`
	Description *string            `yaml:"description"`
	Enabled     *bool              `yaml:"enabled"`
	Params      map[string]float64 `yaml:"params"`
}

type thresholdSpec struct {
	Kind  string  `yaml:"kind"`
	Value float64 `yaml:"value"`
	Basis string  `yaml:"basis"`
}

func (t thresholdSpec) build() (Threshold, error) {
	switch t.Kind {
	case "ratio":
		if t.Basis == "relationships" {
			return RelationshipRatio(t.Value), nil
		}
		return Ratio(t.Value), nil
	case "fixed":
		if t.Value != math.Trunc(t.Value) {
			return Threshold{}, fmt.Errorf("fixed threshold %v must be a whole number", t.Value)
		}
		return Fixed(int(t.Value)), nil
	default:
		return Threshold{}, fmt.Errorf("unknown threshold kind %q", t.Kind)
	}
}

// Loader builds catalogs from the defaults plus an optional YAML override.
type Loader struct {
	validator *cue.Validator
	known     func(key string) bool
}

// NewLoader creates a Loader. known reports whether an evaluator key is
// registered and is used to validate every catalog the loader returns.
func NewLoader(known func(key string) bool) (*Loader, error) {
	v := cue.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return nil, err
	}
	return &Loader{validator: v, known: known}, nil
}

// Default returns the validated built-in catalog.
func (l *Loader) Default() (*Catalog, error) {
	c := Default()
	if err := c.Validate(l.known); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile applies the override file at path to the defaults. An empty path
// returns the defaults.
func (l *Loader) LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return l.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return l.Load(path, data)
}

// Load applies override YAML to the defaults and validates the result.
func (l *Loader) Load(name string, data []byte) (*Catalog, error) {
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML %s: %w", ErrInvalidCatalog, name, err)
	}

	verrs, err := l.validator.ValidateCatalog(name, raw)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", name, err)
	}
	if err := cue.AsError(verrs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	var doc overrideFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: YAML decode error in %s: %w", ErrInvalidCatalog, name, err)
	}

	c, err := doc.apply(Default())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCatalog, name, err)
	}

	if err := c.Validate(l.known); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// apply merges the override onto base. With replace set the base rules are
// discarded first.
func (o *overrideFile) apply(base *Catalog) (*Catalog, error) {
	c := base.Clone()
	if o.Replace {
		c.Standard = nil
		c.Custom = nil
	}
	if o.CustomBlendWeight != nil {
		c.CustomBlendWeight = *o.CustomBlendWeight
	}

	var err error
	if c.Standard, err = mergeRules(c.Standard, o.Standard); err != nil {
		return nil, err
	}
	if c.Custom, err = mergeRules(c.Custom, o.Custom); err != nil {
		return nil, err
	}
	return c, nil
}

func mergeRules(rules []RuleDefinition, overrides []ruleOverride) ([]RuleDefinition, error) {
	for _, ov := range overrides {
		pos := -1
		for i := range rules {
			if rules[i].ID == ov.ID {
				pos = i
				break
			}
		}

		if ov.Enabled != nil && !*ov.Enabled {
			if pos >= 0 {
				rules = append(rules[:pos], rules[pos+1:]...)
			}
			continue
		}

		if pos < 0 {
			if ov.Weight == nil || ov.Threshold == nil {
				return nil, fmt.Errorf("new rule %s needs weight and threshold", ov.ID)
			}
			rules = append(rules, RuleDefinition{ID: ov.ID})
			pos = len(rules) - 1
		}

		r := &rules[pos]
		if ov.Name != nil {
			r.Name = *ov.Name
		}
		if ov.Category != nil {
			r.Category = Category(*ov.Category)
		}
		if ov.Weight != nil {
			r.Weight = *ov.Weight
		}
		if ov.Threshold != nil {
			th, err := ov.Threshold.build()
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", ov.ID, err)
			}
			r.Threshold = th
		}
		if ov.Evaluator != nil {
			r.Evaluator = *ov.Evaluator
		}
		if ov.Description != nil {
			r.Description = *ov.Description
		}
		if len(ov.Params) > 0 {
			params := make(map[string]float64, len(r.Params)+len(ov.Params))
			for k, v := range r.Params {
				params[k] = v
			}
			for k, v := range ov.Params {
				params[k] = v
			}
			r.Params = params
		}
	}
	return rules, nil
}
