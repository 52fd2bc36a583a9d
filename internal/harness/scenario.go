package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one end-to-end query test.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Schema is the CUE schema directory, relative to the scenario file.
	Schema string `yaml:"schema"`

	// Fixtures are inserted before the first step, keyed by entity name.
	// Record values are keyed by property path.
	Fixtures map[string][]map[string]any `yaml:"fixtures,omitempty"`

	Steps []Step `yaml:"steps"`
}

// Step runs one query.
//
// With Op set, the declared repository operation is invoked with Args;
// a Pageable argument is written as {page, size, sort} and a Sort argument
// as "prop:dir,..." text. Without Op, Where is evaluated with FindAll, or
// with Count when Count is set.
type Step struct {
	Entity string `yaml:"entity"`
	Op     string `yaml:"op,omitempty"`
	Args   []any  `yaml:"args,omitempty"`

	Where *Where   `yaml:"where,omitempty"`
	Page  *PageArg `yaml:"page,omitempty"`
	Sort  string   `yaml:"sort,omitempty"`
	Count bool     `yaml:"count,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// PageArg is the YAML form of a page request.
type PageArg struct {
	Page int    `yaml:"page"`
	Size int    `yaml:"size"`
	Sort string `yaml:"sort,omitempty"`
}

// Expect lists what a step must produce. Unset fields are not checked.
type Expect struct {
	// IDs are the expected record ids in result order.
	IDs []string `yaml:"ids,omitempty"`

	// AnyOrder compares IDs as a set.
	AnyOrder bool `yaml:"any_order,omitempty"`

	// Count is the expected scalar of a count step, or the number of
	// records returned.
	Count *int64 `yaml:"count,omitempty"`

	// Total is the expected page total.
	Total *int64 `yaml:"total,omitempty"`

	// Empty expects no records (or a nil single result).
	Empty bool `yaml:"empty,omitempty"`

	// First is a subset match on the first record, keyed by column.
	First map[string]any `yaml:"first,omitempty"`

	// Error is the expected engine error code, e.g. UNKNOWN_PROPERTY.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads a scenario file, rejecting unknown fields, and
// resolves its schema directory relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if sc.Schema != "" && !filepath.IsAbs(sc.Schema) {
		sc.Schema = filepath.Join(filepath.Dir(path), sc.Schema)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); err != nil {
		return fmt.Errorf("schema directory not found: %s", s.Schema)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Entity == "" {
			return fmt.Errorf("steps[%d]: entity is required", i)
		}
		if step.Op != "" {
			if step.Where != nil || step.Page != nil || step.Sort != "" || step.Count {
				return fmt.Errorf("steps[%d]: op cannot be combined with where, page, sort or count", i)
			}
		} else if len(step.Args) > 0 {
			return fmt.Errorf("steps[%d]: args require op", i)
		}
		if step.Page != nil && step.Sort != "" {
			return fmt.Errorf("steps[%d]: page and sort are exclusive; put the sort in page", i)
		}
		if step.Count && (step.Page != nil || step.Sort != "") {
			return fmt.Errorf("steps[%d]: count cannot be paged or sorted", i)
		}
		if step.Where != nil {
			if err := step.Where.validate(); err != nil {
				return fmt.Errorf("steps[%d].where: %w", i, err)
			}
		}
	}
	return nil
}
