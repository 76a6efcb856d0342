package cascade

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Definition describes the form's cascade steps.
type Definition struct {
	Steps []StepDefinition `yaml:"steps"`
}

// StepDefinition configures one step. Values is the ranking order, or the
// offered set when Fixed is true.
type StepDefinition struct {
	Field      string   `yaml:"field"`
	Values     []string `yaml:"values,omitempty"`
	Fixed      bool     `yaml:"fixed,omitempty"`
	AllowOther bool     `yaml:"allow_other,omitempty"`
}

// DefaultDefinition returns the standard commercial form: free-text types,
// products ranked by search depth and the two fulfilment channels.
func DefaultDefinition() *Definition {
	return &Definition{
		Steps: []StepDefinition{
			{Field: string(FieldType), AllowOther: true},
			{Field: string(FieldProduct), Values: []string{
				"Update Search",
				"Current Owner Search",
				"Two Owner Search",
				"Full 30 YR Search",
				"Full 40 YR Search",
				"Full 50 YR Search",
				"Full 60 YR Search",
				"Full 80 YR Search",
				"Full 100 YR Search",
			}},
			{Field: string(FieldChannel), Values: []string{"Online", "Ground"}},
		},
	}
}

// LoadDefinition reads a form definition from a YAML file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cascade: read definition %s", path)
	}

	// The YAML has a top-level "cascade" key
	var wrapper struct {
		Cascade Definition `yaml:"cascade"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "cascade: parse definition")
	}
	return &wrapper.Cascade, nil
}

// Build converts the definition into a Cascade.
func (d *Definition) Build() (*Cascade, error) {
	steps := make([]Step, 0, len(d.Steps))
	for _, sd := range d.Steps {
		s := Step{Field: Field(sd.Field), AllowOther: sd.AllowOther}
		switch {
		case sd.Fixed:
			if len(sd.Values) == 0 {
				return nil, eris.Errorf("cascade: fixed step %q has no values", sd.Field)
			}
			s.Fixed = sd.Values
		case len(sd.Values) > 0:
			s.Rank = make(map[string]int, len(sd.Values))
			for i, v := range sd.Values {
				if _, dup := s.Rank[v]; !dup {
					s.Rank[v] = i
				}
			}
		}
		steps = append(steps, s)
	}
	return New(steps...)
}

// FromDefinition builds the cascade from the YAML file at path, or the
// default definition when path is empty.
func FromDefinition(path string) (*Cascade, error) {
	def := DefaultDefinition()
	if path != "" {
		var err error
		if def, err = LoadDefinition(path); err != nil {
			return nil, err
		}
	}
	return def.Build()
}
