package correction

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RulesFile is the on-disk form of a stage list.
type RulesFile struct {
	Stages []Stage `yaml:"stages"`
}

// LoadStages reads and validates stages from a YAML file.
func LoadStages(path string) ([]Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "correction: read rules %s", path)
	}
	return ParseStages(data)
}

// ParseStages decodes and validates YAML stages.
func ParseStages(data []byte) ([]Stage, error) {
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "correction: parse rules")
	}
	if len(f.Stages) == 0 {
		return nil, eris.New("correction: rules file has no stages")
	}
	seen := make(map[string]bool, len(f.Stages))
	for i := range f.Stages {
		if err := f.Stages[i].Compile(); err != nil {
			return nil, err
		}
		if seen[f.Stages[i].ID] {
			return nil, eris.Errorf("correction: duplicate stage id %q", f.Stages[i].ID)
		}
		seen[f.Stages[i].ID] = true
	}
	return f.Stages, nil
}

// MarshalStages encodes stages as a rules file.
func MarshalStages(stages []Stage) ([]byte, error) {
	data, err := yaml.Marshal(RulesFile{Stages: stages})
	if err != nil {
		return nil, eris.Wrap(err, "correction: marshal rules")
	}
	return data, nil
}
