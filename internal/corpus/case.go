// Package corpus loads labelled transcript cases and scores pipeline output
// against them.
package corpus

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/intake-cli/internal/model"
)

// Case is one labelled transcript.
type Case struct {
	ID           string   `json:"id" yaml:"id"`
	Transcript   string   `json:"transcript" yaml:"transcript"`
	CategoryHint string   `json:"category_hint,omitempty" yaml:"category_hint,omitempty"`
	Expected     Expected `json:"expected" yaml:"expected"`
}

// Input converts the case to a pipeline input.
func (c Case) Input() model.Input {
	return model.Input{Transcript: c.Transcript, CategoryHint: c.CategoryHint, CaseID: c.ID}
}

// Want is an expected field value. Unset fields are not scored; a set field
// with a nil Value expects no value.
type Want[T any] struct {
	Set   bool
	Value *T
}

func want[T any](v T) Want[T] { return Want[T]{Set: true, Value: &v} }

func wantNull[T any]() Want[T] { return Want[T]{Set: true} }

// Expected holds the labelled output fields. Keys follow the output contract.
type Expected struct {
	Name       Want[string]
	Category   Want[model.Category]
	GoalAmount Want[int64]
	Urgency    Want[model.UrgencyLevel]
}

const (
	keyName     = "name"
	keyCategory = "category"
	keyAmount   = "goalAmount"
	keyUrgency  = "urgencyLevel"
)

// nullCell reports whether a spreadsheet cell expects an absent value.
func nullCell(s string) bool {
	switch strings.ToLower(s) {
	case "null", "none", "nil", "-":
		return true
	}
	return false
}

// setCell parses a spreadsheet cell into the named field. Blank cells leave
// the field unscored.
func (e *Expected) setCell(key, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if nullCell(raw) {
		switch key {
		case keyName:
			e.Name = wantNull[string]()
		case keyCategory:
			e.Category = wantNull[model.Category]()
		case keyAmount:
			e.GoalAmount = wantNull[int64]()
		case keyUrgency:
			return eris.New("corpus: urgencyLevel cannot be null")
		}
		return nil
	}

	switch key {
	case keyName:
		e.Name = want(raw)
	case keyCategory:
		c, ok := model.ParseCategory(raw)
		if !ok {
			return eris.Errorf("corpus: unknown category %q", raw)
		}
		e.Category = want(c)
	case keyAmount:
		clean := strings.NewReplacer("$", "", ",", "").Replace(raw)
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return eris.Wrapf(err, "corpus: parse goalAmount %q", raw)
		}
		e.GoalAmount = want(int64(v))
	case keyUrgency:
		u, ok := model.ParseUrgency(raw)
		if !ok {
			return eris.Errorf("corpus: unknown urgency level %q", raw)
		}
		e.Urgency = want(u)
	}
	return nil
}

// UnmarshalJSON records which keys are present so that an explicit null
// expects an absent value.
func (e *Expected) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "corpus: decode expected")
	}
	for key, msg := range raw {
		if string(msg) == "null" {
			if err := e.setCell(key, "null"); err != nil {
				return err
			}
			continue
		}
		var text string
		if key == keyAmount {
			var n json.Number
			if err := json.Unmarshal(msg, &n); err != nil {
				return eris.Wrapf(err, "corpus: decode %s", key)
			}
			text = n.String()
		} else if err := json.Unmarshal(msg, &text); err != nil {
			return eris.Wrapf(err, "corpus: decode %s", key)
		}
		if err := e.setCell(key, text); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON writes only the scored fields.
func (e Expected) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 4)
	if e.Name.Set {
		out[keyName] = e.Name.Value
	}
	if e.Category.Set {
		out[keyCategory] = e.Category.Value
	}
	if e.GoalAmount.Set {
		out[keyAmount] = e.GoalAmount.Value
	}
	if e.Urgency.Set {
		out[keyUrgency] = e.Urgency.Value
	}
	return json.Marshal(out)
}

// UnmarshalYAML mirrors UnmarshalJSON: a key with a null value expects an
// absent value.
func (e *Expected) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return eris.Errorf("corpus: expected must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		text := val.Value
		if val.Tag == "!!null" {
			text = "null"
		}
		if err := e.setCell(key, text); err != nil {
			return eris.Wrapf(err, "corpus: line %d", val.Line)
		}
	}
	return nil
}
