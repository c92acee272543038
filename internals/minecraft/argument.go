package minecraft

import (
	"encoding/json"
	"errors"
)

// ErrUnsupportedType is returned if an argument value is neither a
// string nor an array of strings
var ErrUnsupportedType = errors.New("unsupported type")

// StrArray unmarshals both a plain JSON string and an array of strings
type StrArray []string

func (sa *StrArray) UnmarshalJSON(data []byte) error {
	var jsonObj interface{}
	if err := json.Unmarshal(data, &jsonObj); err != nil {
		return err
	}
	switch obj := jsonObj.(type) {
	case string:
		*sa = StrArray([]string{obj})
		return nil
	case []interface{}:
		s := make([]string, 0, len(obj))
		for _, v := range obj {
			value, ok := v.(string)
			if !ok {
				return ErrUnsupportedType
			}
			s = append(s, value)
		}
		*sa = StrArray(s)
		return nil
	}
	return ErrUnsupportedType
}

func (sa StrArray) MarshalJSON() ([]byte, error) {
	if len(sa) == 1 {
		return json.Marshal(sa[0])
	}
	return json.Marshal([]string(sa))
}

// Argument is one launch argument template. Descriptors mix plain
// strings with rule guarded objects, both decode into this.
type Argument struct {
	// Value holds the template strings, with ${name} placeholders
	Value StrArray `json:"value"`
	// Rules guard feature or platform conditional arguments
	Rules []Rule `json:"rules,omitempty"`
}

func (a *Argument) UnmarshalJSON(data []byte) error {
	// plain string form
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Value = StrArray{s}
		a.Rules = nil
		return nil
	}

	// object form, alias to avoid recursion
	type argument Argument
	parsed := argument{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*a = Argument(parsed)
	return nil
}

func (a Argument) MarshalJSON() ([]byte, error) {
	if len(a.Rules) == 0 && len(a.Value) == 1 {
		return json.Marshal(a.Value[0])
	}
	type argument Argument
	return json.Marshal(argument(a))
}
