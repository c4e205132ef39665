// README: YAML encoding of rate tables, used to hand the active table to external validators.
package pricing

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MarshalRateTable encodes rt as YAML.
func MarshalRateTable(rt *RateTable) ([]byte, error) {
	out, err := yaml.Marshal(rt)
	if err != nil {
		return nil, fmt.Errorf("encoding rate table %s: %w", rt.Version, err)
	}
	return out, nil
}

// ParseRateTable decodes a YAML (or JSON) table and validates it. Unknown
// keys are rejected so a typo cannot silently zero a rate.
func ParseRateTable(data []byte) (*RateTable, error) {
	var rt RateTable
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rt); err != nil {
		return nil, fmt.Errorf("decoding rate table: %w", err)
	}
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	return &rt, nil
}

// LoadRateTable reads a table file, or returns the compiled-in table when
// path is empty.
func LoadRateTable(path string) (*RateTable, error) {
	if path == "" {
		return DefaultRateTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rate table: %w", err)
	}
	return ParseRateTable(data)
}
