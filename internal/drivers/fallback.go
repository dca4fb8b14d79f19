package drivers

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

// Fallback returns the built-in driver set.
func Fallback() []Driver {
	ds, err := ParseYAML(fallbackYAML)
	if err != nil {
		panic(fmt.Sprintf("drivers: embedded fallback: %v", err))
	}
	return ds
}

// ParseYAML decodes a YAML list of drivers.
func ParseYAML(data []byte) ([]Driver, error) {
	var ds []Driver
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing drivers yaml: %w", err)
	}
	return ds, nil
}
