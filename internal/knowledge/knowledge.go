// Package knowledge ships the example commands shown in hints and --examples.
package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed examples.json
var examplesJSON []byte

type Example struct {
	Command  string `json:"command"`
	Intent   string `json:"intent"`
	Category string `json:"category"`
}

func Examples() ([]Example, error) {
	if len(examplesJSON) == 0 {
		return nil, fmt.Errorf("example catalog is empty")
	}
	var payload struct {
		Examples []Example `json:"examples"`
	}
	if err := json.Unmarshal(examplesJSON, &payload); err != nil {
		return nil, fmt.Errorf("could not parse example catalog: %w", err)
	}
	return payload.Examples, nil
}

// Commands returns just the example command texts, in catalog order.
func Commands() []string {
	examples, err := Examples()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(examples))
	for _, example := range examples {
		out = append(out, example.Command)
	}
	return out
}
