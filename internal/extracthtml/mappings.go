package extracthtml

import (
	"encoding/json"
	"fmt"
	"os"
)

// MappingFile describes the mappings.json file driving the commands.
//
// Exactly one of the two modes must be configured:
//   - record mode: ContainerSelector plus at least one field spec
//   - table mode: TableSelector
type MappingFile struct {
	ContainerSelector string            `json:"container_selector,omitempty"`
	Fields            map[string]string `json:"fields,omitempty"`
	TableSelector     string            `json:"table_selector,omitempty"`
}

// LoadMappingFile loads and validates a JSON mapping file.
func LoadMappingFile(path string) (*MappingFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mappings file: %w", err)
	}

	var mf MappingFile
	if err := json.Unmarshal(b, &mf); err != nil {
		return nil, fmt.Errorf("parse mappings json: %w", err)
	}

	switch {
	case mf.TableSelector != "" && mf.ContainerSelector != "":
		return nil, fmt.Errorf("mappings.json sets both table_selector and container_selector")
	case mf.TableSelector != "":
		return &mf, nil
	case mf.ContainerSelector == "":
		return nil, fmt.Errorf("mappings.json has no container_selector")
	case len(mf.Fields) == 0:
		return nil, fmt.Errorf("mappings.json has no fields")
	}
	return &mf, nil
}
