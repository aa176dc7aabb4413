package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// manifest mirrors the YAML build manifest consumed by Load.
type manifest struct {
	Tasks []manifestTask `yaml:"tasks"`
}

type manifestTask struct {
	Path      string         `yaml:"path"`
	Type      string         `yaml:"type"`
	DependsOn []string       `yaml:"depends_on,omitempty"`
	Inputs    map[string]any `yaml:"inputs,omitempty"`
	Outputs   map[string]any `yaml:"outputs,omitempty"`
}

// Load reads a build manifest and configures a task graph from it.
// Manifest values are plain YAML scalars, sequences and mappings;
// richer property values (beans, custom writers) are attached by the
// embedding build tool after configuration.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path) // #nosec G304 - manifest path comes from CLI/config
	if err != nil {
		return nil, fmt.Errorf("read build manifest: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	var m manifest
	if err := yaml.Unmarshal([]byte(expanded), &m); err != nil {
		return nil, fmt.Errorf("parse build manifest: %w", err)
	}
	if len(m.Tasks) == 0 {
		return nil, fmt.Errorf("build manifest %s declares no tasks", path)
	}

	g := NewGraph()
	for _, mt := range m.Tasks {
		if mt.Type == "" {
			mt.Type = "Task"
		}
		task := &Task{Path: mt.Path, Type: mt.Type, DependsOn: mt.DependsOn}
		for _, name := range sortedKeys(mt.Inputs) {
			task.Properties = append(task.Properties, Property{Name: name, Kind: Input, Value: mt.Inputs[name]})
		}
		for _, name := range sortedKeys(mt.Outputs) {
			task.Properties = append(task.Properties, Property{Name: name, Kind: Output, Value: mt.Outputs[name]})
		}
		if err := g.Add(task); err != nil {
			return nil, fmt.Errorf("build manifest %s: %w", path, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("build manifest %s: %w", path, err)
	}
	return g, nil
}
