package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveRegistries replaces the registries section of the config file.
// Comments and formatting in other sections are preserved by editing the yaml.Node tree.
func SaveRegistries(configPath string, regs []RegistryConfig) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	regsNode, err := buildRegistriesNode(regs)
	if err != nil {
		return fmt.Errorf("building registries node: %w", err)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: "registries"},
						regsNode,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return fmt.Errorf("parsing config: top level is not a mapping")
		}
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == "registries" {
				root.Content[i+1] = regsNode
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "registries"},
				regsNode,
			)
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// AddRegistry appends reg to existing and saves the result.
func AddRegistry(configPath string, reg RegistryConfig, existing []RegistryConfig) error {
	regs := make([]RegistryConfig, 0, len(existing)+1)
	regs = append(regs, existing...)
	regs = append(regs, reg)
	if err := ValidateRegistries(regs); err != nil {
		return err
	}
	return SaveRegistries(configPath, regs)
}

// RemoveRegistry drops the registry called name and saves the result.
func RemoveRegistry(configPath string, name string, existing []RegistryConfig) error {
	regs := make([]RegistryConfig, 0, len(existing))
	for _, r := range existing {
		if r.Name != name {
			regs = append(regs, r)
		}
	}
	if len(regs) == len(existing) {
		return fmt.Errorf("registry %q is not configured", name)
	}
	return SaveRegistries(configPath, regs)
}

func buildRegistriesNode(regs []RegistryConfig) (*yaml.Node, error) {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Content: make([]*yaml.Node, 0, len(regs)),
	}
	for _, r := range regs {
		var entry yaml.Node
		if err := entry.Encode(r); err != nil {
			return nil, fmt.Errorf("registry %s: %w", r.Name, err)
		}
		node.Content = append(node.Content, &entry)
	}
	return node, nil
}

// writeAtomic writes to a temp file in the same directory, then renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".acquire.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
