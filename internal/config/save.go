package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mibstore/internal/log"
)

// Head comments attached to top-level sections of the default config.
var sectionComments = map[string]string{
	"registry": "# Container types are chosen by colon separated preference lists;\n" +
		"# the first registered name wins. Built-in types: binary_array,\n" +
		"# sorted_singly_linked_list, fifo, lifo, null. Built-in aliases:\n" +
		"# table_container, linked_list, ssll_container.",
	"storage": "# Expression table storage. conf_path is the target of expr:export.",
	"log":     "# File logging. level: debug, info, warn or error.",
	"tracing": "# OpenTelemetry tracing. exporter: none, file, stdout or otlp.",
	"metrics": "# Listen address of the agent's HTTP endpoint.",
}

// DefaultConfigNode renders Defaults() as a commented YAML document.
func DefaultConfigNode() (*yaml.Node, error) {
	var root yaml.Node
	if err := root.Encode(Defaults()); err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if c, ok := sectionComments[root.Content[i].Value]; ok {
			root.Content[i].HeadComment = c
		}
	}
	return &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "# mibstore configuration",
		Content:     []*yaml.Node{&root},
	}, nil
}

// WriteDefaultConfig creates a config file at configPath holding the
// defaults with comments. The parent directory is created if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	doc, err := DefaultConfigNode()
	if err != nil {
		return err
	}
	if err := writeNode(configPath, doc); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return err
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// SaveAliases replaces registry.aliases in the config file, keeping every
// other section and its comments as they are.
func SaveAliases(configPath string, aliases map[string]string) error {
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
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	var aliasesNode yaml.Node
	if err := aliasesNode.Encode(aliases); err != nil {
		return fmt.Errorf("encoding aliases: %w", err)
	}

	registry := mappingValue(root, "registry")
	setMappingValue(registry, "aliases", &aliasesNode)

	if err := writeNode(configPath, &doc); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved registry aliases", "path", configPath, "count", len(aliases))
	return nil
}

// mappingValue returns the mapping stored under key in m, creating it when
// absent or not a mapping.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			v := m.Content[i+1]
			if v.Kind != yaml.MappingNode {
				v = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
				m.Content[i+1] = v
			}
			return v
		}
	}
	v := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	setMappingValue(m, key, v)
	return v
}

func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

// writeNode encodes doc and writes it atomically (temp file, then rename).
func writeNode(configPath string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".mibstore.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
