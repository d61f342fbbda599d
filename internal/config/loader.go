package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LocalFileName is the default name of the project-local config file.
const LocalFileName = "envset.yaml"

// GlobalFileName is the name of the per-machine config file inside the global directory.
const GlobalFileName = "config.yaml"

// FindLocal walks up from startDir to find a file called name.
// It returns the absolute path of the file.
func FindLocal(startDir, name string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", fmt.Errorf("%w: no %s in %s or any parent directory", ErrLocalNotFound, name, startDir)
		}
		dir = parent
	}
}

// readYAML decodes file into v, rejecting unknown fields.
func readYAML(file string, v any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return nil
}

// writeYAML encodes v and replaces file with the result.
func writeYAML(file string, v any, mode fs.FileMode) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", file, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode %s: %w", file, err)
	}

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf("%s.%s.tmp", filepath.Base(file), uuid.NewString()))
	if err := os.WriteFile(tmp, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, file); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

func requireAbs(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %s", ErrRelativePath, path)
	}
	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// decodeMapping calls fn for each key/value pair of a mapping node in order.
func decodeMapping(node *yaml.Node, what string, fn func(key string, value *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %s must be a mapping", node.Line, what)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if seen[key] {
			return fmt.Errorf("line %d: duplicate %s entry %q", node.Content[i].Line, what, key)
		}
		seen[key] = true
		if err := fn(key, node.Content[i+1]); err != nil {
			return fmt.Errorf("%s %q: %w", what, key, err)
		}
	}
	return nil
}

// encodeMapping builds a mapping node from items in order.
func encodeMapping[T any](items []T, key func(T) string) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, item := range items {
		value := &yaml.Node{}
		if err := value.Encode(item); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key(item)},
			value,
		)
	}
	return node, nil
}
