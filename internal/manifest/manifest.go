// Package manifest loads the YAML list of nodes the daemon watches. Each
// node names the location of its exit relic and the fallback template used to
// regenerate it.
package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"reliquary/internal/fileutil"
	"reliquary/internal/resurrection"
	"reliquary/internal/services"
)

// Node is one watched node.
type Node struct {
	resurrection.Template `yaml:",inline"`
	RelicPath             string `yaml:"relic_path"`
}

// Manifest is the parsed node list.
type Manifest struct {
	Path  string `yaml:"-"`
	Nodes []Node `yaml:"nodes"`
}

// Load parses the manifest at path. Relative relic paths resolve against the
// manifest's directory. A missing manifest is ErrNotFound, malformed YAML is
// ErrCorruption, and incomplete entries are ErrInvalid.
func Load(path string) (*Manifest, error) {
	data, state, err := fileutil.ReadFile(path)
	switch state {
	case fileutil.Absent:
		return nil, services.Wrap(services.ErrNotFound, "manifest", "load", path, nil)
	case fileutil.Corrupt, fileutil.Fatal:
		return nil, err
	}
	m, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse decodes manifest YAML. baseDir anchors relative relic paths.
func Parse(data []byte, baseDir string) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, services.Wrap(services.ErrCorruption, "manifest", "parse", "decode yaml", err)
	}
	seen := make(map[string]int, len(m.Nodes))
	for i := range m.Nodes {
		n := &m.Nodes[i]
		n.Template = n.Template.Normalize()
		n.RelicPath = strings.TrimSpace(n.RelicPath)
		if err := n.Template.Validate(); err != nil {
			return nil, fmt.Errorf("node %d: %w", i+1, err)
		}
		if n.RelicPath == "" {
			return nil, services.Wrap(services.ErrInvalid, "manifest", "parse",
				fmt.Sprintf("node %s has no relic_path", n.NodeID), nil)
		}
		if prev, ok := seen[n.NodeID]; ok {
			return nil, services.Wrap(services.ErrInvalid, "manifest", "parse",
				fmt.Sprintf("node %s listed twice (entries %d and %d)", n.NodeID, prev, i+1), nil)
		}
		seen[n.NodeID] = i + 1
		if !filepath.IsAbs(n.RelicPath) && baseDir != "" {
			n.RelicPath = filepath.Join(baseDir, n.RelicPath)
		}
	}
	return &m, nil
}

// RelicPaths returns every node's relic location in manifest order.
func (m *Manifest) RelicPaths() []string {
	paths := make([]string, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		paths = append(paths, n.RelicPath)
	}
	return paths
}

// Lookup returns the node with id.
func (m *Manifest) Lookup(id string) (Node, bool) {
	for _, n := range m.Nodes {
		if n.NodeID == id {
			return n, true
		}
	}
	return Node{}, false
}
