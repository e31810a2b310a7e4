package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/arenabot/internal/core/bt"
)

// Config describes a tree as named nodes in JSON or YAML.
//
//	root: main
//	nodes:
//	  main:    {type: Selector, children: [kickoff, defend]}
//	  kickoff: {type: Guard, name: GuardIsKickoff}
//	  defend:  {type: Task, name: TaskGoTowardsPoint, args: [my_goal_box]}
type Config struct {
	Root  string                `json:"root" yaml:"root"`
	Nodes map[string]ConfigNode `json:"nodes" yaml:"nodes"`
}

type ConfigNode struct {
	// Type is Selector, Sequencer, Invert, Guard or Task.
	Type     string   `json:"type" yaml:"type"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
	Child    string   `json:"child,omitempty" yaml:"child,omitempty"`
	Args     []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// LoadJSON loads config from JSON reader.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadYAML loads config from YAML reader.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Build constructs the tree. Every node may be referenced once; a node used
// under two parents or inside its own subtree is an error, and so is a node
// the root never reaches.
func (c *Config) Build(reg *Registry) (*bt.Tree, error) {
	if c.Root == "" {
		return nil, ErrEmptyInput
	}
	tree := bt.New()
	built := make(map[string]bool, len(c.Nodes))

	var buildNode func(name string) (bt.NodeID, error)
	buildNode = func(name string) (bt.NodeID, error) {
		if built[name] {
			return bt.NoNode, fmt.Errorf("node %s: %w", name, bt.ErrHasParent)
		}
		nc, ok := c.Nodes[name]
		if !ok {
			return bt.NoNode, fmt.Errorf("%w in config: %s", ErrUnknownNode, name)
		}
		built[name] = true

		kindName := nc.Type
		switch strings.ToLower(nc.Type) {
		case "selector":
			kindName = NameSelector
		case "sequencer", "sequence":
			kindName = NameSequencer
		case "invert":
			kindName = NameInvert
			if nc.Child != "" {
				nc.Children = append([]string{nc.Child}, nc.Children...)
			}
		case "guard", "task":
			kindName = nc.Name
			want := bt.KindGuard
			if strings.EqualFold(nc.Type, "task") {
				want = bt.KindTask
			}
			if got, ok := reg.Kind(nc.Name); ok && got != want {
				return bt.NoNode, fmt.Errorf("node %s: %w: %s is a %s", name, ErrUnknownNode, nc.Name, got)
			}
		default:
			return bt.NoNode, fmt.Errorf("node %s: %w: type %q", name, ErrUnknownNode, nc.Type)
		}

		label := strings.Join(append([]string{kindName}, nc.Args...), " ")
		id, err := addNode(tree, reg, kindName, nc.Args, label)
		if err != nil {
			return bt.NoNode, fmt.Errorf("node %s: %w", name, err)
		}
		for _, child := range nc.Children {
			cid, err := buildNode(child)
			if err != nil {
				return bt.NoNode, err
			}
			if err := tree.Attach(id, cid); err != nil {
				return bt.NoNode, fmt.Errorf("node %s: %w", name, err)
			}
		}
		return id, nil
	}

	root, err := buildNode(c.Root)
	if err != nil {
		return nil, err
	}
	if len(built) != len(c.Nodes) {
		var unused []string
		for name := range c.Nodes {
			if !built[name] {
				unused = append(unused, name)
			}
		}
		slices.Sort(unused)
		return nil, fmt.Errorf("%w: %s", ErrUnusedNode, strings.Join(unused, ", "))
	}
	if err := tree.SetRoot(root); err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

// Load reads a tree from data, picking the format from the file extension:
// .yaml/.yml and .json are configs, anything else is the text format.
func Load(name string, data []byte, reg *Registry) (*bt.Tree, error) {
	var (
		c   *Config
		err error
	)
	switch formatOf(name) {
	case "yaml":
		c, err = LoadYAML(bytes.NewReader(data))
	case "json":
		c, err = LoadJSON(bytes.NewReader(data))
	default:
		return ParseText(bytes.NewReader(data), reg)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return c.Build(reg)
}

func formatOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "text"
	}
}

// LoadFile reads and builds the tree stored at path.
func LoadFile(path string, reg *Registry) (*bt.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(path, data, reg)
}
