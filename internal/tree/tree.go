// Package tree holds the decision tree content: questions, their options and
// the node each option leads to. Trees are immutable once loaded.
package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTree is returned when a tree fails structural validation.
var ErrInvalidTree = errors.New("invalid tree")

// Question is the prompt shown for a node.
type Question struct {
	Label string `yaml:"label"`
}

// Option is one answer to a node's question. A nil Next marks a leaf.
type Option struct {
	Label string `yaml:"label"`
	Name  string `yaml:"name,omitempty"`
	Next  *Node  `yaml:"next,omitempty"`
}

// Leaf reports whether choosing this option ends the walk.
func (o Option) Leaf() bool {
	return o.Next == nil
}

// Node is a question with its ordered options.
type Node struct {
	Question Question `yaml:"question"`
	Options  []Option `yaml:"options"`
}

// Parse decodes a YAML tree and validates it.
func Parse(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("tree: %w: empty document", ErrInvalidTree)
	}

	var root Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("tree: %w: empty document", ErrInvalidTree)
		}
		return nil, fmt.Errorf("tree: parsing: %w", err)
	}

	if err := Validate(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// LoadFile reads and parses a tree from a file on disk.
func LoadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tree: reading %s: %w", path, err)
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// LoadFS reads and parses a tree from name within fsys.
func LoadFS(fsys fs.FS, name string) (*Node, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("tree: reading %s: %w", name, err)
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return root, nil
}

// Validate checks that every node has a question label and at least one
// option, and that every option has a label. The first problem found is
// reported with a dotted path such as "options[1].next.options[0]".
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("tree: %w: nil root", ErrInvalidTree)
	}
	return validateNode(root, "root")
}

func validateNode(n *Node, path string) error {
	if strings.TrimSpace(n.Question.Label) == "" {
		return fmt.Errorf("tree: %w: %s: question label is empty", ErrInvalidTree, path)
	}
	if len(n.Options) == 0 {
		return fmt.Errorf("tree: %w: %s: node has no options", ErrInvalidTree, path)
	}
	for i, opt := range n.Options {
		optPath := fmt.Sprintf("%s.options[%d]", path, i)
		if strings.TrimSpace(opt.Label) == "" {
			return fmt.Errorf("tree: %w: %s: option label is empty", ErrInvalidTree, optPath)
		}
		if opt.Next != nil {
			if err := validateNode(opt.Next, optPath+".next"); err != nil {
				return err
			}
		}
	}
	return nil
}
