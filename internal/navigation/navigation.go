// Package navigation builds the outline tree that accompanies a token stream.
package navigation

import (
	"errors"
	"fmt"
)

// TagKind is the outline icon category of a node.
type TagKind string

const (
	Class     TagKind = "class"
	Enum      TagKind = "enum"
	Method    TagKind = "method"
	Namespace TagKind = "namespace"
	Assembly  TagKind = "assembly"
)

// ErrDuplicateID is returned when a navigation id is registered twice.
var ErrDuplicateID = errors.New("duplicate navigation id")

type Tag struct {
	TypeKind TagKind `json:"TypeKind"`
}

// Node is one entry of the outline. ChildItems is never nil so it encodes
// as an empty array.
type Node struct {
	Text         string  `json:"Text"`
	NavigationID *string `json:"NavigationId"`
	Tags         *Tag    `json:"Tags"`
	ChildItems   []*Node `json:"ChildItems"`
}

// ID returns the node's navigation id or "" when it has none.
func (n *Node) ID() string {
	if n == nil || n.NavigationID == nil {
		return ""
	}
	return *n.NavigationID
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.ChildItems = append(n.ChildItems, c)
		}
	}
	return n
}

// Walk visits n and its descendants depth first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.ChildItems {
		Walk(c, fn)
	}
}

// IDs counts every navigation id in the trees.
func IDs(roots []*Node) map[string]int {
	out := make(map[string]int)
	for _, r := range roots {
		Walk(r, func(n *Node) bool {
			if n.NavigationID != nil {
				out[*n.NavigationID]++
			}
			return true
		})
	}
	return out
}

// Builder creates nodes and keeps their ids unique within one document.
type Builder struct {
	seen map[string]struct{}
}

func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// Node creates a tagged node with the given label and id.
func (b *Builder) Node(text, id string, kind TagKind) (*Node, error) {
	if _, dup := b.seen[id]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	b.seen[id] = struct{}{}
	return &Node{
		Text:         text,
		NavigationID: &id,
		Tags:         &Tag{TypeKind: kind},
		ChildItems:   []*Node{},
	}, nil
}
