// Package display provides the display-list tree the event core propagates
// over. Nodes form a plain parent/child hierarchy; the parent link is a
// back-reference used for path computation and never an ownership edge, so a
// node's lifetime is independent of where it sits in a tree.
package display

import (
	"github.com/embervm/ember/events"
	"github.com/pkg/errors"
)

// Kind distinguishes the node classes of the display list.
type Kind int

const (
	// KindObject is a generic container node.
	KindObject Kind = iota
	// KindVideo is the video leaf class.
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindVideo:
		return "video"
	}
	return "unknown"
}

// Object is a node in the display list. All node classes share this struct;
// kind-specific data hangs off optional fields, and only one is set per
// node.
type Object struct {
	kind     Kind
	name     string
	parent   *Object
	children []*Object

	videoData *videoData
}

// NewObject creates a generic, detached display node.
func NewObject(name string) *Object {
	return &Object{kind: KindObject, name: name}
}

// Kind returns the node's class.
func (o *Object) Kind() Kind { return o.kind }

// Name returns the node's name.
func (o *Object) Name() string { return o.name }

// Parent returns the node's parent, or nil for a detached or root node.
func (o *Object) Parent() *Object { return o.parent }

// ParentTarget implements events.Target.
func (o *Object) ParentTarget() events.Target {
	if o.parent == nil {
		return nil
	}
	return o.parent
}

// Children returns a copy of the node's children in order.
func (o *Object) Children() []*Object {
	if len(o.children) == 0 {
		return nil
	}
	out := make([]*Object, len(o.children))
	copy(out, o.children)
	return out
}

// NumChildren returns the number of children.
func (o *Object) NumChildren() int { return len(o.children) }

// AddChild appends c to this node's children, removing it from its current
// parent first. Adding a node to itself or to one of its own descendants is
// rejected.
func (o *Object) AddChild(c *Object) error {
	if c == nil {
		return errors.New("display: cannot add a nil child")
	}
	if c == o || c.Contains(o) {
		return errors.Errorf("display: adding %q under %q would create a cycle", c.name, o.name)
	}
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = o
	o.children = append(o.children, c)
	return nil
}

// RemoveChild detaches c from this node; a node that is not a child is a
// no-op.
func (o *Object) RemoveChild(c *Object) {
	if c == nil || c.parent != o {
		return
	}
	for i, have := range o.children {
		if have == c {
			o.children = append(o.children[:i], o.children[i+1:]...)
			break
		}
	}
	c.parent = nil
}

// Contains reports whether n is this node or one of its descendants.
func (o *Object) Contains(n *Object) bool {
	for ; n != nil; n = n.parent {
		if n == o {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor, which is the node itself when detached.
func (o *Object) Root() *Object {
	n := o
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// GetChildByName returns the first direct child with the given name, or nil.
func (o *Object) GetChildByName(name string) *Object {
	for _, c := range o.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Find returns the first node in a depth-first walk of this subtree,
// including the node itself, whose name matches; nil when absent.
func (o *Object) Find(name string) *Object {
	if o.name == name {
		return o
	}
	for _, c := range o.children {
		if n := c.Find(name); n != nil {
			return n
		}
	}
	return nil
}
