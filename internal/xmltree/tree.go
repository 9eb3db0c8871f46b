// Package xmltree provides a minimal mutable element tree for the small,
// fixed-shape XML documents sigbridge works with (rule exports, alarm
// exports, embedded rulesets).
//
// The tree keeps element names, attributes, direct character data, and child
// elements. Comments and processing instructions are dropped on parse; CDATA
// sections come back as ordinary character data. That is sufficient for
// template merging and round-trip checks, where only element structure and
// text matter.
package xmltree

import "strings"

// Attr is a single name/value attribute pair. Order is preserved.
type Attr struct {
	Name  string
	Value string
}

// Node is one element in the tree.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string // character data directly under this element
	CDATA    bool   // emit Text as a CDATA section instead of escaping it
	Children []*Node
}

// Attr returns the value of the named attribute and whether it exists.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, replacing an existing value or
// appending a new attribute.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Find walks the given child-element path and returns the first match,
// or nil if any segment is missing. Find() with no path returns n.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, name := range path {
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// FindAll returns all direct children with the given element name.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Descendants returns every node in the subtree (excluding n itself)
// with the given element name, in document order.
func (n *Node) Descendants(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
		out = append(out, c.Descendants(name)...)
	}
	return out
}

// TextOf returns the trimmed text at the given child path, or "" if the
// path does not exist.
func (n *Node) TextOf(path ...string) string {
	found := n.Find(path...)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text)
}

// SetText replaces the character data of the node at the given child path.
// Missing intermediate elements are created.
func (n *Node) SetText(text string, path ...string) {
	cur := n
	for _, name := range path {
		next := cur.Find(name)
		if next == nil {
			next = &Node{Name: name}
			cur.Children = append(cur.Children, next)
		}
		cur = next
	}
	cur.Text = text
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	out := &Node{
		Name:  n.Name,
		Text:  n.Text,
		CDATA: n.CDATA,
	}
	if len(n.Attrs) > 0 {
		out.Attrs = make([]Attr, len(n.Attrs))
		copy(out.Attrs, n.Attrs)
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}
