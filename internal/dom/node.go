package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsText reports whether n is a text run
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsElement reports whether n is an element
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsBlank reports whether n is a whitespace-only text run
func IsBlank(n *html.Node) bool {
	return IsText(n) && strings.TrimSpace(n.Data) == ""
}

// Tag returns the lower-case tag name of an element, "" for anything else
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return n.Data
}

// NewElement creates a detached element
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     append([]html.Attribute(nil), attrs...),
	}
}

// NewText creates a detached text run
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// ShallowClone copies a node without its children or tree links
func ShallowClone(n *html.Node) *html.Node {
	return &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
}

// DeepClone copies a node and its subtree; visit is called with every
// (original, copy) pair when non-nil
func DeepClone(n *html.Node, visit func(orig, clone *html.Node)) *html.Node {
	c := ShallowClone(n)
	if visit != nil {
		visit(n, c)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(DeepClone(child, visit))
	}
	return c
}

// Children returns the children of n as a slice
func Children(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children
}

// ChildCount returns the number of children of n
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// ChildAt finds the Nth child of a node.
// Note: html.Node's children are a linked list (FirstChild, NextSibling).
func ChildAt(parent *html.Node, index int) *html.Node {
	if index < 0 {
		return nil
	}
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if count == index {
			return c
		}
		count++
	}
	return nil
}

// ChildIndex returns the index of child within parent, -1 when it is not a child
func ChildIndex(parent, child *html.Node) int {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c == child {
			return count
		}
		count++
	}
	return -1
}

// Index returns the index of n within its parent
func Index(n *html.Node) int {
	if n.Parent == nil {
		return -1
	}
	return ChildIndex(n.Parent, n)
}

// InsertAt inserts a detached child at index, appending when index is past the end
func InsertAt(parent, child *html.Node, index int) {
	ref := ChildAt(parent, index)
	parent.InsertBefore(child, ref)
}

// InsertAfter inserts a detached node right after ref
func InsertAfter(ref, n *html.Node) {
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Detach removes n from its parent if it has one
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceWith puts replacement where old was and detaches old
func ReplaceWith(old, replacement *html.Node) {
	old.Parent.InsertBefore(replacement, old)
	old.Parent.RemoveChild(old)
}

// MoveChildren moves every child of from into to, in front of ref (or at the
// end when ref is nil)
func MoveChildren(from, to, ref *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.InsertBefore(c, ref)
		c = next
	}
}

// RemoveChildren detaches every child of n
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Contains reports whether n is ancestor or a descendant of it
func Contains(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Ancestors returns the elements between n (exclusive) and boundary
// (exclusive), nearest first
func Ancestors(n, boundary *html.Node) []*html.Node {
	var out []*html.Node
	for p := n.Parent; p != nil && p != boundary; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// NextElement returns the next sibling skipping whitespace-only text
func NextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if !IsBlank(s) && s.Type != html.CommentNode {
			return s
		}
	}
	return nil
}

// PrevElement returns the previous sibling skipping whitespace-only text
func PrevElement(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if !IsBlank(s) && s.Type != html.CommentNode {
			return s
		}
	}
	return nil
}

// TextContent returns the concatenated text of n and its descendants
func TextContent(n *html.Node) string {
	if IsText(n) {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(TextContent(c))
	}
	return sb.String()
}

// GetAttr returns the value of an attribute and whether it is present
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, adding it if not found
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes an attribute if present
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
