// Package leaf models a document as an ordered sequence of leaves: text runs
// and void elements, each paired with the chain of elements that wrap it.
package leaf

import (
	"iter"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"rtedit/internal/dom"
	"rtedit/internal/schema"
)

// Leaf is a text run or void element plus its ancestor chain
type Leaf struct {
	// Node is the text run or void element itself
	Node *html.Node
	// Ancestors are the elements strictly between the boundary root and
	// Node, outermost first
	Ancestors []*html.Node
}

// IsVoid reports whether the leaf is a void element
func (l Leaf) IsVoid() bool {
	return schema.IsVoid(l.Node)
}

// Text returns the text of a text leaf, "" for void leaves
func (l Leaf) Text() string {
	if dom.IsText(l.Node) {
		return l.Node.Data
	}
	return ""
}

// Len returns the length the leaf occupies in the rendered sequence: the
// byte length of its text, or 1 for a void element
func (l Leaf) Len() int {
	if l.IsVoid() {
		return 1
	}
	return len(l.Text())
}

// Empty reports whether the leaf carries no visual information
func (l Leaf) Empty() bool {
	return !l.IsVoid() && l.Text() == ""
}

// Passes reports whether el is part of the leaf's chain
func (l Leaf) Passes(el *html.Node) bool {
	return slices.Contains(l.Ancestors, el)
}

// Tags returns the tag names of the chain, outermost first
func (l Leaf) Tags() []string {
	tags := make([]string, len(l.Ancestors))
	for i, a := range l.Ancestors {
		tags[i] = a.Data
	}
	return tags
}

func (l Leaf) String() string {
	var sb strings.Builder
	for _, a := range l.Ancestors {
		sb.WriteString(a.Data)
		sb.WriteString(">")
	}
	if l.IsVoid() {
		sb.WriteString("<" + l.Node.Data + ">")
	} else {
		sb.WriteString("\"" + l.Text() + "\"")
	}
	return sb.String()
}

// All yields the leaves below root in document order. The sequence is lazy
// and can be ranged over repeatedly. A subtree is only descended into when it
// holds non-empty text or a void element, so empty wrappers yield nothing.
func All(root *html.Node) iter.Seq[Leaf] {
	return func(yield func(Leaf) bool) {
		walk(root, root, yield)
	}
}

func walk(root, n *html.Node, yield func(Leaf) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case dom.IsText(c):
			if c.Data == "" {
				continue
			}
			if !yield(Leaf{Node: c, Ancestors: Chain(c, root)}) {
				return false
			}
		case schema.IsVoid(c):
			if !yield(Leaf{Node: c, Ancestors: Chain(c, root)}) {
				return false
			}
		case dom.IsElement(c):
			if !HasContent(c) {
				continue
			}
			if !walk(root, c, yield) {
				return false
			}
		}
	}
	return true
}

// Build collects every leaf below root
func Build(root *html.Node) []Leaf {
	return slices.Collect(All(root))
}

// HasContent reports whether n contains non-empty text or a void element
func HasContent(n *html.Node) bool {
	if dom.IsText(n) {
		return n.Data != ""
	}
	if schema.IsVoid(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if HasContent(c) {
			return true
		}
	}
	return false
}

// Chain collects the element ancestors strictly between n and boundary,
// outermost first
func Chain(n, boundary *html.Node) []*html.Node {
	chain := dom.Ancestors(n, boundary)
	slices.Reverse(chain)
	return chain
}

// Canonicalize returns the chain stable-sorted by descending tag priority.
// Structural elements (blocks, list items, list wrappers) keep their
// positions; only the inline runs between them are reordered. A collapsible
// inline tag repeated inside itself is dropped, keeping the outer one.
func Canonicalize(chain []*html.Node) []*html.Node {
	out := slices.Clone(chain)
	byPriority := func(a, b *html.Node) int {
		return schema.PriorityOf(b.Data) - schema.PriorityOf(a.Data)
	}
	start := 0
	for i := 0; i <= len(out); i++ {
		if i < len(out) && !schema.IsStructural(out[i]) {
			continue
		}
		if i-start > 1 {
			slices.SortStableFunc(out[start:i], byPriority)
		}
		start = i + 1
	}
	return slices.DeleteFunc(out, redundant())
}

// redundant reports chain entries that repeat an outer collapsible tag
func redundant() func(*html.Node) bool {
	seen := make(map[string]bool)
	return func(n *html.Node) bool {
		if schema.IsStructural(n) {
			clear(seen)
			return false
		}
		if schema.RolesOfNode(n).Any(schema.Void | schema.NotCollapsible) {
			return false
		}
		if seen[n.Data] {
			return true
		}
		seen[n.Data] = true
		return false
	}
}

// Strip removes every ancestor whose tag name is listed. Void entries are
// never removed.
func Strip(chain []*html.Node, tags ...string) []*html.Node {
	if len(tags) == 0 {
		return slices.Clone(chain)
	}
	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[schema.Normalize(t)] = true
	}
	out := make([]*html.Node, 0, len(chain))
	for _, a := range chain {
		if drop[a.Data] && !schema.IsVoid(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Canonical returns a copy of the leaf with a canonicalized chain
func (l Leaf) Canonical() Leaf {
	return Leaf{Node: l.Node, Ancestors: Canonicalize(l.Ancestors)}
}

// Without returns a copy of the leaf with the listed tags stripped
func (l Leaf) Without(tags ...string) Leaf {
	return Leaf{Node: l.Node, Ancestors: Strip(l.Ancestors, tags...)}
}
