// Package normalize rewrites a subtree into its canonical minimal form: every
// leaf's ancestor chain is sorted by tag priority and consecutive leaves that
// share an outer ancestor are rebuilt under a single element.
package normalize

import (
	"strings"

	"golang.org/x/net/html"

	"rtedit/internal/dom"
	"rtedit/internal/leaf"
	"rtedit/internal/schema"
)

// Equal reports whether two ancestors collapse into one element: they are the
// same node, or they share a tag name and neither is void nor marked
// not-collapsible
func Equal(a, b *html.Node) bool {
	if schema.IsVoid(a) || schema.IsVoid(b) {
		return false
	}
	if a == b {
		return true
	}
	if a.Data != b.Data {
		return false
	}
	return !schema.RolesOfNode(a).Any(schema.Void|schema.NotCollapsible) &&
		!schema.RolesOfNode(b).Any(schema.Void|schema.NotCollapsible)
}

// Build materializes a leaf sequence as a minimal fragment. Leaves are used
// as given: callers canonicalize or strip chains beforehand.
func Build(leaves []leaf.Leaf) *dom.Fragment {
	holder := dom.NewElement("div")
	build(holder, present(leaves), 0)

	frag := &dom.Fragment{}
	for c := holder.FirstChild; c != nil; {
		next := c.NextSibling
		holder.RemoveChild(c)
		frag.Append(c)
		c = next
	}
	return frag
}

// present drops leaves that carry no visual information
func present(leaves []leaf.Leaf) []leaf.Leaf {
	out := make([]leaf.Leaf, 0, len(leaves))
	for _, l := range leaves {
		if l.Empty() {
			continue
		}
		out = append(out, l)
	}
	return out
}

func build(parent *html.Node, leaves []leaf.Leaf, depth int) {
	for i := 0; i < len(leaves); {
		l := leaves[i]

		if depth >= len(l.Ancestors) {
			if l.IsVoid() {
				parent.AppendChild(dom.ShallowClone(l.Node))
				i++
				continue
			}
			var sb strings.Builder
			j := i
			for ; j < len(leaves) && depth >= len(leaves[j].Ancestors) && !leaves[j].IsVoid(); j++ {
				sb.WriteString(leaves[j].Text())
			}
			parent.AppendChild(dom.NewText(sb.String()))
			i = j
			continue
		}

		outer := l.Ancestors[depth]
		j := i + 1
		for ; j < len(leaves); j++ {
			next := leaves[j]
			if depth >= len(next.Ancestors) || !Equal(outer, next.Ancestors[depth]) {
				break
			}
		}

		el := dom.ShallowClone(outer)
		parent.AppendChild(el)
		build(el, leaves[i:j], depth+1)
		i = j
	}
}

// Block replaces the children of root with their canonical form
func Block(root *html.Node) {
	replace(root, leaf.Build(root), nil, nil)
}

// RemoveTag normalizes root like Block, first stripping the listed tags from
// the chain of every leaf that passes through boundary. Leaves outside
// boundary keep those tags.
func RemoveTag(root, boundary *html.Node, tags ...string) {
	replace(root, leaf.Build(root), boundary, tags)
}

// Own normalizes the content a block holds directly. Children that contain
// blocks of their own, such as nested lists, are kept as they are and split
// the remaining children into runs that are normalized one at a time.
func Own(block *html.Node) {
	own(block, nil, nil)
}

// RemoveOwnTag is RemoveTag restricted to the content block holds directly,
// the way Own restricts Block
func RemoveOwnTag(block, boundary *html.Node, tags ...string) {
	own(block, boundary, tags)
}

func own(block, boundary *html.Node, tags []string) {
	var run []*html.Node
	flush := func(ref *html.Node) {
		if len(run) == 0 {
			return
		}
		holder := dom.NewElement("div")
		for _, n := range run {
			block.RemoveChild(n)
			holder.AppendChild(n)
		}
		replace(holder, leaf.Build(holder), boundary, tags)
		dom.MoveChildren(holder, block, ref)
		run = run[:0]
	}
	for c := block.FirstChild; c != nil; {
		next := c.NextSibling
		if nests(c) {
			flush(c)
		} else {
			run = append(run, c)
		}
		c = next
	}
	flush(nil)
}

// nests reports whether n is or holds a block or list wrapper
func nests(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	if schema.IsBlock(n) || schema.IsListWrapper(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if nests(c) {
			return true
		}
	}
	return false
}

func replace(root *html.Node, leaves []leaf.Leaf, boundary *html.Node, tags []string) {
	prepared := make([]leaf.Leaf, len(leaves))
	for i, l := range leaves {
		if boundary != nil && l.Passes(boundary) {
			l = l.Without(tags...)
		}
		prepared[i] = l.Canonical()
	}
	frag := Build(prepared)
	dom.RemoveChildren(root)
	frag.AppendTo(root)
}

// String renders the canonical form of an HTML snippet; it is a convenience
// for tools and tests
func String(content string) (string, error) {
	root, err := dom.ParseFragment(content)
	if err != nil {
		return "", err
	}
	Block(root)
	return dom.InnerHTML(root)
}
