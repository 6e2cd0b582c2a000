package selection

import (
	"slices"

	"golang.org/x/net/html"

	"rtedit/internal/dom"
	"rtedit/internal/leaf"
	"rtedit/internal/schema"
)

// SelectedLeaves returns the nodes a range covers. A collapsed range, or one
// inside a single text run, yields that one node. Otherwise every non-empty
// text run intersecting the range is returned; runs the range only touches
// at their edge are left out.
func SelectedLeaves(r Range) []*html.Node {
	return covered(r, false)
}

func covered(r Range, withVoid bool) []*html.Node {
	if r.Start.Node == nil || r.End.Node == nil {
		return nil
	}
	if r.Collapsed() || (r.SingleNode() && dom.IsText(r.Start.Node)) {
		return []*html.Node{nodeAt(r.Start)}
	}

	ancestor := commonAncestor(r.Start.Node, r.End.Node)
	if ancestor == nil {
		return nil
	}
	var out []*html.Node
	for l := range leaf.All(ancestor) {
		if l.IsVoid() && !withVoid {
			continue
		}
		if dom.ComparePoints(l.Node, l.Len(), r.Start.Node, r.Start.Offset) <= 0 {
			continue
		}
		if dom.ComparePoints(l.Node, 0, r.End.Node, r.End.Offset) >= 0 {
			break
		}
		out = append(out, l.Node)
	}
	return out
}

// nodeAt resolves a collapsed point to the node it sits in: the text run
// itself, the deepest node just before an element offset, or the element
// when it is empty
func nodeAt(p Point) *html.Node {
	n := p.Node
	if !dom.IsElement(n) || n.FirstChild == nil {
		return n
	}
	if p.Offset > 0 {
		c := dom.ChildAt(n, p.Offset-1)
		if c == nil {
			c = n.LastChild
		}
		for c.LastChild != nil && !schema.IsVoid(c) {
			c = c.LastChild
		}
		return c
	}
	c := n.FirstChild
	for c.FirstChild != nil && !schema.IsVoid(c) {
		c = c.FirstChild
	}
	return c
}

func commonAncestor(a, b *html.Node) *html.Node {
	for n := a; n != nil; n = n.Parent {
		if dom.Contains(n, b) {
			if dom.IsText(n) {
				return n.Parent
			}
			return n
		}
	}
	return nil
}

// tagChain returns the tag names from the outermost ancestor below root down
// to n itself
func tagChain(n, root *html.Node) []string {
	var tags []string
	for c := n; c != nil && c != root; c = c.Parent {
		if dom.IsElement(c) {
			tags = append(tags, c.Data)
		}
	}
	slices.Reverse(tags)
	return tags
}

// SharedTags returns the tag names every selected leaf sits in, ordered as
// in the first leaf's chain, outermost first. Tag names are lower case.
func SharedTags(r Range, root *html.Node) []string {
	leaves := SelectedLeaves(r)
	if len(leaves) == 0 {
		return nil
	}

	first := tagChain(leaves[0], root)
	counts := make(map[string]bool, len(first))
	shared := make([]string, 0, len(first))
	for _, t := range first {
		if counts[t] {
			continue
		}
		counts[t] = true
		shared = append(shared, t)
	}

	for _, n := range leaves[1:] {
		present := make(map[string]bool)
		for _, t := range tagChain(n, root) {
			present[t] = true
		}
		shared = slices.DeleteFunc(shared, func(t string) bool { return !present[t] })
		if len(shared) == 0 {
			break
		}
	}
	return shared
}

// EnclosingBlock walks up from n (inclusive) to the first block or list item
// below root. It returns nil when there is none.
func EnclosingBlock(root, n *html.Node) *html.Node {
	for c := n; c != nil && c != root; c = c.Parent {
		if schema.IsBlock(c) {
			return c
		}
	}
	return nil
}

// Owner returns the enclosing block of n, or root when n is not inside one
func Owner(root, n *html.Node) *html.Node {
	if b := EnclosingBlock(root, n); b != nil {
		return b
	}
	return root
}

// SelectedBlocks returns the enclosing blocks of every selected leaf in
// document order without duplicates
func SelectedBlocks(root *html.Node, r Range) []*html.Node {
	var blocks []*html.Node
	for _, n := range covered(r, true) {
		b := EnclosingBlock(root, n)
		if b == nil || slices.Contains(blocks, b) {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// Blocks returns every block and list item below root in document order
func Blocks(root *html.Node) []*html.Node {
	var out []*html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if schema.IsBlock(c) {
				out = append(out, c)
			}
			if dom.IsElement(c) {
				visit(c)
			}
		}
	}
	visit(root)
	return out
}

// OwnLeaves returns the leaves whose enclosing block is block; passing root
// yields the leaves that sit outside every block
func OwnLeaves(root, block *html.Node) []leaf.Leaf {
	var out []leaf.Leaf
	for l := range leaf.All(block) {
		if Owner(root, l.Node) == block {
			out = append(out, l)
		}
	}
	return out
}

// BlockRange spans the block's own content, from the start of its first own
// leaf to the end of its last
func BlockRange(root, block *html.Node) Range {
	own := OwnLeaves(root, block)
	if len(own) == 0 {
		return Range{Start: Point{Node: block}, End: Point{Node: block, Offset: dom.ChildCount(block)}}
	}
	first, last := own[0], own[len(own)-1]
	return Range{Start: leafStart(first), End: leafEnd(last)}
}

func leafStart(l leaf.Leaf) Point {
	if l.IsVoid() {
		return Point{Node: l.Node.Parent, Offset: dom.Index(l.Node)}
	}
	return Point{Node: l.Node}
}

func leafEnd(l leaf.Leaf) Point {
	if l.IsVoid() {
		return Point{Node: l.Node.Parent, Offset: dom.Index(l.Node) + 1}
	}
	return Point{Node: l.Node, Offset: len(l.Node.Data)}
}

// Clip intersects r with the block's own content. It reports false when they
// do not overlap.
func Clip(r Range, root, block *html.Node) (Range, bool) {
	br := BlockRange(root, block)
	out := r
	if br.Start.Compare(out.Start) > 0 {
		out.Start = br.Start
	}
	if br.End.Compare(out.End) < 0 {
		out.End = br.End
	}
	if out.Start.Compare(out.End) > 0 {
		return Range{}, false
	}
	return out, true
}
