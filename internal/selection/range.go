// Package selection maps a user range onto the leaves, blocks and tags it
// covers.
package selection

import (
	"fmt"

	"golang.org/x/net/html"

	"rtedit/internal/dom"
)

// Point is a boundary point: a container node and an offset into it. The
// offset is a byte offset for text runs and a child index for elements.
type Point struct {
	Node   *html.Node
	Offset int
}

// Range represents a user selection. Unlike a live DOM range it does not
// track mutations.
type Range struct {
	Start Point
	End   Point
}

// Caret returns a collapsed range at (n, offset)
func Caret(n *html.Node, offset int) Range {
	p := Point{Node: n, Offset: offset}
	return Range{Start: p, End: p}
}

// New returns a range between two points, swapping them when they are out
// of document order
func New(startNode *html.Node, startOffset int, endNode *html.Node, endOffset int) Range {
	r := Range{
		Start: Point{Node: startNode, Offset: startOffset},
		End:   Point{Node: endNode, Offset: endOffset},
	}
	if r.Start.Compare(r.End) > 0 {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

// IsZero reports whether the range is unset
func (r Range) IsZero() bool {
	return r.Start.Node == nil && r.End.Node == nil
}

// Collapsed returns true if start and end are the same point
func (r Range) Collapsed() bool {
	return r.Start == r.End
}

// SingleNode reports whether both points sit in the same container
func (r Range) SingleNode() bool {
	return r.Start.Node == r.End.Node
}

// Compare orders two points in document order
func (p Point) Compare(q Point) int {
	return dom.ComparePoints(p.Node, p.Offset, q.Node, q.Offset)
}

// Valid reports whether p refers to a node inside root with an offset in range
func (p Point) Valid(root *html.Node) bool {
	if p.Node == nil || !dom.Contains(root, p.Node) || p.Offset < 0 {
		return false
	}
	if dom.IsText(p.Node) {
		return p.Offset <= len(p.Node.Data)
	}
	return p.Offset <= dom.ChildCount(p.Node)
}

// Valid reports whether both points are valid under root and ordered
func (r Range) Valid(root *html.Node) bool {
	return r.Start.Valid(root) && r.End.Valid(root) && r.Start.Compare(r.End) <= 0
}

func (p Point) String() string {
	if p.Node == nil {
		return "<nil>"
	}
	if dom.IsText(p.Node) {
		return fmt.Sprintf("%q@%d", p.Node.Data, p.Offset)
	}
	return fmt.Sprintf("<%s>@%d", p.Node.Data, p.Offset)
}

func (r Range) String() string {
	if r.Collapsed() {
		return r.Start.String()
	}
	return r.Start.String() + ".." + r.End.String()
}
