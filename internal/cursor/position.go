// Package cursor snapshots a selection in a form that survives the tree
// being rebuilt underneath it.
//
// A range is captured twice: by reference, for equality, and as a pair of
// anchors. An anchor names a unit (the root itself is unit 0, then every
// block and list item in document order) and a text offset counted over the
// unit's own leaves, where a void element counts as one. Normalization
// replaces nodes but keeps both the block order and the text of every block,
// so anchors restore where references would go stale.
package cursor

import (
	"fmt"

	"golang.org/x/net/html"

	"rtedit/internal/leaf"
	"rtedit/internal/selection"
)

// Anchor is a tree independent boundary point
type Anchor struct {
	Unit   int
	Offset int
}

func (a Anchor) String() string {
	return fmt.Sprintf("%d:%d", a.Unit, a.Offset)
}

// Position is an immutable snapshot of a selection
type Position struct {
	captured   selection.Range
	start, end Anchor
	// units is the number of units at capture time, zero when unknown
	units int
}

// Snapshot captures r, which must be valid under root
func Snapshot(root *html.Node, r selection.Range) Position {
	units := Units(root)
	return Position{
		captured: r,
		start:    locate(root, units, r.Start),
		end:      locate(root, units, r.End),
		units:    len(units),
	}
}

// At returns a collapsed position at offset within the given unit. The unit
// index is taken as valid for whatever tree the position is restored in.
func At(unit, offset int) Position {
	a := Anchor{Unit: unit, Offset: offset}
	return Position{start: a, end: a}
}

// Start returns the anchor of the start point
func (p Position) Start() Anchor { return p.start }

// End returns the anchor of the end point
func (p Position) End() Anchor { return p.end }

// Range returns the range the position was captured from
func (p Position) Range() selection.Range { return p.captured }

// Collapsed reports whether both anchors are the same
func (p Position) Collapsed() bool { return p.start == p.end }

// Equal compares the captured containers by reference and offsets by value
func (p Position) Equal(q Position) bool {
	return p.captured.Start.Node == q.captured.Start.Node &&
		p.captured.Start.Offset == q.captured.Start.Offset &&
		p.captured.End.Node == q.captured.End.Node &&
		p.captured.End.Offset == q.captured.End.Offset
}

func (p Position) String() string {
	if p.Collapsed() {
		return p.start.String()
	}
	return p.start.String() + ".." + p.end.String()
}

// Units returns root followed by every block below it in document order
func Units(root *html.Node) []*html.Node {
	return append([]*html.Node{root}, selection.Blocks(root)...)
}

// UnitOf returns the unit index of block, -1 when it is not a unit of root
func UnitOf(root, block *html.Node) int {
	for i, u := range Units(root) {
		if u == block {
			return i
		}
	}
	return -1
}

// Restore rebuilds a range from the anchors of p. It reports false when a
// unit no longer exists or, for a snapshot, when units were added or
// removed since, as unit indices then name other blocks. Offsets past the
// end of a unit clamp to its end.
func Restore(root *html.Node, p Position) (selection.Range, bool) {
	units := Units(root)
	if p.units != 0 && p.units != len(units) {
		return selection.Range{}, false
	}
	if p.start.Unit < 0 || p.start.Unit >= len(units) || p.end.Unit < 0 || p.end.Unit >= len(units) {
		return selection.Range{}, false
	}
	if p.Collapsed() {
		pt := resolve(root, units[p.start.Unit], p.start.Offset, false)
		return selection.Range{Start: pt, End: pt}, true
	}
	return selection.Range{
		Start: resolve(root, units[p.start.Unit], p.start.Offset, true),
		End:   resolve(root, units[p.end.Unit], p.end.Offset, false),
	}, true
}

// Length returns the number of offsets a unit spans
func Length(root, unit *html.Node) int {
	n := 0
	for _, l := range selection.OwnLeaves(root, unit) {
		n += l.Len()
	}
	return n
}

func locate(root *html.Node, units []*html.Node, p selection.Point) Anchor {
	owner := selection.Owner(root, p.Node)
	a := Anchor{}
	for i, u := range units {
		if u == owner {
			a.Unit = i
			break
		}
	}
	for _, l := range selection.OwnLeaves(root, owner) {
		if l.Node == p.Node {
			a.Offset += min(p.Offset, l.Len())
			break
		}
		if end(l).Compare(p) > 0 {
			break
		}
		a.Offset += l.Len()
	}
	return a
}

// resolve maps an offset inside unit back to a boundary point. At the seam
// between two leaves the point stays in the left one unless forward is set.
func resolve(root, unit *html.Node, offset int, forward bool) selection.Point {
	own := selection.OwnLeaves(root, unit)
	if len(own) == 0 {
		return selection.Point{Node: unit}
	}
	remaining := max(offset, 0)
	for i, l := range own {
		n := l.Len()
		if remaining < n || (remaining == n && (!forward || i == len(own)-1)) {
			return at(l, remaining)
		}
		remaining -= n
	}
	return end(own[len(own)-1])
}

func at(l leaf.Leaf, offset int) selection.Point {
	if !l.IsVoid() {
		return selection.Point{Node: l.Node, Offset: offset}
	}
	idx := 0
	for c := l.Node.Parent.FirstChild; c != l.Node; c = c.NextSibling {
		idx++
	}
	return selection.Point{Node: l.Node.Parent, Offset: idx + offset}
}

func end(l leaf.Leaf) selection.Point {
	return at(l, l.Len())
}
