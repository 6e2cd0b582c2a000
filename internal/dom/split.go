package dom

import "golang.org/x/net/html"

// Split cuts the tree between stop and the boundary point (container,
// offset) so that the point falls between two children of stop, and returns
// the child index of stop at which the right-hand side begins. Elements are
// only split when content lies on both sides of the point, so no empty
// clones are produced. container must be stop or one of its descendants.
func Split(stop, container *html.Node, offset int) int {
	node, off := container, offset
	if IsText(node) {
		parent := node.Parent
		idx := ChildIndex(parent, node)
		switch {
		case off <= 0:
			off = idx
		case off >= len(node.Data):
			off = idx + 1
		default:
			right := NewText(node.Data[off:])
			node.Data = node.Data[:off]
			parent.InsertBefore(right, node.NextSibling)
			off = idx + 1
		}
		node = parent
	}

	for node != stop {
		parent := node.Parent
		idx := ChildIndex(parent, node)
		switch {
		case off <= 0:
			off = idx
		case off >= ChildCount(node):
			off = idx + 1
		default:
			clone := ShallowClone(node)
			for c := ChildAt(node, off); c != nil; {
				next := c.NextSibling
				node.RemoveChild(c)
				clone.AppendChild(c)
				c = next
			}
			parent.InsertBefore(clone, node.NextSibling)
			off = idx + 1
		}
		node = parent
	}
	return off
}

// Extract detaches everything between the two boundary points into a
// Fragment, splitting partially covered ancestors up to stop. It returns the
// fragment and the child index of stop where the content used to be. The
// start point must not come after the end point.
func Extract(stop, startNode *html.Node, startOffset int, endNode *html.Node, endOffset int) (*Fragment, int) {
	endIdx := Split(stop, endNode, endOffset)
	before := ChildCount(stop)
	startIdx := Split(stop, startNode, startOffset)
	endIdx += ChildCount(stop) - before

	frag := &Fragment{}
	for i := startIdx; i < endIdx; i++ {
		c := ChildAt(stop, startIdx)
		if c == nil {
			break
		}
		stop.RemoveChild(c)
		frag.Append(c)
	}
	return frag, startIdx
}

// Delete removes everything between the two boundary points and returns the
// child index of stop where the content used to be
func Delete(stop, startNode *html.Node, startOffset int, endNode *html.Node, endOffset int) int {
	_, idx := Extract(stop, startNode, startOffset, endNode, endOffset)
	return idx
}
