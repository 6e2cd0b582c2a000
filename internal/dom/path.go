package dom

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// NodePath represents the traversal steps from the root to a target node.
// Example: [0, 1, 3] means root -> child[0] -> child[1] -> child[3]
type NodePath []int

// GetNode traverses the tree using the provided path to find a specific node.
func GetNode(root *html.Node, path NodePath) (*html.Node, error) {
	current := root
	for i, index := range path {
		child := ChildAt(current, index)
		if child == nil {
			return nil, fmt.Errorf("node not found at path %v (failed at index %d, step %d)", path, index, i)
		}
		current = child
	}
	return current, nil
}

// GetPath finds the path from root to the target node.
func GetPath(root, target *html.Node) (NodePath, error) {
	var path NodePath

	// We build the path backwards from target to root
	current := target
	for current != root {
		parent := current.Parent
		if parent == nil {
			return nil, errors.New("target node is not a descendant of root")
		}

		index := ChildIndex(parent, current)
		if index == -1 {
			return nil, errors.New("integrity error: child not found in parent's list")
		}

		path = append(NodePath{index}, path...)
		current = parent
	}
	return path, nil
}

// pointPath returns the path of the boundary point (n, offset) from the top
// of n's tree
func pointPath(n *html.Node, offset int) NodePath {
	path := NodePath{offset}
	for current := n; current.Parent != nil; current = current.Parent {
		path = append(path, ChildIndex(current.Parent, current))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ComparePoints orders two boundary points of the same tree in document
// order. It returns -1, 0 or 1. A point sitting on an element before child i
// precedes every point inside that child.
func ComparePoints(a *html.Node, aOffset int, b *html.Node, bOffset int) int {
	if a == b {
		switch {
		case aOffset < bOffset:
			return -1
		case aOffset > bOffset:
			return 1
		}
		return 0
	}
	pa, pb := pointPath(a, aOffset), pointPath(b, bOffset)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}
