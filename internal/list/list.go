// Package list keeps nested lists well formed while items move between
// nesting levels.
//
// A nested list is written as a wrapper sibling that follows the item it
// belongs to:
//
//	<ul><li>1</li><ul><li>1.1</li></ul><li>2</li></ul>
//
// The form with the wrapper inside the item is read as well.
package list

import (
	"slices"

	"golang.org/x/net/html"

	"rtedit/internal/dom"
	"rtedit/internal/schema"
)

// DefaultMaxDepth is the deepest nesting indent will produce
const DefaultMaxDepth = 5

// Depth returns the number of list wrappers around n
func Depth(n *html.Node) int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		if schema.IsListWrapper(p) {
			d++
		}
	}
	return d
}

// height returns how many wrapper levels hang below an item
func height(li *html.Node) int {
	h := 0
	for _, w := range Carried(li)[1:] {
		h = max(h, 1+maxItemHeight(w))
	}
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if schema.IsListWrapper(c) {
			h = max(h, 1+maxItemHeight(c))
		}
	}
	return h
}

func maxItemHeight(w *html.Node) int {
	h := 0
	for c := w.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case schema.IsListItem(c):
			h = max(h, height(c))
		case schema.IsListWrapper(c) && dom.PrevElement(c) == nil:
			// a wrapper with no item in front of it still nests
			h = max(h, 1+maxItemHeight(c))
		}
	}
	return h
}

// Carried returns li followed by the wrapper siblings that hold its nested
// items. They move together.
func Carried(li *html.Node) []*html.Node {
	out := []*html.Node{li}
	for s := dom.NextElement(li); s != nil && schema.IsListWrapper(s); s = dom.NextElement(s) {
		out = append(out, s)
	}
	return out
}

// ParentItem returns the item a nested item hangs below, nil for items of a
// top level list
func ParentItem(li *html.Node) *html.Node {
	w := li.Parent
	if !schema.IsListWrapper(w) {
		return nil
	}
	if schema.IsListItem(w.Parent) {
		return w.Parent
	}
	for s := dom.PrevElement(w); s != nil; s = dom.PrevElement(s) {
		if schema.IsListItem(s) {
			return s
		}
		if !schema.IsListWrapper(s) {
			return nil
		}
	}
	return nil
}

// topmost drops the items that already travel with an earlier item
func topmost(items []*html.Node) []*html.Node {
	out := make([]*html.Node, 0, len(items))
	for _, li := range items {
		nested := false
		for p := ParentItem(li); p != nil; p = ParentItem(p) {
			if slices.Contains(items, p) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, li)
		}
	}
	return out
}

// CanIndent reports whether every node is a list item, the first one has an
// item or list in front of it, and no item would end up deeper than
// maxDepth
func CanIndent(items []*html.Node, maxDepth int) bool {
	if len(items) == 0 {
		return false
	}
	for _, li := range items {
		if !schema.IsListItem(li) || !schema.IsListWrapper(li.Parent) {
			return false
		}
	}
	for _, li := range topmost(items) {
		if Depth(li)+1+height(li) > maxDepth {
			return false
		}
	}
	prev := dom.PrevElement(items[0])
	return prev != nil && (schema.IsListItem(prev) || schema.IsListWrapper(prev))
}

// CanOutdent reports whether every node is a nested list item and moving
// them out leaves no unselected item of the same list stranded below them
func CanOutdent(items []*html.Node) bool {
	if len(items) == 0 {
		return false
	}
	for _, li := range items {
		if !schema.IsListItem(li) || !schema.IsListWrapper(li.Parent) || Depth(li) < 2 {
			return false
		}
		for s := dom.NextElement(li); s != nil; s = dom.NextElement(s) {
			if schema.IsListItem(s) && !slices.Contains(items, s) {
				return false
			}
		}
	}
	return true
}

// Indent moves every item, with its nested lists, one level deeper. It
// returns false and changes nothing when CanIndent fails.
func Indent(items []*html.Node, maxDepth int) bool {
	if !CanIndent(items, maxDepth) {
		return false
	}
	for _, li := range topmost(items) {
		indent(li)
	}
	return true
}

func indent(li *html.Node) {
	carried := Carried(li)
	prev := dom.PrevElement(li)

	var target *html.Node
	switch {
	case schema.IsListWrapper(prev):
		target = prev
	case nestedWrapper(prev) != nil:
		target = nestedWrapper(prev)
	default:
		target = dom.ShallowClone(li.Parent)
		dom.InsertAfter(prev, target)
	}
	for _, n := range carried {
		dom.Detach(n)
		target.AppendChild(n)
	}
	Join(target)
}

// nestedWrapper returns the trailing wrapper inside an item
func nestedWrapper(li *html.Node) *html.Node {
	if !schema.IsListItem(li) {
		return nil
	}
	for c := li.LastChild; c != nil; c = c.PrevSibling {
		if dom.IsBlank(c) {
			continue
		}
		if schema.IsListWrapper(c) {
			return c
		}
		return nil
	}
	return nil
}

// Outdent moves every item one level up. It returns false and changes
// nothing when CanOutdent fails.
func Outdent(items []*html.Node) bool {
	if !CanOutdent(items) {
		return false
	}
	top := topmost(items)
	for i := len(top) - 1; i >= 0; i-- {
		Hoist(top[i])
	}
	return true
}

// Hoist moves li, with its nested lists, out of its wrapper to sit right
// after it. Items that followed li stay one level deeper in a copy of the
// wrapper placed after li. A wrapper left empty is removed.
func Hoist(li *html.Node) bool {
	w := li.Parent
	if !schema.IsListWrapper(w) {
		return false
	}
	anchor := w
	if schema.IsListItem(w.Parent) {
		anchor = w.Parent
	}

	carried := Carried(li)
	last := carried[len(carried)-1]
	if rest := last.NextSibling; rest != nil && dom.NextElement(last) != nil {
		tail := dom.ShallowClone(w)
		for c := rest; c != nil; {
			next := c.NextSibling
			w.RemoveChild(c)
			tail.AppendChild(c)
			c = next
		}
		dom.InsertAfter(anchor, tail)
	}
	for i := len(carried) - 1; i >= 0; i-- {
		dom.Detach(carried[i])
		dom.InsertAfter(anchor, carried[i])
	}
	Prune(w)
	return true
}

// Unnest moves wrappers written inside li out to follow it, so li holds
// inline content only
func Unnest(li *html.Node) {
	for c := li.LastChild; c != nil; {
		prev := c.PrevSibling
		if schema.IsListWrapper(c) {
			li.RemoveChild(c)
			dom.InsertAfter(li, c)
		}
		c = prev
	}
}

// Lift hoists li until it is no longer inside any list
func Lift(li *html.Node) {
	for Hoist(li) {
	}
}

// Isolate splits the wrapper of li so that li and its nested lists are the
// only content of their wrapper, which is returned
func Isolate(li *html.Node) *html.Node {
	w := li.Parent
	if !schema.IsListWrapper(w) {
		return nil
	}
	carried := Carried(li)
	if dom.PrevElement(li) != nil {
		head := dom.ShallowClone(w)
		for c := w.FirstChild; c != li; {
			next := c.NextSibling
			w.RemoveChild(c)
			head.AppendChild(c)
			c = next
		}
		w.Parent.InsertBefore(head, w)
	}
	last := carried[len(carried)-1]
	if dom.NextElement(last) != nil {
		tail := dom.ShallowClone(w)
		for c := last.NextSibling; c != nil; {
			next := c.NextSibling
			w.RemoveChild(c)
			tail.AppendChild(c)
			c = next
		}
		dom.InsertAfter(w, tail)
	}
	return w
}

// Join merges n with the adjacent wrappers of the same tag and returns the
// surviving wrapper
func Join(n *html.Node) *html.Node {
	if !schema.IsListWrapper(n) {
		return n
	}
	for next := dom.NextElement(n); next != nil && next.Data == n.Data; next = dom.NextElement(n) {
		dom.MoveChildren(next, n, nil)
		dom.Detach(next)
	}
	for prev := dom.PrevElement(n); prev != nil && prev.Data == n.Data; prev = dom.PrevElement(n) {
		dom.MoveChildren(n, prev, nil)
		dom.Detach(n)
		n = prev
	}
	return n
}

// Prune removes w when it holds no element and joins the wrappers it used
// to separate. It reports whether w was removed.
func Prune(w *html.Node) bool {
	if !schema.IsListWrapper(w) || w.Parent == nil {
		return false
	}
	for c := w.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c) {
			return false
		}
	}
	prev := dom.PrevElement(w)
	dom.Detach(w)
	if prev != nil {
		Join(prev)
	}
	return true
}

// Settle splices w into its parent wrapper when no item precedes it there,
// moving its content one level up. A wrapper that becomes the first element
// the same way is spliced too. It reports whether anything moved.
func Settle(w *html.Node) bool {
	settled := false
	for schema.IsListWrapper(w) && schema.IsListWrapper(w.Parent) && dom.PrevElement(w) == nil {
		first := w.FirstChild
		if first != nil && (dom.IsBlank(first) || first.Type == html.CommentNode) {
			first = dom.NextElement(first)
		}
		dom.MoveChildren(w, w.Parent, w)
		dom.Detach(w)
		w, settled = first, true
	}
	return settled
}

// Rename replaces an element with a new one of the given tag, keeping its
// attributes and children
func Rename(n *html.Node, tag string) *html.Node {
	if n.Data == schema.Normalize(tag) {
		return n
	}
	el := dom.NewElement(tag, n.Attr...)
	dom.MoveChildren(n, el, nil)
	dom.ReplaceWith(n, el)
	return el
}
