package command

import (
	"golang.org/x/net/html"

	"rtedit/internal/cursor"
	"rtedit/internal/dom"
	"rtedit/internal/normalize"
	"rtedit/internal/schema"
	"rtedit/internal/selection"
)

// inline reports whether tag can be applied as a mark
func inline(tag string) bool {
	return tag != "" && !schema.RolesOf(tag).Any(schema.Void|schema.FirstLevel|schema.List|schema.ListWrapper)
}

// Wrap puts the selected content of every selected block inside a new tag
// element and normalizes each block
func (e *Engine) Wrap(root *html.Node, r selection.Range, tag string, attrs ...html.Attribute) Result {
	x, ok := e.begin("wrap", root, r)
	if !ok {
		return x.noop("selection is not inside the root")
	}
	tag = schema.Normalize(tag)
	switch {
	case r.Collapsed():
		return x.noop("selection is collapsed")
	case !inline(tag):
		return x.noop("not an inline tag")
	}

	changed := x.eachBlock(false, func(block *html.Node, r selection.Range) bool {
		if r.Collapsed() {
			return false
		}
		x.enter(Mutating)
		frag, idx := dom.Extract(block, r.Start.Node, r.Start.Offset, r.End.Node, r.End.Offset)
		if frag.Len() == 0 {
			return false
		}
		frag.WrapIn(dom.NewElement(tag, attrs...)).InsertBefore(block, dom.ChildAt(block, idx))

		x.enter(Normalizing)
		normalize.Own(block)
		return true
	})
	if !changed {
		return x.noop("selection covers no content")
	}
	return x.restore(x.pos)
}

// Unwrap removes tag from the selected content of every selected block. The
// same tag outside the selection is kept, splitting elements where needed.
func (e *Engine) Unwrap(root *html.Node, r selection.Range, tag string) Result {
	x, ok := e.begin("unwrap", root, r)
	if !ok {
		return x.noop("selection is not inside the root")
	}
	tag = schema.Normalize(tag)
	switch {
	case r.Collapsed():
		return x.noop("selection is collapsed")
	case !inline(tag):
		return x.noop("not an inline tag")
	}

	changed := x.eachBlock(false, func(block *html.Node, r selection.Range) bool {
		if r.Collapsed() || !marked(block, r, tag) {
			return false
		}
		x.enter(Mutating)
		frag, idx := dom.Extract(block, r.Start.Node, r.Start.Offset, r.End.Node, r.End.Offset)
		if frag.Len() == 0 {
			return false
		}
		marker := dom.NewElement(schema.MarkerTag)
		frag.WrapIn(marker).InsertBefore(block, dom.ChildAt(block, idx))

		x.enter(Normalizing)
		normalize.RemoveOwnTag(block, marker, schema.MarkerTag, tag)
		return true
	})
	if !changed {
		return x.noop("tag is not applied to the selection")
	}
	return x.restore(x.pos)
}

// marked reports whether a leaf of r sits inside a tag element below block
func marked(block *html.Node, r selection.Range, tag string) bool {
	for _, n := range selection.SelectedLeaves(r) {
		for p := n.Parent; p != nil && p != block; p = p.Parent {
			if p.Data == tag {
				return true
			}
		}
	}
	return false
}

// Link turns the selection into a single link to href, replacing any link
// it overlaps. An empty href removes links from the selection.
func (e *Engine) Link(root *html.Node, r selection.Range, href string, attrs ...html.Attribute) Result {
	if href == "" {
		return e.Unwrap(root, r, "a")
	}
	stripped := e.Unwrap(root, r, "a")
	if stripped.Changed && !stripped.Restored {
		return stripped
	}
	attrs = append([]html.Attribute{{Key: "href", Val: href}}, attrs...)
	res := e.Wrap(root, stripped.Selection, "a", attrs...)
	res.Changed = res.Changed || stripped.Changed
	return res
}

// InsertImage places an image at the start of the selection
func (e *Engine) InsertImage(root *html.Node, r selection.Range, src string, attrs ...html.Attribute) Result {
	x, ok := e.begin("image", root, r)
	if !ok {
		return x.noop("selection is not inside the root")
	}
	if src == "" {
		return x.noop("no image source")
	}
	block := selection.EnclosingBlock(root, r.Start.Node)
	if block == nil {
		return x.noop("caret is outside any block")
	}

	x.enter(Mutating)
	idx := dom.Split(block, r.Start.Node, r.Start.Offset)
	attrs = append([]html.Attribute{{Key: "src", Val: src}}, attrs...)
	dom.InsertAt(block, dom.NewElement("img", attrs...), idx)

	x.enter(Normalizing)
	normalize.Own(block)

	start := x.pos.Start()
	return x.restore(cursor.At(start.Unit, start.Offset+1))
}
