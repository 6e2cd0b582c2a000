package command

import (
	"golang.org/x/net/html"

	"rtedit/internal/dom"
	"rtedit/internal/list"
	"rtedit/internal/normalize"
	"rtedit/internal/schema"
	"rtedit/internal/selection"
)

// blockType is a parsed block change request: a paragraph-like tag, or a
// list wrapper tag when item is set
type blockType struct {
	tag  string
	item bool
}

func parseBlockType(tags []string) (blockType, bool) {
	norm := make([]string, len(tags))
	for i, t := range tags {
		norm[i] = schema.Normalize(t)
	}
	switch {
	case len(norm) == 1 && schema.RolesOf(norm[0]).Has(schema.FirstLevel):
		return blockType{tag: norm[0]}, true
	case len(norm) == 2 && schema.IsListTag(norm[0]) && schema.RolesOf(norm[1]).Has(schema.List):
		return blockType{tag: norm[0], item: true}, true
	}
	return blockType{}, false
}

// matches reports whether block already has this type
func (t blockType) matches(block *html.Node) bool {
	if t.item {
		return schema.IsListItem(block) && block.Parent != nil && block.Parent.Data == t.tag
	}
	return block.Data == t.tag
}

// ChangeBlockType retypes every selected block. tags is either a single
// paragraph or heading tag, or a list wrapper and item pair such as
// ["ul", "li"].
func (e *Engine) ChangeBlockType(root *html.Node, r selection.Range, tags []string) Result {
	return e.changeBlockType(root, r, tags, nil)
}

func (e *Engine) changeBlockType(root *html.Node, r selection.Range, tags []string, decorate func(*html.Node)) Result {
	x, ok := e.begin("block", root, r)
	if !ok {
		return x.noop("selection is not inside the root")
	}
	bt, ok := parseBlockType(tags)
	if !ok {
		return x.noop("unsupported block type")
	}
	if decorate == nil {
		decorate = func(*html.Node) {}
	}

	// right to left, so rewriting a block never moves the ones still to come
	changed := x.eachBlock(true, func(block *html.Node, _ selection.Range) bool {
		if bt.matches(block) {
			return false
		}
		x.enter(Mutating)
		var retyped *html.Node
		if bt.item {
			retyped = toListItem(block, bt.tag)
		} else {
			retyped = toFirstLevel(block, bt.tag)
		}
		decorate(retyped)

		x.enter(Normalizing)
		normalize.Own(retyped)
		return true
	})
	if !changed {
		return x.noop("blocks already have the requested type")
	}
	return x.restore(x.pos)
}

// toFirstLevel turns block into a tag element outside of any list
func toFirstLevel(block *html.Node, tag string) *html.Node {
	if schema.IsListItem(block) {
		list.Unnest(block)
		list.Lift(block)
		// lists carried out with the item meet what was left of its list
		if next := dom.NextElement(block); next != nil {
			list.Join(next)
		}
	}
	return list.Rename(block, tag)
}

// toListItem turns block into an item of a tag list, joining neighbouring
// lists of the same type
func toListItem(block *html.Node, tag string) *html.Node {
	if schema.IsListItem(block) {
		if w := list.Isolate(block); w != nil {
			list.Join(list.Rename(w, tag))
			return block
		}
		// an item outside any list only needs a wrapper
	}
	li := list.Rename(block, "li")
	wrapper := dom.NewElement(tag)
	li.Parent.InsertBefore(wrapper, li)
	li.Parent.RemoveChild(li)
	wrapper.AppendChild(li)
	list.Join(wrapper)
	return li
}

// PlusIndent nests the selected list items one level deeper
func (e *Engine) PlusIndent(root *html.Node, r selection.Range) Result {
	x, ok := e.begin("indent", root, r)
	if !ok {
		return x.noop("selection is not inside the root")
	}
	items := selection.SelectedBlocks(root, r)
	if !list.CanIndent(items, e.cfg.MaxListDepth) {
		return x.noop("indent is not allowed here")
	}
	x.enter(Mutating)
	list.Indent(items, e.cfg.MaxListDepth)

	x.enter(Normalizing)
	joinOutermost(items[0])
	return x.restore(x.pos)
}

// MinusIndent moves the selected list items one level up
func (e *Engine) MinusIndent(root *html.Node, r selection.Range) Result {
	x, ok := e.begin("outdent", root, r)
	if !ok {
		return x.noop("selection is not inside the root")
	}
	items := selection.SelectedBlocks(root, r)
	if !list.CanOutdent(items) {
		return x.noop("outdent is not allowed here")
	}
	x.enter(Mutating)
	list.Outdent(items)

	x.enter(Normalizing)
	joinOutermost(items[0])
	return x.restore(x.pos)
}

// joinOutermost joins the top level list holding n with its neighbours
func joinOutermost(n *html.Node) {
	var outer *html.Node
	for p := n.Parent; p != nil; p = p.Parent {
		if schema.IsListWrapper(p) {
			outer = p
		}
	}
	if outer != nil {
		list.Join(outer)
	}
}
