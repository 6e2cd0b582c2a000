package command

import (
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"

	"rtedit/internal/cursor"
	"rtedit/internal/dom"
	"rtedit/internal/leaf"
	"rtedit/internal/list"
	"rtedit/internal/normalize"
	"rtedit/internal/schema"
	"rtedit/internal/selection"
)

// Direction says which neighbour a delete joins with
type Direction int

const (
	// Backward joins the caret's block into the block before it
	Backward Direction = iota
	// Forward joins the block after the caret into the caret's block
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Printable returns key when it is a single visible character (one grapheme
// cluster, spaces included) and "" otherwise, so key names such as
// "Backspace" are never typed into the document
func Printable(key string) string {
	if key == "" || uniseg.GraphemeClusterCount(key) != 1 {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || !unicode.IsGraphic(r) {
		return ""
	}
	return key
}

// MergeBlocks handles a delete at a block boundary. With a collapsed caret
// at the start (Backward) or end (Forward) of its block the block is joined
// with its neighbour; an empty block is simply removed. A selection spanning
// content is deleted first and the blocks at its two ends joined. A
// printable key is typed at the join.
func (e *Engine) MergeBlocks(root *html.Node, r selection.Range, dir Direction, key string) Result {
	x, ok := e.begin("merge", root, r)
	if !ok {
		return x.noop("selection is not inside the root")
	}
	key = Printable(key)
	if !r.Collapsed() {
		return e.deleteRange(x, key)
	}

	block := selection.EnclosingBlock(root, r.Start.Node)
	if block == nil {
		return x.noop("caret is outside any block")
	}
	units := cursor.Units(root)
	u := slices.Index(units, block)
	at := x.pos.Start().Offset

	var winner, loser *html.Node
	switch dir {
	case Backward:
		if at != 0 {
			return x.noop("caret is not at the start of its block")
		}
		if u < 2 {
			return x.noop("no block before the caret")
		}
		winner, loser = units[u-1], block
	default:
		if at != cursor.Length(root, block) {
			return x.noop("caret is not at the end of its block")
		}
		if u+1 >= len(units) {
			return x.noop("no block after the caret")
		}
		winner, loser = block, units[u+1]
	}

	x.enter(Mutating)
	if empty(block) {
		// the caret lands where the removed block used to meet its neighbour
		caret := cursor.At(u, 0)
		if dir == Backward {
			caret = cursor.At(u-1, cursor.Length(root, winner))
		}
		removeBlock(block)
		x.enter(Normalizing)
		return x.restore(typeAt(root, caret, key))
	}

	wu := cursor.UnitOf(root, winner)
	before := cursor.Length(root, winner)
	join(winner, loser, key)

	x.enter(Normalizing)
	return x.restore(settle(root, winner, cursor.At(wu, before+len(key))))
}

// deleteRange removes the selected content, joins the first and last
// selected blocks and types key where the selection started
func (e *Engine) deleteRange(x *invocation, key string) Result {
	blocks := selection.SelectedBlocks(x.root, x.r)
	if len(blocks) == 0 {
		return x.noop("selection covers no block")
	}
	first, last := blocks[0], blocks[len(blocks)-1]
	start := x.pos.Start()

	x.enter(Mutating)
	x.eachBlock(true, func(block *html.Node, r selection.Range) bool {
		if r.Collapsed() && block != first {
			return false
		}
		idx := dom.Delete(block, r.Start.Node, r.Start.Offset, r.End.Node, r.End.Offset)
		if block == first && key != "" {
			dom.InsertAt(block, dom.NewText(key), idx)
		}
		return true
	})
	if first != last {
		for _, b := range blocks[1 : len(blocks)-1] {
			if empty(b) && !dom.Contains(b, last) {
				removeBlock(b)
			}
		}
		join(first, last, "")
	}

	x.enter(Normalizing)
	caret := cursor.At(start.Unit, start.Offset+len(key))
	if first == last {
		// deleting inside one block keeps the block, even when emptied
		normalize.Own(first)
		return x.restore(caret)
	}
	return x.restore(settle(x.root, first, caret))
}

// settle normalizes block after a join. A paragraph or heading left without
// content is removed and the caret moved to where it was.
func settle(root, block *html.Node, caret cursor.Position) cursor.Position {
	normalize.Own(block)
	if !schema.IsFirstLevel(block) || leaf.HasContent(block) {
		return caret
	}
	u := cursor.UnitOf(root, block)
	removeBlock(block)
	if u > 1 {
		return cursor.At(u-1, cursor.Length(root, cursor.Units(root)[u-1]))
	}
	return cursor.At(0, 0)
}

// empty reports whether block has neither content nor nested lists
func empty(block *html.Node) bool {
	if leaf.HasContent(block) {
		return false
	}
	for c := block.FirstChild; c != nil; c = c.NextSibling {
		if schema.IsListWrapper(c) {
			return false
		}
	}
	return true
}

// removeBlock detaches block, dropping the list it leaves empty
func removeBlock(block *html.Node) {
	w := block.Parent
	dom.Detach(block)
	list.Prune(w)
}

// join moves the content of loser to the end of winner's own content,
// ahead of any list nested inside winner, after typing key there. Lists
// nested inside loser stay where loser was, spliced one level up when no
// item is left in front of them.
func join(winner, loser *html.Node, key string) {
	var ref *html.Node
	for c := winner.FirstChild; c != nil; c = c.NextSibling {
		if schema.IsListWrapper(c) {
			ref = c
			break
		}
	}
	if key != "" {
		winner.InsertBefore(dom.NewText(key), ref)
	}
	var stranded []*html.Node
	for c := loser.FirstChild; c != nil; {
		next := c.NextSibling
		loser.RemoveChild(c)
		if schema.IsListWrapper(c) {
			loser.Parent.InsertBefore(c, loser)
			stranded = append(stranded, c)
		} else {
			winner.InsertBefore(c, ref)
		}
		c = next
	}
	removeBlock(loser)
	for _, w := range stranded {
		list.Settle(w)
	}
}

// typeAt inserts key at pos and returns the position just after it
func typeAt(root *html.Node, pos cursor.Position, key string) cursor.Position {
	if key == "" {
		return pos
	}
	r, ok := cursor.Restore(root, pos)
	if !ok {
		return pos
	}
	p := r.Start
	if dom.IsText(p.Node) {
		p.Node.Data = p.Node.Data[:p.Offset] + key + p.Node.Data[p.Offset:]
	} else {
		dom.InsertAt(p.Node, dom.NewText(key), p.Offset)
	}
	a := pos.Start()
	return cursor.At(a.Unit, a.Offset+len(key))
}
