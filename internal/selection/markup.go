package selection

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"rtedit/internal/dom"
)

// Selection markers recognised inside text by ParseMarked and written by
// RenderMarked
const (
	StartMarker = "["
	EndMarker   = "]"
	CaretMarker = "|"
)

// ErrNoMarkers is returned by ParseMarked when the markup carries no selection
var ErrNoMarkers = errors.New("no selection markers found")

// ParseMarked parses an HTML snippet whose text carries selection markers:
// "[" and "]" delimit a range, "|" places a caret. The markers are removed
// from the tree and returned as a Range over the detached root.
func ParseMarked(content string) (*html.Node, Range, error) {
	root, err := dom.ParseFragment(content)
	if err != nil {
		return nil, Range{}, err
	}
	r, err := Unmark(root)
	return root, r, err
}

// Unmark removes selection markers from the text under root and returns the
// range they described
func Unmark(root *html.Node) (Range, error) {
	var (
		start, end *Point
		texts      []*html.Node
	)
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsText(c) {
				texts = append(texts, c)
			}
			collect(c)
		}
	}
	collect(root)

	for _, t := range texts {
		for {
			i := strings.IndexAny(t.Data, StartMarker+EndMarker+CaretMarker)
			if i < 0 {
				break
			}
			marker := t.Data[i : i+1]
			t.Data = t.Data[:i] + t.Data[i+1:]
			p := &Point{Node: t, Offset: i}
			switch marker {
			case StartMarker:
				start = p
			case EndMarker:
				end = p
			default:
				start, end = p, &Point{Node: t, Offset: i}
			}
		}
	}
	if start == nil && end == nil {
		return Range{}, ErrNoMarkers
	}
	if start == nil || end == nil {
		return Range{}, fmt.Errorf("unbalanced selection markers")
	}

	points := []*Point{start, end}
	for _, t := range texts {
		if t.Data != "" || (start.Node != t && end.Node != t) {
			continue
		}
		parent, idx := t.Parent, dom.Index(t)
		dom.Detach(t)
		for _, p := range points {
			switch {
			case p.Node == t:
				*p = Point{Node: parent, Offset: idx}
			case p.Node == parent && p.Offset > idx:
				p.Offset--
			}
		}
	}
	return Range{Start: *start, End: *end}, nil
}

// RenderMarked renders the children of root with the range written back as
// markers. The tree itself is left untouched.
func RenderMarked(root *html.Node, r Range) (string, error) {
	mapping := map[*html.Node]*html.Node{}
	clone := dom.DeepClone(root, func(orig, c *html.Node) { mapping[orig] = c })

	if r.IsZero() {
		return dom.InnerHTML(clone)
	}
	start, sok := mapping[r.Start.Node]
	end, eok := mapping[r.End.Node]
	if !sok || !eok {
		return "", errors.New("selection is outside the rendered tree")
	}

	if r.Collapsed() {
		mark(start, r.Start.Offset, CaretMarker)
	} else {
		mark(end, r.End.Offset, EndMarker)
		mark(start, r.Start.Offset, StartMarker)
	}
	return dom.InnerHTML(clone)
}

func mark(n *html.Node, offset int, marker string) {
	if dom.IsText(n) {
		n.Data = n.Data[:offset] + marker + n.Data[offset:]
		return
	}
	dom.InsertAt(n, dom.NewText(marker), offset)
}
