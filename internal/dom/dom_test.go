package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustParse(t *testing.T, s string) *html.Node {
	t.Helper()
	root, err := ParseFragment(s)
	require.NoError(t, err)
	return root
}

func TestPathing(t *testing.T) {
	root := mustParse(t, `<p>one</p><p><em>two</em>three</p>`)

	targetPath := NodePath{1, 0, 0}
	node, err := GetNode(root, targetPath)
	require.NoError(t, err)
	require.Equal(t, html.TextNode, node.Type)
	assert.Equal(t, "two", node.Data)

	path, err := GetPath(root, node)
	require.NoError(t, err)
	assert.Equal(t, targetPath, path)

	_, err = GetNode(root, NodePath{3})
	assert.Error(t, err)

	_, err = GetPath(root, NewText("orphan"))
	assert.Error(t, err)
}

func TestComparePoints(t *testing.T) {
	root := mustParse(t, `<p>ab<em>cd</em>ef</p>`)
	p := root.FirstChild
	ab := p.FirstChild
	cd := ab.NextSibling.FirstChild
	ef := p.LastChild

	assert.Equal(t, -1, ComparePoints(ab, 1, ab, 2))
	assert.Equal(t, 0, ComparePoints(cd, 1, cd, 1))
	assert.Equal(t, -1, ComparePoints(ab, 2, cd, 0))
	assert.Equal(t, 1, ComparePoints(ef, 0, cd, 2))
	assert.Equal(t, -1, ComparePoints(p, 1, cd, 0), "point before child precedes its content")
	assert.Equal(t, 1, ComparePoints(p, 2, cd, 2))
	assert.Equal(t, -1, ComparePoints(root, 0, ab, 0))
}

func TestSplitText(t *testing.T) {
	root := mustParse(t, `<p><strong>hello world</strong></p>`)
	p := root.FirstChild
	text := p.FirstChild.FirstChild

	idx := Split(p, text, 6)
	assert.Equal(t, 1, idx)
	assert.Equal(t, `<strong>hello </strong><strong>world</strong>`, MustInnerHTML(p))
}

func TestSplitAtEdgesDoesNotClone(t *testing.T) {
	root := mustParse(t, `<p><strong>hello</strong></p>`)
	p := root.FirstChild
	text := p.FirstChild.FirstChild

	assert.Equal(t, 0, Split(p, text, 0))
	assert.Equal(t, 1, Split(p, text, len("hello")))
	assert.Equal(t, `<strong>hello</strong>`, MustInnerHTML(p))
}

func TestExtract(t *testing.T) {
	root := mustParse(t, `<p>ab<em>cdef</em>gh</p>`)
	p := root.FirstChild
	ab := p.FirstChild
	cdef := ab.NextSibling.FirstChild

	frag, idx := Extract(p, ab, 1, cdef, 2)
	require.Equal(t, 2, frag.Len())
	assert.Equal(t, "bcd", frag.Text())
	assert.Equal(t, 1, idx)
	assert.Equal(t, `a<em>ef</em>gh`, MustInnerHTML(p))

	wrapped := frag.WrapIn(NewElement("strong"))
	wrapped.InsertBefore(p, ChildAt(p, idx))
	assert.Equal(t, `a<strong>b<em>cd</em></strong><em>ef</em>gh`, MustInnerHTML(p))
}

func TestExtractWithinOneTextRun(t *testing.T) {
	root := mustParse(t, `<p><u>abcdef</u></p>`)
	p := root.FirstChild
	text := p.FirstChild.FirstChild

	frag, idx := Extract(p, text, 2, text, 4)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "cd", frag.Text())
	assert.Equal(t, `<u>ab</u><u>ef</u>`, MustInnerHTML(p))
}

func TestAttributes(t *testing.T) {
	el := NewElement("A", html.Attribute{Key: "href", Val: "x"})
	assert.Equal(t, "a", Tag(el))

	v, ok := GetAttr(el, "href")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	SetAttr(el, "href", "y")
	SetAttr(el, "class", "c")
	v, _ = GetAttr(el, "href")
	assert.Equal(t, "y", v)

	RemoveAttr(el, "href")
	_, ok = GetAttr(el, "href")
	assert.False(t, ok)
	assert.Len(t, el.Attr, 1)
}

func TestSiblingNavigationSkipsWhitespace(t *testing.T) {
	root := mustParse(t, "<ul>\n <li>a</li>\n <li>b</li>\n</ul>")
	ul := root.FirstChild
	var items []*html.Node
	for c := ul.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c) {
			items = append(items, c)
		}
	}
	require.Len(t, items, 2)
	assert.Equal(t, items[1], NextElement(items[0]))
	assert.Equal(t, items[0], PrevElement(items[1]))
	assert.Nil(t, PrevElement(items[0]))
}

func TestFragmentText(t *testing.T) {
	root := mustParse(t, `<p>ab<em>c<u>d</u></em><br>e</p>`)
	p := root.FirstChild
	frag := &Fragment{}
	for c := p.FirstChild; c != nil; {
		next := c.NextSibling
		p.RemoveChild(c)
		frag.Append(c)
		c = next
	}
	require.Equal(t, 4, frag.Len())
	assert.Equal(t, "abcde", frag.Text())
	assert.Equal(t, "", (&Fragment{}).Text())
}
