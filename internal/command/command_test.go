package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"rtedit/internal/config"
	"rtedit/internal/dom"
	"rtedit/internal/selection"
)

type op func(e *Engine, root *html.Node, r selection.Range) Result

// run parses marked input, applies fn and renders the tree with the
// returned selection
func run(t *testing.T, in string, fn op) (string, Result) {
	t.Helper()
	root, r, err := selection.ParseMarked(in)
	require.NoError(t, err)
	res := fn(NewWithDefaults(), root, r)
	out, err := selection.RenderMarked(root, res.Selection)
	require.NoError(t, err)
	return out, res
}

func wrap(tag string, attrs ...html.Attribute) op {
	return func(e *Engine, root *html.Node, r selection.Range) Result {
		return e.Wrap(root, r, tag, attrs...)
	}
}

func unwrap(tag string) op {
	return func(e *Engine, root *html.Node, r selection.Range) Result {
		return e.Unwrap(root, r, tag)
	}
}

func retype(tags ...string) op {
	return func(e *Engine, root *html.Node, r selection.Range) Result {
		return e.ChangeBlockType(root, r, tags)
	}
}

func merge(dir Direction, key string) op {
	return func(e *Engine, root *html.Node, r selection.Range) Result {
		return e.MergeBlocks(root, r, dir, key)
	}
}

func execute(cmd Command) op {
	return func(e *Engine, root *html.Node, r selection.Range) Result {
		return e.Execute(root, r, cmd)
	}
}

func ptr(s string) *string { return &s }

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inside one text run", `<p>a[bc]d</p>`, `<p>a<strong>[bc]</strong>d</p>`},
		{"across blocks", `<p>a[b</p><p>c]d</p>`, `<p>a<strong>[b</strong></p><p><strong>c]</strong>d</p>`},
		{"extends existing mark", `<p><strong>a[b</strong>c]d</p>`, `<p><strong>a[bc]</strong>d</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res := run(t, tt.in, wrap("strong"))
			assert.True(t, res.Changed)
			assert.True(t, res.Restored)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestWrapAcrossNestedItems(t *testing.T) {
	// the empty nested item must survive, or every later item shifts by one
	out, res := run(t,
		`<ul><li>a[b<ul><li></li><li>c</li></ul></li><li>d]e</li><li>f</li></ul>`,
		wrap("em"))
	assert.True(t, res.Changed)
	assert.True(t, res.Restored)
	assert.Equal(t,
		`<ul><li>a<em>[b</em><ul><li></li><li><em>c</em></li></ul></li><li><em>d]</em>e</li><li>f</li></ul>`,
		out)
}

func TestWrapRejected(t *testing.T) {
	for _, tc := range []struct {
		in  string
		tag string
	}{
		{`<p>a|b</p>`, "strong"},
		{`<p>a[b]c</p>`, "p"},
		{`<p>a[b]c</p>`, "img"},
		{`<p>a[b]c</p>`, ""},
	} {
		out, res := run(t, tc.in, wrap(tc.tag))
		assert.False(t, res.Changed, tc.tag)
		assert.Equal(t, tc.in, out)
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "splits the mark around the selection",
			in:   `<p><strong>a[bc]d</strong></p>`,
			want: `<p><strong>a</strong>[bc]<strong>d</strong></p>`,
		},
		{
			name: "keeps other marks",
			in:   `<p><strong><u><i>bold [bolditalic]</i>par</u></strong>italic text</p>`,
			want: `<p><strong><i><u>bold </u></i></strong><i><u>[bolditalic]</u></i><strong><u>par</u></strong>italic text</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res := run(t, tt.in, unwrap("strong"))
			assert.True(t, res.Changed)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestUnwrapWithoutMarkLeavesTree(t *testing.T) {
	root, r, err := selection.ParseMarked(`<p>a[b<em>c]d</em></p>`)
	require.NoError(t, err)
	first := root.FirstChild.FirstChild

	res := NewWithDefaults().Unwrap(root, r, "strong")
	assert.False(t, res.Changed)
	assert.Equal(t, r, res.Selection)
	assert.Same(t, first, root.FirstChild.FirstChild)
	assert.Equal(t, "ab", first.Data)
}

func TestChangeBlockType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		tags []string
		want string
	}{
		{"paragraph to list", `<p>Para|graph</p>`, []string{"ul", "li"}, `<ul><li>Para|graph</li></ul>`},
		{"list to paragraph", `<ul><li>Para|graph</li></ul>`, []string{"P"}, `<p>Para|graph</p>`},
		{"several paragraphs", `<p>[a</p><p>b]</p>`, []string{"ol", "li"}, `<ol><li>[a</li><li>b]</li></ol>`},
		{
			"middle item to another list",
			`<ul><li>a</li><li>b|</li><li>c</li></ul>`,
			[]string{"ol", "li"},
			`<ul><li>a</li></ul><ol><li>b|</li></ol><ul><li>c</li></ul>`,
		},
		{
			"middle item to heading",
			`<ul><li>a</li><li>b|</li><li>c</li></ul>`,
			[]string{"h2"},
			`<ul><li>a</li></ul><h2>b|</h2><ul><li>c</li></ul>`,
		},
		{"joins the list before", `<ul><li>a</li></ul><p>b|</p>`, []string{"ul", "li"}, `<ul><li>a</li><li>b|</li></ul>`},
		{
			"item with a nested list to heading",
			`<ul><li>a</li><li>|b</li><ul><li>c</li></ul><li>d</li></ul>`,
			[]string{"h1"},
			`<ul><li>a</li></ul><h1>|b</h1><ul><li>c</li><li>d</li></ul>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res := run(t, tt.in, retype(tt.tags...))
			assert.True(t, res.Changed)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestChangeBlockTypeRejected(t *testing.T) {
	for _, tags := range [][]string{{"h1"}, {"strong"}, {"li", "ul"}, nil} {
		in := `<h1>a|b</h1>`
		out, res := run(t, in, retype(tags...))
		assert.False(t, res.Changed, tags)
		assert.Equal(t, in, out)
	}
}

func TestIndentRoundTrip(t *testing.T) {
	in := `<ul><li>1</li><li>2|</li><li>3</li></ul>`
	root, r, err := selection.ParseMarked(in)
	require.NoError(t, err)
	e := NewWithDefaults()

	res := e.PlusIndent(root, r)
	require.True(t, res.Changed)
	out, err := selection.RenderMarked(root, res.Selection)
	require.NoError(t, err)
	assert.Equal(t, `<ul><li>1</li><ul><li>2|</li></ul><li>3</li></ul>`, out)

	res = e.MinusIndent(root, res.Selection)
	require.True(t, res.Changed)
	out, err = selection.RenderMarked(root, res.Selection)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestIndentRejected(t *testing.T) {
	for _, in := range []string{
		`<ul><li>1|</li><li>2</li></ul>`,
		`<p>a|</p>`,
	} {
		out, res := run(t, in, func(e *Engine, root *html.Node, r selection.Range) Result {
			return e.PlusIndent(root, r)
		})
		assert.False(t, res.Changed, in)
		assert.Equal(t, in, out)

		out, res = run(t, in, func(e *Engine, root *html.Node, r selection.Range) Result {
			return e.MinusIndent(root, r)
		})
		assert.False(t, res.Changed, in)
		assert.Equal(t, in, out)
	}
}

func TestIndentRespectsMaxDepth(t *testing.T) {
	cfg := config.Default()
	cfg.MaxListDepth = 1
	root, r, err := selection.ParseMarked(`<ul><li>1</li><li>2|</li></ul>`)
	require.NoError(t, err)
	res := New(cfg, nil).PlusIndent(root, r)
	assert.False(t, res.Changed)
}

func TestMergeBlocks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		dir  Direction
		key  string
		want string
	}{
		{
			name: "backward into a paragraph",
			in:   `<p>zero</p><h1>|first <em>second</em></h1>`,
			want: `<p>zero|first <em>second</em></p>`,
		},
		{
			name: "forward pulls the next block",
			in:   `<p>zero|</p><h1>first <em>second</em></h1>`,
			dir:  Forward,
			want: `<p>zero|first <em>second</em></p>`,
		},
		{name: "removes an empty block", in: `<p>ab</p><p>|</p>`, want: `<p>ab|</p>`},
		{name: "types a printable key", in: `<p>ab</p><p>|cd</p>`, key: "x", want: `<p>abx|cd</p>`},
		{name: "ignores key names", in: `<p>ab</p><p>|cd</p>`, key: "Backspace", want: `<p>ab|cd</p>`},
		{name: "joins list items", in: `<ul><li>a</li><li>|b</li></ul>`, want: `<ul><li>a|b</li></ul>`},
		{name: "drops the emptied list", in: `<p>a</p><ul><li>|b</li></ul>`, want: `<p>a|b</p>`},
		{
			name: "lifts the nested list of a joined item",
			in:   `<p>a</p><ul><li>|b<ul><li>c</li></ul></li></ul>`,
			want: `<p>a|b</p><ul><li>c</li></ul>`,
		},
		{
			name: "keeps the nested list under the previous item",
			in:   `<ul><li>a</li><li>|b<ul><li>c</li></ul></li></ul>`,
			want: `<ul><li>a|b</li><ul><li>c</li></ul></ul>`,
		},
		{name: "deletes across blocks", in: `<p>a[b</p><p>c</p><p>d]e</p>`, want: `<p>a|e</p>`},
		{name: "replaces a range inside a block", in: `<p>a[bc]d</p>`, key: "x", want: `<p>ax|d</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res := run(t, tt.in, merge(tt.dir, tt.key))
			assert.True(t, res.Changed)
			assert.True(t, res.Restored)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestMergeBlocksNoop(t *testing.T) {
	for _, tc := range []struct {
		in  string
		dir Direction
	}{
		{`<p>ab</p><p>c|d</p>`, Backward},
		{`<p>|ab</p><p>cd</p>`, Backward},
		{`<p>ab</p><p>c|d</p>`, Forward},
		{`<p>ab</p><p>cd|</p>`, Forward},
	} {
		out, res := run(t, tc.in, merge(tc.dir, ""))
		assert.False(t, res.Changed, tc.in)
		assert.Equal(t, tc.in, out)
	}
}

func TestPrintable(t *testing.T) {
	for key, want := range map[string]string{
		"a":         "a",
		" ":         " ",
		"é":         "é",
		"👍🏽":        "👍🏽",
		"":          "",
		"Backspace": "",
		"\t":        "",
		"ab":        "",
	} {
		assert.Equal(t, want, Printable(key), "%q", key)
	}
}

func TestInsertImage(t *testing.T) {
	out, res := run(t, `<p>a|b</p>`, execute(Command{
		Action:     Image,
		Attributes: Attributes{Image: ptr("x.png")},
	}))
	assert.True(t, res.Changed)
	assert.Equal(t, `<p>a<img src="x.png"/>|b</p>`, out)

	out, res = run(t, `<p>a|b</p>`, execute(Command{Action: Image}))
	assert.False(t, res.Changed)
	assert.Equal(t, `<p>a|b</p>`, out)
}

func TestLink(t *testing.T) {
	out, _ := run(t, `<p>a[bc]d</p>`, execute(Command{
		Action:     Link,
		Attributes: Attributes{Href: ptr("/x")},
	}))
	assert.Equal(t, `<p>a<a href="/x">[bc]</a>d</p>`, out)

	out, _ = run(t, `<p><a href="/old">a[b</a>c]d</p>`, execute(Command{
		Action:     Link,
		Attributes: Attributes{Href: ptr("/new")},
	}))
	assert.Equal(t, `<p><a href="/old">a</a><a href="/new">[bc]</a>d</p>`, out)

	out, _ = run(t, `<p><a href="/old">a[bc]d</a></p>`, execute(Command{Action: Link}))
	assert.Equal(t, `<p><a href="/old">a</a>[bc]<a href="/old">d</a></p>`, out)
}

func TestExecuteTogglesTags(t *testing.T) {
	root, r, err := selection.ParseMarked(`<p><strong>a[bc]d</strong></p>`)
	require.NoError(t, err)
	e := NewWithDefaults()

	res := e.Execute(root, r, Command{Action: Tag, Tags: []string{"strong"}})
	out, err := selection.RenderMarked(root, res.Selection)
	require.NoError(t, err)
	assert.Equal(t, `<p><strong>a</strong>[bc]<strong>d</strong></p>`, out)

	res = e.Execute(root, res.Selection, Command{Action: Tag, Tags: []string{"STRONG"}})
	out, err = selection.RenderMarked(root, res.Selection)
	require.NoError(t, err)
	assert.Equal(t, `<p><strong>a[bc]d</strong></p>`, out)
}

func TestExecuteTagWithClass(t *testing.T) {
	out, _ := run(t, `<p>a[b]c</p>`, execute(Command{
		Action:     Tag,
		Tags:       []string{"span"},
		Attributes: Attributes{Class: ptr("hl")},
	}))
	assert.Equal(t, `<p>a<span class="hl">[b]</span>c</p>`, out)
}

func TestExecuteTogglesBlockType(t *testing.T) {
	out, _ := run(t, `<h1>a|</h1>`, execute(Command{Action: FirstLevel, Tags: []string{"h1"}}))
	assert.Equal(t, `<p>a|</p>`, out)

	out, _ = run(t, `<p>a|</p>`, execute(Command{
		Action:     FirstLevel,
		Tags:       []string{"h3"},
		Attributes: Attributes{Class: ptr("title")},
	}))
	assert.Equal(t, `<h3 class="title">a|</h3>`, out)
}

func TestEnabled(t *testing.T) {
	root, r, err := selection.ParseMarked(`<ul><li>1</li><li>2|</li></ul>`)
	require.NoError(t, err)
	e := NewWithDefaults()

	assert.True(t, e.Enabled(root, r, PlusIndent))
	assert.False(t, e.Enabled(root, r, MinusIndent))
	assert.True(t, e.Enabled(root, r, FirstLevel))
	assert.False(t, e.Enabled(root, r, Tag))
	assert.True(t, e.Enabled(root, r, Image))
	assert.False(t, e.Enabled(root, selection.Range{}, FirstLevel))
}

func TestParseAction(t *testing.T) {
	for a, name := range actionNames {
		got, err := ParseAction(" " + name + " ")
		require.NoError(t, err)
		assert.Equal(t, a, got)
		assert.Equal(t, name, a.String())
	}
	_, err := ParseAction("bold")
	assert.Error(t, err)
	assert.Equal(t, "action(42)", Action(42).String())
}

func TestPhasesAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := New(config.Default(), zap.New(core))

	root, r, err := selection.ParseMarked(`<p>a[b]c</p>`)
	require.NoError(t, err)
	require.True(t, e.Wrap(root, r, "em").Changed)

	var phases []string
	for _, entry := range logs.FilterMessage("command phase").All() {
		assert.Equal(t, "wrap", entry.ContextMap()["command"])
		phases = append(phases, entry.ContextMap()["phase"].(string))
	}
	assert.Equal(t, []string{"resolving", "mutating", "normalizing", "restoring", "done"}, phases)
}

func TestNoopKeepsSelection(t *testing.T) {
	root, r, err := selection.ParseMarked(`<p>a|b</p>`)
	require.NoError(t, err)
	other, _, err := selection.ParseMarked(`<p>x|</p>`)
	require.NoError(t, err)

	res := NewWithDefaults().Wrap(other, r, "em")
	assert.False(t, res.Changed)
	assert.Equal(t, r, res.Selection)
	assert.Equal(t, `<p>ab</p>`, renderPlain(t, root))
}

func TestFailedRestoreLeavesValidSelection(t *testing.T) {
	root, r, err := selection.ParseMarked(`<p>a[b</p><p>c]d</p>`)
	require.NoError(t, err)
	x, ok := NewWithDefaults().begin("test", root, r)
	require.True(t, ok)

	dom.Detach(root.FirstChild)
	res := x.restore(x.pos)
	assert.True(t, res.Changed)
	assert.False(t, res.Restored)
	require.True(t, res.Selection.Valid(root))
	out, err := selection.RenderMarked(root, res.Selection)
	require.NoError(t, err)
	assert.Equal(t, `<p>|cd</p>`, out)

	dom.RemoveChildren(root)
	res = x.restore(x.pos)
	assert.False(t, res.Restored)
	assert.True(t, res.Selection.IsZero())
}

func TestExecuteIgnoresForeignSelection(t *testing.T) {
	root, _, err := selection.ParseMarked(`<p>ab|</p>`)
	require.NoError(t, err)
	other, r, err := selection.ParseMarked(`<p><strong>x[y]z</strong></p>`)
	require.NoError(t, err)

	e := NewWithDefaults()
	assert.NotPanics(t, func() {
		res := e.Execute(root, r, Command{Action: Tag, Tags: []string{"strong", "em"}})
		assert.False(t, res.Changed)
		assert.Equal(t, r, res.Selection)
	})
	assert.Equal(t, `<p>ab</p>`, renderPlain(t, root))
	assert.Equal(t, `<p><strong>xyz</strong></p>`, renderPlain(t, other))
}

func renderPlain(t *testing.T, root *html.Node) string {
	t.Helper()
	out, err := selection.RenderMarked(root, selection.Range{})
	require.NoError(t, err)
	return out
}
