package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Document represents a complete HTML document with a designated editable root
// This interface can be implemented by any HTML parsing library
type Document interface {
	// Root returns the editable root element
	Root() *html.Node

	// Serialization
	HTML() (string, error)
	InnerHTML() (string, error)
}

// Parser handles parsing HTML documents
type Parser interface {
	Parse(html string) (Document, error)
	ParseFile(filename string) (Document, error)
}

// Fragment is an ordered list of nodes detached from any tree. It is the
// unit that range edits extract, wrap and reinsert.
type Fragment struct {
	Nodes []*html.Node
}

// Len returns the number of top-level nodes in the fragment
func (f *Fragment) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Nodes)
}

// Append adds detached nodes to the end of the fragment
func (f *Fragment) Append(nodes ...*html.Node) {
	f.Nodes = append(f.Nodes, nodes...)
}

// AppendTo moves every fragment node to the end of parent and empties the fragment
func (f *Fragment) AppendTo(parent *html.Node) {
	for _, n := range f.Nodes {
		parent.AppendChild(n)
	}
	f.Nodes = nil
}

// InsertBefore moves every fragment node in front of ref (appending when ref
// is nil) and empties the fragment
func (f *Fragment) InsertBefore(parent, ref *html.Node) {
	for _, n := range f.Nodes {
		parent.InsertBefore(n, ref)
	}
	f.Nodes = nil
}

// WrapIn moves the fragment contents into el and returns a fragment holding el
func (f *Fragment) WrapIn(el *html.Node) *Fragment {
	f.AppendTo(el)
	return &Fragment{Nodes: []*html.Node{el}}
}

// Text returns the concatenated text content of the fragment
func (f *Fragment) Text() string {
	var sb strings.Builder
	for _, n := range f.Nodes {
		sb.WriteString(TextContent(n))
	}
	return sb.String()
}
