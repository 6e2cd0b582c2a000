package dom

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// GoQueryDocument wraps goquery.Document to implement our Document interface
type GoQueryDocument struct {
	doc  *goquery.Document
	root *goquery.Selection
}

// GoQueryParser implements our Parser interface using goquery
type GoQueryParser struct {
	rootSelector string
}

// NewParser creates a new GoQuery-based HTML parser which designates the
// first element matching rootSelector as the editable root
func NewParser(rootSelector string) *GoQueryParser {
	if strings.TrimSpace(rootSelector) == "" {
		rootSelector = "body"
	}
	return &GoQueryParser{rootSelector: rootSelector}
}

// Parse parses HTML string into a Document
func (p *GoQueryParser) Parse(htmlStr string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.wrap(doc)
}

// ParseFile parses HTML file into a Document
func (p *GoQueryParser) ParseFile(filename string) (Document, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return p.Parse(string(content))
}

func (p *GoQueryParser) wrap(doc *goquery.Document) (*GoQueryDocument, error) {
	root := doc.Find(p.rootSelector).First()
	if root.Length() == 0 {
		return nil, fmt.Errorf("no element found for selector: %s", p.rootSelector)
	}
	return &GoQueryDocument{doc: doc, root: root}, nil
}

// Root returns the editable root element
func (d *GoQueryDocument) Root() *html.Node {
	return d.root.Get(0)
}

// HTML returns the complete HTML document as string
func (d *GoQueryDocument) HTML() (string, error) {
	s, err := d.doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize HTML: %w", err)
	}
	return s, nil
}

// InnerHTML returns the serialized children of the editable root
func (d *GoQueryDocument) InnerHTML() (string, error) {
	return InnerHTML(d.Root())
}

// InnerHTML renders the children of n
func InnerHTML(n *html.Node) (string, error) {
	s, err := goquery.NewDocumentFromNode(n).Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize HTML: %w", err)
	}
	return s, nil
}

// MustInnerHTML renders the children of n, returning an empty string when
// rendering fails
func MustInnerHTML(n *html.Node) string {
	s, _ := InnerHTML(n)
	return s
}

// ParseFragment parses an HTML snippet in body context and returns a detached
// <div> root holding the parsed nodes
func ParseFragment(content string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML fragment: %w", err)
	}
	root := NewElement("div")
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}
