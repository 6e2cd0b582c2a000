package schema

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Role is a semantic display role a tag name can carry
type Role uint8

const (
	// Void elements are self-closing, never merge and never gain children
	Void Role = 1 << iota
	// NotCollapsible elements are never merged with an adjacent same-named element
	NotCollapsible
	// FirstLevel elements are the direct structural units of a document
	FirstLevel
	// List marks a list item
	List
	// ListWrapper marks an ordered or unordered list container
	ListWrapper
	// Link marks a hyperlink
	Link
)

// MarkerTag delimits the span being unwrapped until the normalizer strips it
const MarkerTag = "x-unwrap-mark"

// Has reports whether every role in other is present in r
func (r Role) Has(other Role) bool {
	return r&other == other
}

// Any reports whether at least one role in other is present in r
func (r Role) Any(other Role) bool {
	return r&other != 0
}

func (r Role) String() string {
	if r == 0 {
		return "none"
	}
	names := []struct {
		role Role
		name string
	}{
		{Void, "void"},
		{NotCollapsible, "not-collapsible"},
		{FirstLevel, "first-level"},
		{List, "list"},
		{ListWrapper, "list-wrapper"},
		{Link, "link"},
	}
	var parts []string
	for _, n := range names {
		if r.Has(n.role) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

var roles = map[atom.Atom]Role{
	atom.Br:    Void,
	atom.Img:   Void,
	atom.Hr:    Void,
	atom.Wbr:   Void,
	atom.Input: Void,

	atom.A: NotCollapsible | Link,

	atom.P:   FirstLevel | NotCollapsible,
	atom.H1:  FirstLevel | NotCollapsible,
	atom.H2:  FirstLevel | NotCollapsible,
	atom.H3:  FirstLevel | NotCollapsible,
	atom.H4:  FirstLevel | NotCollapsible,
	atom.H5:  FirstLevel | NotCollapsible,
	atom.H6:  FirstLevel | NotCollapsible,
	atom.Pre: FirstLevel | NotCollapsible,

	atom.Li: List | NotCollapsible,

	atom.Ul: ListWrapper,
	atom.Ol: ListWrapper,
}

const (
	priorityUnknown = 0
	priorityOther   = 10
)

var priorities = map[atom.Atom]int{
	atom.Ul:     100,
	atom.Ol:     100,
	atom.Li:     90,
	atom.Strong: 50,
	atom.B:      50,
	atom.Em:     40,
	atom.I:      40,

	atom.U:      priorityOther,
	atom.S:      priorityOther,
	atom.Del:    priorityOther,
	atom.Ins:    priorityOther,
	atom.Sub:    priorityOther,
	atom.Sup:    priorityOther,
	atom.Code:   priorityOther,
	atom.Mark:   priorityOther,
	atom.Small:  priorityOther,
	atom.Span:   priorityOther,
	atom.A:      priorityOther,
	atom.Strike: priorityOther,
}

// Normalize lower-cases a tag name the way the HTML parser stores it
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// RolesOf returns the roles carried by a tag name
func RolesOf(tag string) Role {
	tag = Normalize(tag)
	if tag == MarkerTag {
		return NotCollapsible
	}
	return roles[atom.Lookup([]byte(tag))]
}

// PriorityOf returns the canonical ordering priority of a tag name; higher
// priorities nest outside lower ones
func PriorityOf(tag string) int {
	if p, ok := priorities[atom.Lookup([]byte(Normalize(tag)))]; ok {
		return p
	}
	return priorityUnknown
}

// RolesOfNode returns the roles of an element node, zero for anything else
func RolesOfNode(n *html.Node) Role {
	if n == nil || n.Type != html.ElementNode {
		return 0
	}
	return RolesOf(n.Data)
}

// IsVoid reports whether n is a void element
func IsVoid(n *html.Node) bool {
	return RolesOfNode(n).Has(Void)
}

// IsBlock reports whether n is a first-level block or a list item
func IsBlock(n *html.Node) bool {
	return RolesOfNode(n).Any(FirstLevel | List)
}

// IsFirstLevel reports whether n is a paragraph-like block
func IsFirstLevel(n *html.Node) bool {
	return RolesOfNode(n).Has(FirstLevel)
}

// IsListItem reports whether n is a list item
func IsListItem(n *html.Node) bool {
	return RolesOfNode(n).Has(List)
}

// IsListWrapper reports whether n is a list container
func IsListWrapper(n *html.Node) bool {
	return RolesOfNode(n).Has(ListWrapper)
}

// IsStructural reports whether n keeps its nesting position during
// canonicalization
func IsStructural(n *html.Node) bool {
	return RolesOfNode(n).Any(FirstLevel | List | ListWrapper)
}

// IsListTag reports whether tag names a list wrapper
func IsListTag(tag string) bool {
	return RolesOf(tag).Has(ListWrapper)
}
