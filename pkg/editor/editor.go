// Package editor is the host facing surface of the editing engine: it parses
// documents, keeps the current selection and runs commands against them.
package editor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"rtedit/internal/command"
	"rtedit/internal/config"
	"rtedit/internal/cursor"
	"rtedit/internal/dom"
	"rtedit/internal/normalize"
	"rtedit/internal/selection"
)

type (
	// Action selects what a Command does
	Action = command.Action
	// Command is a formatting request
	Command = command.Command
	// Attributes are the optional attributes of a Command
	Attributes = command.Attributes
	// Direction says which neighbour a delete joins with
	Direction = command.Direction
	// Range is a selection inside a document
	Range = selection.Range
)

const (
	Tag         = command.Tag
	FirstLevel  = command.FirstLevel
	PlusIndent  = command.PlusIndent
	MinusIndent = command.MinusIndent
	Image       = command.Image
	Link        = command.Link

	Backward = command.Backward
	Forward  = command.Forward
)

// ErrNoMarkers is returned by ParseMarked when the document carries no
// selection markers
var ErrNoMarkers = selection.ErrNoMarkers

// ErrSelection is returned when a range does not lie inside the editable root
var ErrSelection = errors.New("selection is outside the editable root")

// ParseAction looks an action up by name, ignoring case
func ParseAction(name string) (Action, error) {
	return command.ParseAction(name)
}

// Actions lists every action in the order they are declared
func Actions() []Action {
	return []Action{Tag, FirstLevel, PlusIndent, MinusIndent, Image, Link}
}

// Editor runs commands against documents it parsed
type Editor struct {
	config config.Config
	engine *command.Engine
	parser dom.Parser
	log    *zap.Logger
}

// New creates an editor with the given configuration; a nil logger disables
// logging
func New(cfg config.Config, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{
		config: cfg,
		engine: command.New(cfg, log.Named("command")),
		parser: dom.NewParser(cfg.RootSelector),
		log:    log,
	}
}

// NewWithDefaults creates an editor with the default configuration
func NewWithDefaults() *Editor {
	return New(config.Default(), nil)
}

// Config returns the configuration the editor runs with
func (ed *Editor) Config() config.Config {
	return ed.config
}

// Document is a parsed document together with its current selection
type Document struct {
	doc dom.Document
	sel selection.Range
}

// Parse parses an HTML document. The selection starts out empty.
func (ed *Editor) Parse(content string) (*Document, error) {
	doc, err := ed.parser.Parse(content)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// ParseFile parses an HTML document from a file
func (ed *Editor) ParseFile(filename string) (*Document, error) {
	doc, err := ed.parser.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// ParseMarked parses a document whose text carries selection markers ("["
// and "]" around a range, "|" for a caret) and selects what they describe
func (ed *Editor) ParseMarked(content string) (*Document, error) {
	d, err := ed.Parse(content)
	if err != nil {
		return nil, err
	}
	if d.sel, err = selection.Unmark(d.Root()); err != nil {
		return nil, fmt.Errorf("unable to read selection: %w", err)
	}
	return d, nil
}

// Root returns the editable root element
func (d *Document) Root() *html.Node {
	return d.doc.Root()
}

// Selection returns the current selection
func (d *Document) Selection() Range {
	return d.sel
}

// Select installs r as the current selection
func (d *Document) Select(r Range) error {
	if !r.Valid(d.Root()) {
		return ErrSelection
	}
	d.sel = r
	return nil
}

// HTML renders the whole document
func (d *Document) HTML() (string, error) {
	return d.doc.HTML()
}

// InnerHTML renders the content of the editable root
func (d *Document) InnerHTML() (string, error) {
	return d.doc.InnerHTML()
}

// MarkedHTML renders the content of the editable root with the selection
// written back as markers
func (d *Document) MarkedHTML() (string, error) {
	return selection.RenderMarked(d.Root(), d.sel)
}

// ExecuteCommand runs cmd on the current selection and installs the
// selection the command returns. It reports whether the document changed.
func (ed *Editor) ExecuteCommand(d *Document, cmd Command) bool {
	res := ed.engine.Execute(d.Root(), d.sel, cmd)
	d.sel = res.Selection
	if res.Changed && !res.Restored {
		ed.log.Warn("Selection could not be restored after command", zap.Stringer("action", cmd.Action))
	}
	return res.Changed
}

// SharedTags returns the tag names every selected leaf sits in
func (ed *Editor) SharedTags(d *Document) []string {
	if !d.sel.Valid(d.Root()) {
		return nil
	}
	return selection.SharedTags(d.sel, d.Root())
}

// IsOperationEnabled reports whether action would do something for the
// current selection
func (ed *Editor) IsOperationEnabled(d *Document, action Action) bool {
	return ed.engine.Enabled(d.Root(), d.sel, action)
}

// Delete handles a delete key at the current selection, joining blocks
// where it sits on a block boundary. key is typed at the join when it is a
// printable character.
func (ed *Editor) Delete(d *Document, dir Direction, key string) bool {
	res := ed.engine.MergeBlocks(d.Root(), d.sel, dir, key)
	d.sel = res.Selection
	return res.Changed
}

// Normalize rewrites the whole editable root into canonical form, carrying
// the selection over to the rebuilt nodes
func (ed *Editor) Normalize(d *Document) {
	root := d.Root()
	if !d.sel.Valid(root) {
		normalize.Block(root)
		d.sel = selection.Range{}
		return
	}
	pos := cursor.Snapshot(root, d.sel)
	normalize.Block(root)
	r, ok := cursor.Restore(root, pos)
	if !ok {
		r = selection.Range{}
	}
	d.sel = r
}

// Apply is a convenience function that runs cmd on a marked document with
// the default configuration and returns the marked result
func Apply(content string, cmd Command) (string, error) {
	return ApplyWithConfig(content, cmd, config.Default())
}

// ApplyWithConfig is a convenience function that runs cmd on a marked
// document with a custom configuration
func ApplyWithConfig(content string, cmd Command, cfg config.Config) (string, error) {
	ed := New(cfg, nil)
	d, err := ed.ParseMarked(content)
	if err != nil {
		return "", err
	}
	ed.ExecuteCommand(d, cmd)
	return d.MarkedHTML()
}
