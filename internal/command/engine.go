// Package command implements the editing commands: inline wrap and unwrap,
// block retyping, list indentation and block merging.
//
// Every command takes the root and the selection explicitly and returns the
// selection the caller should install. A command either completes or leaves
// the tree untouched; nothing is reported as an error.
package command

import (
	"slices"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"rtedit/internal/config"
	"rtedit/internal/cursor"
	"rtedit/internal/dom"
	"rtedit/internal/list"
	"rtedit/internal/schema"
	"rtedit/internal/selection"
)

// Phase is a step of a command invocation
type Phase int

const (
	Resolving Phase = iota
	Mutating
	Normalizing
	Restoring
	Done
)

var phaseNames = [...]string{"resolving", "mutating", "normalizing", "restoring", "done"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Result describes the outcome of a command
type Result struct {
	// Selection is the range to install after the command. It is the
	// original range when nothing changed, and a caret at the start of the
	// first surviving selected block when restoring failed.
	Selection selection.Range
	// Restored is set when Selection was rebuilt after a mutation
	Restored bool
	// Changed is set when the tree was modified
	Changed bool
}

// Engine runs commands against a tree. It holds no selection state and is
// not safe for concurrent use on the same tree.
type Engine struct {
	cfg config.Config
	log *zap.Logger
}

// New creates an engine; a nil logger disables logging
func New(cfg config.Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxListDepth < 1 {
		cfg.MaxListDepth = list.DefaultMaxDepth
	}
	if !schema.RolesOf(cfg.DefaultBlock).Has(schema.FirstLevel) {
		cfg.DefaultBlock = "p"
	}
	return &Engine{cfg: cfg, log: log}
}

// NewWithDefaults creates an engine with the default configuration and no
// logging
func NewWithDefaults() *Engine {
	return New(config.Default(), nil)
}

// invocation carries the state of one running command
type invocation struct {
	log  *zap.Logger
	root *html.Node
	r    selection.Range
	pos  cursor.Position
	// selected holds the blocks r covered before anything was mutated
	selected []*html.Node
}

// begin enters the resolving phase. It reports false when the selection does
// not lie inside root.
func (e *Engine) begin(name string, root *html.Node, r selection.Range) (*invocation, bool) {
	x := &invocation{
		log:  e.log.With(zap.String("command", name)),
		root: root,
		r:    r,
	}
	x.enter(Resolving)
	if root == nil || !r.Valid(root) {
		return x, false
	}
	x.pos = cursor.Snapshot(root, r)
	x.selected = selection.SelectedBlocks(root, r)
	x.log.Debug("selection resolved", zap.Stringer("range", r), zap.Stringer("position", x.pos))
	return x, true
}

func (x *invocation) enter(p Phase) {
	x.log.Debug("command phase", zap.Stringer("phase", p))
}

// noop finishes without a mutation
func (x *invocation) noop(reason string) Result {
	x.log.Debug("nothing to do", zap.String("reason", reason))
	x.enter(Done)
	return Result{Selection: x.r}
}

// current re-resolves the original selection against the tree as it is now
func (x *invocation) current() (selection.Range, bool) {
	return cursor.Restore(x.root, x.pos)
}

// restore finishes a mutating command by rebuilding the selection from pos.
// When that fails the selection falls back to a caret at the start of the
// first selected block still in the tree, or to no selection at all.
func (x *invocation) restore(pos cursor.Position) Result {
	x.enter(Restoring)
	res := Result{Changed: true}
	if r, ok := cursor.Restore(x.root, pos); ok {
		res.Selection, res.Restored = r, true
	} else {
		res.Selection = x.fallback()
		x.log.Debug("selection could not be restored", zap.Stringer("position", pos), zap.Stringer("fallback", res.Selection))
	}
	x.enter(Done)
	return res
}

func (x *invocation) fallback() selection.Range {
	for _, b := range x.selected {
		if dom.Contains(x.root, b) {
			start := selection.BlockRange(x.root, b).Start
			return selection.Caret(start.Node, start.Offset)
		}
	}
	return selection.Range{}
}

// eachBlock calls fn for every selected block with the original selection,
// resolved afresh and clipped to that block. Blocks are visited in document
// order, or in reverse when reverse is set, and are tracked by identity so
// a block count changed by an earlier call never shifts a later one. It
// reports whether any call returned true.
func (x *invocation) eachBlock(reverse bool, fn func(block *html.Node, r selection.Range) bool) bool {
	blocks := slices.Clone(x.selected)
	if reverse {
		slices.Reverse(blocks)
	}
	changed := false
	for _, block := range blocks {
		if !dom.Contains(x.root, block) {
			continue
		}
		r, ok := x.current()
		if !ok {
			x.log.Debug("selection lost between blocks", zap.Stringer("position", x.pos))
			break
		}
		clipped, ok := selection.Clip(r, x.root, block)
		if !ok {
			continue
		}
		if fn(block, clipped) {
			changed = true
		}
	}
	return changed
}
