package command

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"rtedit/internal/dom"
	"rtedit/internal/list"
	"rtedit/internal/schema"
	"rtedit/internal/selection"
)

// Action selects what a Command does
type Action int

const (
	// Tag toggles inline marks named by Command.Tags
	Tag Action = iota
	// FirstLevel changes the type of the selected blocks
	FirstLevel
	// PlusIndent nests list items one level deeper
	PlusIndent
	// MinusIndent moves list items one level up
	MinusIndent
	// Image inserts Attributes.Image at the caret
	Image
	// Link links the selection to Attributes.Href
	Link
)

var actionNames = map[Action]string{
	Tag:         "tag",
	FirstLevel:  "firstlevel",
	PlusIndent:  "plusindent",
	MinusIndent: "minusindent",
	Image:       "image",
	Link:        "link",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction looks an action up by name, ignoring case
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// Attributes are the attributes a command may set. A nil or empty value
// removes the attribute, anything else sets it.
type Attributes struct {
	Class *string
	Href  *string
	Image *string
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// class returns the class attribute to put on new elements
func (a Attributes) class() []html.Attribute {
	if c := value(a.Class); c != "" {
		return []html.Attribute{{Key: "class", Val: c}}
	}
	return nil
}

// applyClass sets or removes the class attribute of n
func (a Attributes) applyClass(n *html.Node) {
	if c := value(a.Class); c != "" {
		dom.SetAttr(n, "class", c)
		return
	}
	dom.RemoveAttr(n, "class")
}

// Command is a request from the host
type Command struct {
	Action     Action
	Tags       []string
	Attributes Attributes
}

// Execute runs a command. Tag toggles: a mark every selected leaf already
// has is removed, otherwise it is applied. FirstLevel toggles back to the
// default block when every selected block already has the requested type.
func (e *Engine) Execute(root *html.Node, r selection.Range, cmd Command) Result {
	e.log.Debug("execute", zap.Stringer("action", cmd.Action), zap.Strings("tags", cmd.Tags))
	switch cmd.Action {
	case Tag:
		return e.toggleTags(root, r, cmd)
	case FirstLevel:
		return e.toggleBlockType(root, r, cmd)
	case PlusIndent:
		return e.PlusIndent(root, r)
	case MinusIndent:
		return e.MinusIndent(root, r)
	case Image:
		return e.InsertImage(root, r, value(cmd.Attributes.Image), cmd.Attributes.class()...)
	case Link:
		return e.Link(root, r, value(cmd.Attributes.Href), cmd.Attributes.class()...)
	}
	e.log.Warn("Unknown action, nothing to do", zap.Stringer("action", cmd.Action))
	return Result{Selection: r}
}

func (e *Engine) toggleTags(root *html.Node, r selection.Range, cmd Command) Result {
	res := Result{Selection: r}
	if root == nil || !r.Valid(root) {
		return res
	}
	for _, tag := range cmd.Tags {
		tag = schema.Normalize(tag)
		var step Result
		if slices.Contains(selection.SharedTags(res.Selection, root), tag) {
			step = e.Unwrap(root, res.Selection, tag)
		} else {
			step = e.Wrap(root, res.Selection, tag, cmd.Attributes.class()...)
		}
		if step.Changed {
			res.Changed = true
			res.Restored = step.Restored
		}
		res.Selection = step.Selection
		if (step.Changed && !step.Restored) || !res.Selection.Valid(root) {
			break
		}
	}
	return res
}

func (e *Engine) toggleBlockType(root *html.Node, r selection.Range, cmd Command) Result {
	tags := cmd.Tags
	if bt, ok := parseBlockType(tags); ok && root != nil && r.Valid(root) {
		blocks := selection.SelectedBlocks(root, r)
		all := len(blocks) > 0
		for _, b := range blocks {
			if !bt.matches(b) {
				all = false
				break
			}
		}
		if all {
			tags = []string{e.cfg.DefaultBlock}
		}
	}
	return e.changeBlockType(root, r, tags, cmd.Attributes.applyClass)
}

// Enabled reports whether action would do something for the selection
func (e *Engine) Enabled(root *html.Node, r selection.Range, action Action) bool {
	if root == nil || !r.Valid(root) {
		return false
	}
	switch action {
	case Tag, Link:
		return !r.Collapsed() && len(selection.SelectedLeaves(r)) > 0
	case FirstLevel:
		return len(selection.SelectedBlocks(root, r)) > 0
	case PlusIndent:
		return list.CanIndent(selection.SelectedBlocks(root, r), e.cfg.MaxListDepth)
	case MinusIndent:
		return list.CanOutdent(selection.SelectedBlocks(root, r))
	case Image:
		return selection.EnclosingBlock(root, r.Start.Node) != nil
	}
	return false
}
