package editor

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff describes how after differs from before: unchanged text is copied,
// removed text is written as [-text-] and inserted text as {+text+}
func Diff(before, after string) string {
	var sb strings.Builder
	for _, d := range diff(before, after) {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		}
	}
	return sb.String()
}

// ColorDiff is Diff for terminals: removed and inserted text are colored
// instead of bracketed
func ColorDiff(before, after string) string {
	return diffmatchpatch.New().DiffPrettyText(diff(before, after))
}

func diff(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	return dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))
}
