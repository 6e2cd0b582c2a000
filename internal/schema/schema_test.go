package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolesOf(t *testing.T) {
	tests := []struct {
		tag  string
		want Role
	}{
		{"br", Void},
		{"IMG", Void},
		{"a", NotCollapsible | Link},
		{"p", FirstLevel | NotCollapsible},
		{"H1", FirstLevel | NotCollapsible},
		{"li", List | NotCollapsible},
		{"ul", ListWrapper},
		{"OL", ListWrapper},
		{"strong", 0},
		{"my-widget", 0},
		{MarkerTag, NotCollapsible},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RolesOf(tt.tag), "roles of %q", tt.tag)
	}
}

func TestPriorityOrder(t *testing.T) {
	assert.Greater(t, PriorityOf("ul"), PriorityOf("li"))
	assert.Greater(t, PriorityOf("li"), PriorityOf("strong"))
	assert.Greater(t, PriorityOf("strong"), PriorityOf("em"))
	assert.Greater(t, PriorityOf("em"), PriorityOf("u"))
	assert.Greater(t, PriorityOf("u"), PriorityOf("blink-tag"))
	assert.Equal(t, PriorityOf("b"), PriorityOf("STRONG"))
	assert.Equal(t, PriorityOf("i"), PriorityOf("em"))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "none", Role(0).String())
	assert.Equal(t, "not-collapsible|link", (NotCollapsible | Link).String())
}
