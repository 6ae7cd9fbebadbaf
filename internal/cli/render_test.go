package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTableSeparatorAndAlignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Account", "Balance"},
		Rows: [][]string{
			{"Fixed", "$500"},
			{"---"},
			{"Total", "$1,500"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 7)
	assert.Contains(t, out, "Fixed")
	assert.Contains(t, out, "$1,500")
	assert.Contains(t, lines[4], "┼")
}

func TestRenderTableEmpty(t *testing.T) {
	assert.Equal(t, "", RenderTable(Table{}))
}

func TestRenderProgressBar(t *testing.T) {
	out := RenderProgressBar(50, 10)
	assert.Equal(t, 5, strings.Count(out, "█"))
	assert.Contains(t, out, "50%")

	out = RenderProgressBar(250, 10)
	assert.Equal(t, 10, strings.Count(out, "█"))
}
