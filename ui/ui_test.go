package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainUIOutput(t *testing.T) {
	var buf bytes.Buffer
	u := NewPlainUI(&buf)

	u.Info("block %d", 42)
	u.Error("boom")
	u.Indent().Info("nested")
	u.Indent().KeyValue([][2]string{{"Symbol", "USDC"}, {"Decimals", "6"}})

	assert.Equal(t, strings.Join([]string{
		"block 42",
		"boom",
		"  nested",
		"  Symbol    USDC",
		"  Decimals  6",
		"",
	}, "\n"), buf.String())
}

func TestPlainUIStyleHasNoColours(t *testing.T) {
	u := NewPlainUI(&bytes.Buffer{})
	assert.Equal(t, "index", u.Style(StyledText{Text: "index", Severity: SeveritySuccess}))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	NewPlainUI(&buf).Table(
		[]string{"Timestamp", "Block"},
		[][]string{{"1700000000", "33,000,000"}, {"1", "-"}},
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "┌")
	assert.Contains(t, lines[1], "Timestamp")
	assert.Contains(t, lines[3], "33,000,000")
	assert.Contains(t, lines[5], "┘")
	// every row has the same visible width
	for _, l := range lines[1:] {
		assert.Equal(t, cellWidth(lines[0]), cellWidth(l))
	}
}

func TestEmptyTablePrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	NewPlainUI(&buf).Table(nil, nil)
	assert.Empty(t, buf.String())
}

func TestNonInteractiveSpinnerPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	stop := NewPlainUI(&buf).Spinner("resolving")
	stop()
	assert.Equal(t, "resolving\n", buf.String())
}

func TestIndentedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlainUI(&buf).Indent().Writer()
	fmt.Fprint(w, "a\nb\n")
	assert.Equal(t, "  a\n  b\n", buf.String())
}

func TestRecordingUI(t *testing.T) {
	r := NewRecordingUI()
	r.Info("hello %s", "world")
	r.Indent().Error("failed")
	r.Table([]string{"a"}, [][]string{{"1"}, {"2"}})
	r.Spinner("wait")()

	assert.True(t, r.HasMessage("HELLO"))
	assert.Equal(t, []string{"failed"}, r.ErrorMessages())
	assert.Equal(t, [][][]string{{{"1"}, {"2"}}}, r.Tables())
	assert.Len(t, r.Entries(), 5)
}
