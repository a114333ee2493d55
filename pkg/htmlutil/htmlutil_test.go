package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func parseFragment(t *testing.T, markup string) *html.Node {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "tr",
		DataAtom: atom.Tr,
	})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	return nodes[0]
}

func TestSplitAtBreak(t *testing.T) {
	cell := parseFragment(t, `<td>Herr <b>Koch</b><br>Kürzel: KOC</td>`)

	before, after, ok := SplitAtBreak(cell)
	require.True(t, ok)
	require.Equal(t, "Herr Koch", before)
	require.Equal(t, "Kürzel: KOC", after)

	_, _, ok = SplitAtBreak(parseFragment(t, `<td>Sekretariat</td>`))
	require.False(t, ok)
}

func TestContainsElement(t *testing.T) {
	require.True(t, ContainsElement(parseFragment(t, `<td><span><strong>5.3</strong></span></td>`), atom.Strong, atom.B))
	require.False(t, ContainsElement(parseFragment(t, `<td><span>5.3</span></td>`), atom.Strong, atom.B))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "Vertretung durch Herrn Koch", CleanText("\n\t Vertretung   durch\n Herrn Koch \t"))
}

func TestStripTags(t *testing.T) {
	require.Equal(t, "5.3", StripTags(`<td class="vpTextZentriert"><b>5.3</b></td>`))
}

func TestSplitAtBreakLaterBreaks(t *testing.T) {
	before, after, ok := SplitAtBreak(parseFragment(t, `<td>Frau Müller<br>Kürzel: MUE<br>Fächer: De</td>`))
	require.True(t, ok)
	require.Equal(t, "Frau Müller", before)
	require.Equal(t, "Kürzel: MUE\nFächer: De", after)
}
