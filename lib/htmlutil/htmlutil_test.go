package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, src string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestTextNodes(t *testing.T) {
	doc := parse(t, `<div id="x">a<b>b</b><i>c<u>d</u></i></div>`)
	require.Equal(t, []string{"a", "b", "c", "d"}, TextNodes(doc.Find("#x").Get(0)))
	require.Empty(t, TextNodes(nil))
}

func TestSingleText(t *testing.T) {
	doc := parse(t, `
<span id="one">Blueberry Muffin</span>
<span id="many">Blue<b>berry</b></span>
<span id="none"></span>`)

	text, count, ok := SingleText(doc.Find("#one"))
	require.True(t, ok)
	require.Equal(t, 1, count)
	require.Equal(t, "Blueberry Muffin", text)

	_, count, ok = SingleText(doc.Find("#many"))
	require.False(t, ok)
	require.Equal(t, 2, count)

	_, count, ok = SingleText(doc.Find("#none"))
	require.False(t, ok)
	require.Equal(t, 0, count)

	_, count, ok = SingleText(doc.Find("#missing"))
	require.False(t, ok)
	require.Equal(t, 0, count)
}

func TestAttr(t *testing.T) {
	doc := parse(t, `<input name="strCurSearchDays" value="04/05/2024">`)
	node := doc.Find("input").Get(0)

	value, ok := Attr(node, "value")
	require.True(t, ok)
	require.Equal(t, "04/05/2024", value)

	_, ok = Attr(node, "href")
	require.False(t, ok)
}
