package htmlutil

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TextNodes returns the data of every text node below node in document order.
// Whitespace-only nodes are included, the same way a browser's text iterator
// would yield them.
func TextNodes(node *html.Node) []string {
	var out []string
	collectTextNodes(node, &out)
	return out
}

func collectTextNodes(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		*out = append(*out, node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectTextNodes(child, out)
	}
}

// SingleText returns the only text node below the first node of sel.
// count is the number of text nodes found, ok is true only when there was
// exactly one.
func SingleText(sel *goquery.Selection) (text string, count int, ok bool) {
	if sel == nil || sel.Length() == 0 {
		return "", 0, false
	}
	nodes := TextNodes(sel.Get(0))
	if len(nodes) != 1 {
		return "", len(nodes), false
	}
	return nodes[0], 1, true
}

// Attr returns the value of the attribute key on node.
func Attr(node *html.Node, key string) (string, bool) {
	if node == nil {
		return "", false
	}
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
