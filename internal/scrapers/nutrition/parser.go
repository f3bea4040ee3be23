package nutrition

import (
	"strconv"
	"sync"

	"github.com/zphrs/ucsc-menu/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var defaultSelectors = sync.OnceValue(NewSelectors)

// Parser turns the dining site's pages into menu types. It holds no state
// besides its compiled selectors and is safe for concurrent use.
type Parser struct {
	sel *Selectors
}

// NewParser returns a parser sharing the process wide compiled selectors.
func NewParser() *Parser {
	return &Parser{sel: defaultSelectors()}
}

// singleText extracts the only text node below the first match of selector
// in parent.
func (p *Parser) singleText(parent *goquery.Selection, matcher goquery.Matcher, selector, field string, index int) (string, error) {
	target := parent.FindMatcher(matcher).First()
	if target.Length() == 0 {
		return "", newParseError(KindMissingElement, field).
			withSelector(selector).
			withIndex(index)
	}
	text, count, ok := htmlutil.SingleText(target)
	if !ok {
		return "", newParseError(KindTextNodeCount, field).
			withSelector(selector).
			withIndex(index).
			withValue(countLabel(count))
	}
	return text, nil
}

func countLabel(count int) string {
	if count == 1 {
		return "1 text node"
	}
	return strconv.Itoa(count) + " text nodes"
}
