package nutrition

import (
	"fmt"
	"io"

	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// DateFieldLayout is the layout of the date search field and of the dtdate
// query parameter.
const DateFieldLayout = "01/02/2006"

// DailyMenu parses a location page: the date it shows and every meal on it.
// The first meal that fails to parse fails the whole page.
func (p *Parser) DailyMenu(doc *goquery.Selection) (menu.DailyMenu, error) {
	field := doc.FindMatcher(p.sel.DateField).First()
	if field.Length() == 0 {
		return menu.DailyMenu{}, newParseError(KindMissingElement, "menu date").
			withSelector(selectorDateField)
	}
	value, ok := htmlutil.Attr(field.Get(0), "value")
	if !ok {
		return menu.DailyMenu{}, newParseError(KindMissingAttribute, "menu date").
			withSelector(selectorDateField).
			withValue("value")
	}
	date, err := menu.ParseDate(DateFieldLayout, value)
	if err != nil {
		return menu.DailyMenu{}, newParseError(KindDateFormat, "menu date").
			withSelector(selectorDateField).
			withValue(value).
			wrap(err)
	}

	meals := []menu.Meal{}
	blocks := doc.FindMatcher(p.sel.MealBlock)
	for i := range blocks.Nodes {
		meal, err := p.Meal(blocks.Eq(i))
		if err != nil {
			return menu.DailyMenu{}, fmt.Errorf("meal %d on %s: %w", i, date, err)
		}
		meals = append(meals, meal)
	}

	return menu.DailyMenu{Date: date, Meals: meals}, nil
}

// ParseDailyMenu parses a location page from its html.
func (p *Parser) ParseDailyMenu(r io.Reader) (menu.DailyMenu, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return menu.DailyMenu{}, err
	}
	return p.DailyMenu(doc.Selection)
}
