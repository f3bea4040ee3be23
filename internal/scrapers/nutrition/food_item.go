package nutrition

import (
	"strings"

	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/lib/htmlutil"
	"github.com/zphrs/ucsc-menu/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// FoodItem parses one item row, index is the row's position within its meal
// and only shows up in errors.
func (p *Parser) FoodItem(row *goquery.Selection, index int) (menu.FoodItem, error) {
	rawName, err := p.singleText(row, p.sel.FoodName, selectorFoodName, "food item name", index)
	if err != nil {
		return menu.FoodItem{}, err
	}

	allergens, err := p.allergens(row, index)
	if err != nil {
		return menu.FoodItem{}, err
	}

	price, err := p.price(row, index)
	if err != nil {
		return menu.FoodItem{}, err
	}

	return menu.FoodItem{
		Name:      textutil.CollapseWhitespace(rawName),
		Allergens: allergens,
		Price:     price,
	}, nil
}

// price is nil when the row has no price cell or when the cell only holds
// the &nbsp; placeholder.
func (p *Parser) price(row *goquery.Selection, index int) (*menu.Price, error) {
	cell := row.FindMatcher(p.sel.Price).First()
	if cell.Length() == 0 {
		return nil, nil
	}
	text, count, ok := htmlutil.SingleText(cell)
	if count == 0 {
		return nil, nil
	}
	if !ok {
		return nil, newParseError(KindTextNodeCount, "food item price").
			withSelector(selectorPrice).
			withIndex(index).
			withValue(countLabel(count))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	price, err := menu.ParsePrice(text)
	if err != nil {
		return nil, newParseError(KindPriceFormat, "food item price").
			withSelector(selectorPrice).
			withIndex(index).
			withValue(text).
			wrap(err)
	}
	return &price, nil
}
