package nutrition

import (
	"strings"

	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// rows returns the direct rows of a table element.
func (p *Parser) rows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenMatcher(p.sel.tbody).ChildrenMatcher(p.sel.tr)
}

// Meal parses one meal block. The block's first row holds the meal label and
// its second row holds a table whose rows are section headers each followed
// by the food items of that section.
func (p *Parser) Meal(block *goquery.Selection) (menu.Meal, error) {
	rows := p.rows(block)
	if rows.Length() < 2 {
		return menu.Meal{}, newParseError(KindMissingElement, "meal rows").
			withSelector("tbody > tr").
			withValue(countLabel(rows.Length()))
	}

	label, err := p.singleText(rows.Eq(0), p.sel.MealLabel, selectorMealLabel, "meal label", -1)
	if err != nil {
		return menu.Meal{}, err
	}

	sections, err := p.sections(rows.Eq(1))
	if err != nil {
		return menu.Meal{}, err
	}

	return menu.Meal{
		Type:     menu.MealTypeFromLabel(label),
		Sections: sections,
	}, nil
}

// sections walks the item rows once, forward only.
func (p *Parser) sections(itemsRow *goquery.Selection) ([]menu.MealSection, error) {
	table := itemsRow.FindMatcher(p.sel.table).First()
	rows := p.rows(table)

	sections := []menu.MealSection{}
	for i := range rows.Nodes {
		row := rows.Eq(i)

		if row.FindMatcher(p.sel.SectionName).Length() > 0 {
			name, err := p.singleText(row, p.sel.SectionName, selectorSectionName, "section name", i)
			if err != nil {
				return nil, err
			}
			sections = append(sections, menu.MealSection{
				Name:      SectionName(name),
				FoodItems: []menu.FoodItem{},
			})
			continue
		}

		if len(sections) == 0 {
			return nil, newParseError(KindMissingSectionHeader, "meal section").
				withSelector(selectorSectionName).
				withIndex(i)
		}
		item, err := p.FoodItem(row, i)
		if err != nil {
			return nil, err
		}
		current := &sections[len(sections)-1]
		current.FoodItems = append(current.FoodItems, item)
	}

	return sections, nil
}

// SectionName strips the "-- NAME --" decorator from a section label and
// collapses its whitespace.
func SectionName(label string) string {
	name := strings.TrimSpace(label)
	name = strings.TrimPrefix(name, "--")
	name = strings.TrimSuffix(name, "--")
	return textutil.CollapseWhitespace(name)
}
