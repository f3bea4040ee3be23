package nutrition

import (
	"errors"
	"strings"

	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	allergenIconPrefix = "LegendImages/"
	allergenIconSuffix = ".gif"
)

var allergenIcons = map[string]menu.AllergenSet{
	"eggs":      menu.Egg,
	"fish":      menu.Fish,
	"gluten":    menu.GlutenFriendly,
	"milk":      menu.Milk,
	"nuts":      menu.Peanut,
	"soy":       menu.Soy,
	"treenut":   menu.TreeNut,
	"alcohol":   menu.Alcohol,
	"vegan":     menu.Vegan,
	"veggie":    menu.Vegetarian,
	"pork":      menu.Pork,
	"beef":      menu.Beef,
	"halal":     menu.Halal,
	"shellfish": menu.Shellfish,
	"sesame":    menu.Sesame,
}

// ClassifyAllergenIcon maps a legend icon src like "LegendImages/eggs.gif" to
// its single allergen flag.
func ClassifyAllergenIcon(src string) (menu.AllergenSet, error) {
	unrecognized := func() error {
		return newParseError(KindUnrecognizedAllergenIcon, "allergen icon").withValue(src)
	}

	stem, ok := strings.CutPrefix(src, allergenIconPrefix)
	if !ok {
		return 0, unrecognized()
	}
	stem, ok = strings.CutSuffix(stem, allergenIconSuffix)
	if !ok {
		return 0, unrecognized()
	}
	flag, ok := allergenIcons[strings.ToLower(stem)]
	if !ok {
		return 0, unrecognized()
	}
	return flag, nil
}

// allergens unions the flags of every icon in row. Icons without a src are
// skipped, the first icon that fails to classify fails the whole row.
func (p *Parser) allergens(row *goquery.Selection, index int) (menu.AllergenSet, error) {
	var out menu.AllergenSet
	for _, img := range row.FindMatcher(p.sel.AllergenIcon).Nodes {
		src, ok := htmlutil.Attr(img, "src")
		if !ok {
			continue
		}
		flag, err := ClassifyAllergenIcon(src)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.withSelector(selectorAllergenIcon).withIndex(index)
			}
			return 0, err
		}
		out |= flag
	}
	return out, nil
}
