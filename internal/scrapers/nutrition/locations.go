package nutrition

import (
	"fmt"
	"io"
	"net/url"

	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/lib/htmlutil"
	"github.com/zphrs/ucsc-menu/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Locations parses the landing page's directory of dining locations, hrefs
// are resolved against base. Every location starts with an empty buffer.
func (p *Parser) Locations(doc *goquery.Selection, base *url.URL) (menu.Locations, error) {
	choices := doc.FindMatcher(p.sel.LocationChoices).First()
	if choices.Length() == 0 {
		return nil, newParseError(KindMissingLocationChoices, "location directory").
			withSelector(selectorLocationChoices)
	}

	items := choices.FindMatcher(p.sel.Location)
	out := make(menu.Locations, 0, items.Length())
	for i := range items.Nodes {
		meta, err := p.locationMeta(items.Eq(i), base, i)
		if err != nil {
			return nil, err
		}
		out = append(out, menu.NewLocation(meta))
	}
	return out, nil
}

func (p *Parser) locationMeta(item *goquery.Selection, base *url.URL, index int) (menu.LocationMeta, error) {
	anchor := item.FindMatcher(p.sel.LocationAnchor).First()
	if anchor.Length() == 0 {
		return menu.LocationMeta{}, newParseError(KindMissingLocationAnchor, "location").
			withSelector(selectorLocationAnchor).
			withIndex(index)
	}
	href, ok := htmlutil.Attr(anchor.Get(0), "href")
	if !ok {
		return menu.LocationMeta{}, newParseError(KindMissingLocationHref, "location").
			withSelector(selectorLocationAnchor).
			withIndex(index)
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return menu.LocationMeta{}, newParseError(KindInvalidLocationURL, "location").
			withIndex(index).
			withValue(href).
			wrap(err)
	}

	query := resolved.Query()
	id := query.Get(menu.QueryLocationNum)
	if id == "" {
		return menu.LocationMeta{}, newParseError(KindMissingQueryParam, "location").
			withIndex(index).
			withValue(fmt.Sprintf("%s in %s", menu.QueryLocationNum, href))
	}
	name := textutil.CollapseWhitespace(query.Get(menu.QueryLocationName))
	if name == "" {
		return menu.LocationMeta{}, newParseError(KindMissingQueryParam, "location").
			withIndex(index).
			withValue(fmt.Sprintf("%s in %s", menu.QueryLocationName, href))
	}

	return menu.LocationMeta{ID: id, Name: name, URL: resolved.String()}, nil
}

// ParseLocations parses the landing page from its html.
func (p *Parser) ParseLocations(r io.Reader, base *url.URL) (menu.Locations, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return p.Locations(doc.Selection, base)
}
