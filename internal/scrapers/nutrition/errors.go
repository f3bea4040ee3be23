package nutrition

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a ParseError.
type Kind int

const (
	KindMissingElement Kind = iota + 1
	KindMissingAttribute
	KindTextNodeCount
	KindPriceFormat
	KindUnrecognizedAllergenIcon
	KindMissingSectionHeader
	KindDateFormat
	KindMissingLocationChoices
	KindMissingLocationAnchor
	KindMissingLocationHref
	KindInvalidLocationURL
	KindMissingQueryParam
)

var (
	ErrMissingElement           = errors.New("missing element")
	ErrMissingAttribute         = errors.New("missing attribute")
	ErrTextNodeCount            = errors.New("expected exactly one text node")
	ErrPriceFormat              = errors.New("malformed price")
	ErrUnrecognizedAllergenIcon = errors.New("unrecognized allergen icon")
	ErrMissingSectionHeader     = errors.New("food item before any section header")
	ErrDateFormat               = errors.New("malformed date")
	ErrMissingLocationChoices   = errors.New("missing location choices")
	ErrMissingLocationAnchor    = errors.New("missing location anchor")
	ErrMissingLocationHref      = errors.New("missing location href")
	ErrInvalidLocationURL       = errors.New("invalid location url")
	ErrMissingQueryParam        = errors.New("missing query parameter")
)

var kindSentinels = map[Kind]error{
	KindMissingElement:           ErrMissingElement,
	KindMissingAttribute:         ErrMissingAttribute,
	KindTextNodeCount:            ErrTextNodeCount,
	KindPriceFormat:              ErrPriceFormat,
	KindUnrecognizedAllergenIcon: ErrUnrecognizedAllergenIcon,
	KindMissingSectionHeader:     ErrMissingSectionHeader,
	KindDateFormat:               ErrDateFormat,
	KindMissingLocationChoices:   ErrMissingLocationChoices,
	KindMissingLocationAnchor:    ErrMissingLocationAnchor,
	KindMissingLocationHref:      ErrMissingLocationHref,
	KindInvalidLocationURL:       ErrInvalidLocationURL,
	KindMissingQueryParam:        ErrMissingQueryParam,
}

// Sentinel returns the error that errors.Is matches for a ParseError of
// kind k.
func (k Kind) Sentinel() error {
	return kindSentinels[k]
}

func (k Kind) String() string {
	sentinel, ok := kindSentinels[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return sentinel.Error()
}

// ParseError is returned when a page does not have the shape the parsers
// expect.
type ParseError struct {
	Kind Kind
	// Selector is the css selector that was being matched, if any.
	Selector string
	// Field is what was being extracted, ex. "food item name".
	Field string
	// Value is the offending text or url.
	Value string
	// Index is the position of the offending row, -1 when not applicable.
	Index int
	Err   error
}

func newParseError(kind Kind, field string) *ParseError {
	return &ParseError{Kind: kind, Field: field, Index: -1}
}

func (e *ParseError) withSelector(selector string) *ParseError {
	e.Selector = selector
	return e
}

func (e *ParseError) withValue(value string) *ParseError {
	e.Value = value
	return e
}

func (e *ParseError) withIndex(index int) *ParseError {
	e.Index = index
	return e
}

func (e *ParseError) wrap(err error) *ParseError {
	e.Err = err
	return e
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	b.WriteString(e.Field)
	if e.Index >= 0 {
		fmt.Fprintf(&b, " (row %d)", e.Index)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Selector != "" {
		fmt.Fprintf(&b, " [%s]", e.Selector)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrFetch matches every FetchError.
var ErrFetch = errors.New("fetch failed")

// FetchError is returned when a page could not be downloaded, either because
// of the transport or because of a non 2xx status.
type FetchError struct {
	URL string
	// Status is 0 when no response was received.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
