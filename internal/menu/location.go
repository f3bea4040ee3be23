package menu

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/zphrs/ucsc-menu/lib/textutil"
)

// DaysPerLocation is the number of days a location holds menus for.
const DaysPerLocation = 10

// ErrBufferFull is returned when a DayBuffer has no slot left for a new date.
var ErrBufferFull = errors.New("day buffer is full")

const (
	QueryLocationNum  = "locationNum"
	QueryLocationName = "locationName"
)

// LocationMeta identifies a dining location, identity is by ID.
type LocationMeta struct {
	ID   string
	Name string
	URL  string
}

// LocationMetaFromURL derives the id and name from the location page URL.
func LocationMetaFromURL(raw string) (LocationMeta, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return LocationMeta{}, err
	}
	query := u.Query()
	id := query.Get(QueryLocationNum)
	if id == "" {
		return LocationMeta{}, fmt.Errorf("location url %q has no %s", raw, QueryLocationNum)
	}
	name := textutil.CollapseWhitespace(query.Get(QueryLocationName))
	if name == "" {
		return LocationMeta{}, fmt.Errorf("location url %q has no %s", raw, QueryLocationName)
	}
	return LocationMeta{ID: id, Name: name, URL: u.String()}, nil
}

func (m LocationMeta) Equal(other LocationMeta) bool {
	return m.ID == other.ID
}

// MarshalJSON persists only the URL.
func (m LocationMeta) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.URL)
}

func (m *LocationMeta) UnmarshalJSON(data []byte) error {
	var raw string
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	parsed, err := LocationMetaFromURL(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DayBuffer holds up to DaysPerLocation daily menus sorted by date with no
// two entries on the same date.
type DayBuffer struct {
	menus []DailyMenu
}

// Add inserts menu in date order, replacing an entry with the same date.
// It returns ErrBufferFull when menu is a new date and every slot is taken.
func (b *DayBuffer) Add(menu DailyMenu) error {
	idx, found := slices.BinarySearchFunc(b.menus, menu, DailyMenu.Compare)
	if found {
		b.menus[idx] = menu
		return nil
	}
	if len(b.menus) >= DaysPerLocation {
		return fmt.Errorf("add %s: %w", menu.Date, ErrBufferFull)
	}
	b.menus = slices.Insert(b.menus, idx, menu)
	return nil
}

func (b *DayBuffer) Clear() {
	b.menus = nil
}

// RemoveBefore drops every entry dated strictly before date.
func (b *DayBuffer) RemoveBefore(date Date) {
	idx, _ := slices.BinarySearchFunc(b.menus, date, func(m DailyMenu, d Date) int {
		return m.Date.Compare(d)
	})
	b.menus = slices.Clone(b.menus[idx:])
}

func (b *DayBuffer) Len() int {
	return len(b.menus)
}

// All returns the menus in ascending date order. The returned slice must not
// be modified.
func (b *DayBuffer) All() []DailyMenu {
	return b.menus
}

// Get returns the menu on date.
func (b *DayBuffer) Get(date Date) (DailyMenu, bool) {
	idx, found := slices.BinarySearchFunc(b.menus, date, func(m DailyMenu, d Date) int {
		return m.Date.Compare(d)
	})
	if !found {
		return DailyMenu{}, false
	}
	return b.menus[idx], true
}

// Between returns the menus whose date falls in [start, end], a nil bound is
// open.
func (b *DayBuffer) Between(start, end *Date) []DailyMenu {
	var out []DailyMenu
	for _, m := range b.menus {
		if start != nil && m.Date.Before(*start) {
			continue
		}
		if end != nil && m.Date.After(*end) {
			break
		}
		out = append(out, m)
	}
	return out
}

func (b DayBuffer) MarshalJSON() ([]byte, error) {
	if b.menus == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.menus)
}

func (b *DayBuffer) UnmarshalJSON(data []byte) error {
	var menus []DailyMenu
	err := json.Unmarshal(data, &menus)
	if err != nil {
		return err
	}
	b.Clear()
	for _, m := range menus {
		err = b.Add(m)
		if err != nil {
			return err
		}
	}
	return nil
}

type Location struct {
	Meta  LocationMeta `json:"meta"`
	Menus DayBuffer    `json:"menus"`
}

func NewLocation(meta LocationMeta) *Location {
	return &Location{Meta: meta}
}

// Locations keeps the order of the dining site's location directory.
type Locations []*Location

// ByID returns the location with the given id or nil.
func (l Locations) ByID(id string) *Location {
	for _, loc := range l {
		if loc.Meta.ID == id {
			return loc
		}
	}
	return nil
}

// Metas returns the metadata of every location in order.
func (l Locations) Metas() []LocationMeta {
	out := make([]LocationMeta, len(l))
	for i, loc := range l {
		out[i] = loc.Meta
	}
	return out
}

// RemoveBefore prunes every location's buffer.
func (l Locations) RemoveBefore(date Date) {
	for _, loc := range l {
		loc.Menus.RemoveBefore(date)
	}
}
