package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zphrs/ucsc-menu/internal/assert"
	"github.com/zphrs/ucsc-menu/internal/cache"
	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/internal/telemetry"

	"connectrpc.com/connect"
)

const (
	report_get_locations   = "get-locations"
	report_refresh         = "request-refresh"
	report_refresh_unsaved = "request-refresh.unsaved"
)

// Cache is the part of cache.Cache the service needs.
type Cache interface {
	Read(fn func(snapshot *cache.Snapshot) error) error
	Refresh(ctx context.Context) (bool, error)
}

type Service struct {
	cache Cache
	tel   telemetry.API
}

func NewService(c Cache, tel telemetry.API) Service {
	assert.NotNil(c)
	assert.NotNil(tel)
	return Service{
		cache: c,
		tel:   telemetry.NewScopedAPI("service", tel),
	}
}

// Query converts a request into a menu.Query, invalid allergen or meal
// names are reported as an invalid argument.
func (r *GetLocationsRequest) Query() (menu.Query, error) {
	q := menu.Query{
		IDs:   r.IDs,
		Start: r.Start,
		End:   r.End,
		Food: menu.FoodFilter{
			NameContains:  r.NameContains,
			NameSimilarTo: r.NameSimilarTo,
		},
	}
	if q.Start != nil && q.End != nil && q.Start.After(*q.End) {
		return menu.Query{}, fmt.Errorf("start %s is after end %s", q.Start, q.End)
	}

	if r.MealType != "" {
		mealType, ok := menu.ParseMealType(r.MealType)
		if !ok {
			return menu.Query{}, fmt.Errorf("unknown meal type %q", r.MealType)
		}
		q.MealType = mealType
	}

	var err error
	q.Food.ContainsAll, err = menu.ParseAllergens(r.ContainsAll)
	if err != nil {
		return menu.Query{}, fmt.Errorf("contains_all: %w", err)
	}
	q.Food.ContainsAny, err = menu.ParseAllergens(r.ContainsAny)
	if err != nil {
		return menu.Query{}, fmt.Errorf("contains_any: %w", err)
	}
	q.Food.ExcludesAll, err = menu.ParseAllergens(r.ExcludesAll)
	if err != nil {
		return menu.Query{}, fmt.Errorf("excludes_all: %w", err)
	}
	return q, nil
}

func (s Service) GetLocations(ctx context.Context, req *connect.Request[GetLocationsRequest]) (*connect.Response[GetLocationsResponse], error) {
	q, err := req.Msg.Query()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	res := &GetLocationsResponse{Locations: []Location{}}
	err = s.cache.Read(func(snapshot *cache.Snapshot) error {
		if snapshot == nil {
			return errors.New("cache holds no snapshot")
		}
		res.CachedAt = snapshot.CachedAt
		for _, loc := range menu.Select(snapshot.Locations, q) {
			out := Location{
				ID:   loc.Meta.ID,
				Name: loc.Meta.Name,
				URL:  loc.Meta.URL,
			}
			if !req.Msg.MetaOnly {
				out.Menus = loc.Menus.All()
			}
			res.Locations = append(res.Locations, out)
		}
		return nil
	})
	if err != nil {
		s.tel.ReportBroken(report_get_locations, err)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	return connect.NewResponse(res), nil
}

// RequestRefresh forces a scrape, a refresh whose save failed still counts
// as refreshed since the new menus are being served.
func (s Service) RequestRefresh(ctx context.Context, req *connect.Request[RequestRefreshRequest]) (*connect.Response[RequestRefreshResponse], error) {
	refreshed, err := s.cache.Refresh(ctx)
	if err != nil && !refreshed {
		s.tel.ReportWarning(report_refresh, err)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	if err != nil {
		s.tel.ReportWarning(report_refresh_unsaved, err)
	}

	res := &RequestRefreshResponse{Refreshed: refreshed}
	_ = s.cache.Read(func(snapshot *cache.Snapshot) error {
		if snapshot != nil {
			res.CachedAt = snapshot.CachedAt
		}
		return nil
	})
	return connect.NewResponse(res), nil
}
