package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/zphrs/ucsc-menu/internal/cache"
	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/internal/telemetry"
	"github.com/zphrs/ucsc-menu/lib/serviceutil"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
)

const testToken = "s3cret"

var cachedAt = time.Date(2024, time.April, 6, 12, 0, 0, 0, time.UTC)

func fixtureLocations(t *testing.T) menu.Locations {
	t.Helper()

	meals := []menu.Meal{
		{
			Type: menu.MealBreakfast,
			Sections: []menu.MealSection{
				{
					Name: "Bakery",
					FoodItems: []menu.FoodItem{
						{Name: "Blueberry Muffin", Allergens: menu.Egg | menu.Milk | menu.Vegetarian},
						{Name: "Pumpkin Muffin", Allergens: menu.Egg | menu.Milk | menu.TreeNut | menu.Vegetarian},
						{Name: "Vegan Donut", Allergens: menu.Vegan | menu.Vegetarian | menu.Soy},
					},
				},
			},
		},
		{
			Type: menu.MealDinner,
			Sections: []menu.MealSection{
				{
					Name: "Grill",
					FoodItems: []menu.FoodItem{
						{Name: "Pork Carnitas", Allergens: menu.Pork},
					},
				},
			},
		},
	}

	locs := menu.Locations{}
	for _, id := range []string{"05", "40"} {
		meta, err := menu.LocationMetaFromURL(
			"https://nutrition.sa.ucsc.edu/shortmenu.aspx?locationNum=" + id + "&locationName=Hall+" + id,
		)
		require.NoError(t, err)
		loc := menu.NewLocation(meta)
		for day := 5; day <= 7; day++ {
			require.NoError(t, loc.Menus.Add(menu.DailyMenu{
				Date:  menu.NewDate(2024, time.April, day),
				Meals: meals,
			}))
		}
		locs = append(locs, loc)
	}
	return locs
}

type fakeCache struct {
	mutex      sync.Mutex
	snapshot   *cache.Snapshot
	refreshes  int
	refreshErr error
	refreshed  bool
}

func (f *fakeCache) Read(fn func(*cache.Snapshot) error) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return fn(f.snapshot)
}

func (f *fakeCache) Refresh(context.Context) (bool, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.refreshes++
	if f.refreshed {
		f.snapshot = &cache.Snapshot{
			CachedAt:  f.snapshot.CachedAt.Add(time.Hour),
			Locations: f.snapshot.Locations,
		}
	}
	return f.refreshed, f.refreshErr
}

func newTestServer(t *testing.T, c Cache, accessToken string) (*httptest.Server, *telemetry.Recorder) {
	t.Helper()
	rec := &telemetry.Recorder{}
	mux := http.NewServeMux()
	mux.Handle(NewHandler(NewService(c, rec), accessToken))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, rec
}

func itemNames(res *GetLocationsResponse) []string {
	var out []string
	for _, loc := range res.Locations {
		for _, day := range loc.Menus {
			for _, meal := range day.Meals {
				for _, section := range meal.Sections {
					for _, item := range section.FoodItems {
						out = append(out, loc.ID+" "+day.Date.String()+" "+item.Name)
					}
				}
			}
		}
	}
	return out
}

func TestGetLocations(t *testing.T) {
	c := &fakeCache{snapshot: &cache.Snapshot{CachedAt: cachedAt, Locations: fixtureLocations(t)}}
	srv, _ := newTestServer(t, c, testToken)
	client := NewClient(srv.Client(), srv.URL)
	ctx := context.Background()

	start := menu.NewDate(2024, time.April, 6)
	end := menu.NewDate(2024, time.April, 6)
	seventh := menu.NewDate(2024, time.April, 7)

	testCases := []struct {
		name     string
		req      *GetLocationsRequest
		expected []string
	}{
		{
			name: "muffins at one hall on one day",
			req: &GetLocationsRequest{
				IDs:          []string{"40"},
				Start:        &start,
				End:          &end,
				NameContains: "MUFFIN",
			},
			expected: []string{
				"40 2024-04-06 Blueberry Muffin",
				"40 2024-04-06 Pumpkin Muffin",
			},
		},
		{
			name: "vegan everywhere from the 7th",
			req: &GetLocationsRequest{
				Start:       &seventh,
				ContainsAll: []string{"VEGAN"},
				ExcludesAll: []string{"Tree Nut"},
			},
			expected: []string{
				"05 2024-04-07 Vegan Donut",
				"40 2024-04-07 Vegan Donut",
			},
		},
		{
			name: "dinner only",
			req: &GetLocationsRequest{
				IDs:      []string{"05"},
				End:      &start,
				MealType: "dinner",
			},
			expected: []string{
				"05 2024-04-05 Pork Carnitas",
				"05 2024-04-06 Pork Carnitas",
			},
		},
		{
			name: "misspelled name",
			req: &GetLocationsRequest{
				IDs:           []string{"05"},
				Start:         &start,
				End:           &end,
				NameSimilarTo: "Blueberry Mufin",
			},
			expected: []string{"05 2024-04-06 Blueberry Muffin"},
		},
	}

	for _, tc := range testCases {
		res, err := client.GetLocations(ctx, tc.req)
		require.NoError(t, err, tc.name)
		require.True(t, cachedAt.Equal(res.CachedAt), tc.name)
		require.Equal(t, tc.expected, itemNames(res), tc.name)
	}

	res, err := client.GetLocations(ctx, &GetLocationsRequest{MetaOnly: true})
	require.NoError(t, err)
	require.Len(t, res.Locations, 2)
	require.Equal(t, "05", res.Locations[0].ID)
	require.Equal(t, "Hall 05", res.Locations[0].Name)
	require.Empty(t, res.Locations[0].Menus)

	// the cached snapshot is never touched by filtering
	require.Len(t, c.snapshot.Locations[0].Menus.All()[0].Meals[0].Sections[0].FoodItems, 3)
}

func TestGetLocationsInvalidArguments(t *testing.T) {
	c := &fakeCache{snapshot: &cache.Snapshot{CachedAt: cachedAt, Locations: fixtureLocations(t)}}
	srv, _ := newTestServer(t, c, "")
	client := NewClient(srv.Client(), srv.URL)

	start := menu.NewDate(2024, time.April, 7)
	end := menu.NewDate(2024, time.April, 5)

	cases := []*GetLocationsRequest{
		{ContainsAll: []string{"Celery"}},
		{ContainsAny: []string{"Egg", "gluten"}},
		{ExcludesAll: []string{""}},
		{MealType: "brunch"},
		{Start: &start, End: &end},
	}
	for _, req := range cases {
		_, err := client.GetLocations(context.Background(), req)
		require.Error(t, err)
		require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), err.Error())
	}
}

func TestGetLocationsWithoutSnapshot(t *testing.T) {
	srv, rec := newTestServer(t, &fakeCache{}, "")
	client := NewClient(srv.Client(), srv.URL)

	_, err := client.GetLocations(context.Background(), &GetLocationsRequest{})
	require.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	require.Len(t, rec.Reports("broken"), 1)
}

func TestRequestRefresh(t *testing.T) {
	c := &fakeCache{
		snapshot:  &cache.Snapshot{CachedAt: cachedAt, Locations: fixtureLocations(t)},
		refreshed: true,
	}
	srv, _ := newTestServer(t, c, testToken)
	ctx := context.Background()

	anonymous := NewClient(srv.Client(), srv.URL)
	_, err := anonymous.RequestRefresh(ctx)
	require.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	wrong := NewClient(srv.Client(), srv.URL, connect.WithInterceptors(
		serviceutil.ProvideAccessTokenInterceptor("guess"),
	))
	_, err = wrong.RequestRefresh(ctx)
	require.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	require.Equal(t, 0, c.refreshes)

	// reads stay public
	_, err = anonymous.GetLocations(ctx, &GetLocationsRequest{MetaOnly: true})
	require.NoError(t, err)

	authorized := NewClient(srv.Client(), srv.URL+"/", connect.WithInterceptors(
		serviceutil.ProvideAccessTokenInterceptor(testToken),
	))
	res, err := authorized.RequestRefresh(ctx)
	require.NoError(t, err)
	require.True(t, res.Refreshed)
	require.True(t, cachedAt.Add(time.Hour).Equal(res.CachedAt))
	require.Equal(t, 1, c.refreshes)
}

func TestRequestRefreshFailures(t *testing.T) {
	ctx := context.Background()

	failing := &fakeCache{
		snapshot:   &cache.Snapshot{CachedAt: cachedAt},
		refreshErr: errors.New("landing page 503"),
	}
	srv, rec := newTestServer(t, failing, "")
	client := NewClient(srv.Client(), srv.URL)
	_, err := client.RequestRefresh(ctx)
	require.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	require.Len(t, rec.Reports("warning"), 1)

	unsaved := &fakeCache{
		snapshot:   &cache.Snapshot{CachedAt: cachedAt},
		refreshed:  true,
		refreshErr: errors.New("store unreachable"),
	}
	srv, rec = newTestServer(t, unsaved, "")
	client = NewClient(srv.Client(), srv.URL)
	res, err := client.RequestRefresh(ctx)
	require.NoError(t, err)
	require.True(t, res.Refreshed)
	require.Len(t, rec.Reports("warning"), 1)
}
