package discovery

import (
	"context"
	"fmt"
	"testing"
	"time"

	serviceRepo "servora/database/repository/service"
	userRepo "servora/database/repository/user"
	"servora/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- fakes ---

type fakeServiceRepo struct {
	services []models.ServiceListing
}

func (f *fakeServiceRepo) Create(svc *models.ServiceListing) error { return nil }
func (f *fakeServiceRepo) GetByID(id string) (*models.ServiceListing, error) {
	return nil, nil
}
func (f *fakeServiceRepo) Update(svc *models.ServiceListing) error { return nil }
func (f *fakeServiceRepo) Delete(id string) error                  { return nil }
func (f *fakeServiceRepo) ListByOwner(ownerID string) ([]models.ServiceListing, error) {
	return nil, nil
}

func (f *fakeServiceRepo) FindCandidates(filter serviceRepo.CandidateFilter) ([]models.ServiceListing, error) {
	var out []models.ServiceListing
	for _, svc := range f.services {
		if svc.DeleteApproved {
			continue
		}
		if len(filter.CategoryIDs) > 0 && !contains(filter.CategoryIDs, svc.CategoryID) {
			continue
		}
		if len(filter.Tags) > 0 && !overlaps(filter.Tags, svc.Tags) {
			continue
		}
		if filter.FreeOnly && !svc.Free {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

type fakeUserRepo struct {
	users []models.User
}

func (f *fakeUserRepo) Create(u *models.User) error { return nil }
func (f *fakeUserRepo) GetByID(id string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, assert.AnError
}
func (f *fakeUserRepo) GetByIDs(ids []string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if contains(ids, u.ID) {
			out = append(out, u)
		}
	}
	return out, nil
}
func (f *fakeUserRepo) Update(u *models.User) error          { return nil }
func (f *fakeUserRepo) UpdateStatus(id, status string) error { return nil }
func (f *fakeUserRepo) ApplyLocationIfNewer(id string, loc models.UserLocation) (bool, error) {
	return true, nil
}
func (f *fakeUserRepo) SweepStaleLocations(cutoff time.Time) (int64, error) { return 0, nil }

func (f *fakeUserRepo) FindCandidates(filter userRepo.CandidateFilter) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, u.Status) {
			continue
		}
		if filter.WithLocation && (u.Location.Stale || u.Location.Point.IsZero()) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type fakeSettingsRepo struct {
	categories map[string]models.Category
	commission float64
	policy     models.CancellationPolicy
}

func (f *fakeSettingsRepo) GetCommissionPercent() (float64, error) { return f.commission, nil }
func (f *fakeSettingsRepo) SetCommissionPercent(p float64) error   { f.commission = p; return nil }
func (f *fakeSettingsRepo) GetCancellationPolicy() (*models.CancellationPolicy, error) {
	p := f.policy
	return &p, nil
}
func (f *fakeSettingsRepo) SetCancellationPolicy(p models.CancellationPolicy) error {
	f.policy = p
	return nil
}
func (f *fakeSettingsRepo) CreateCategory(c *models.Category) error { return nil }
func (f *fakeSettingsRepo) GetCategory(id string) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, assert.AnError
	}
	return &c, nil
}
func (f *fakeSettingsRepo) GetCategories(ids []string) ([]models.Category, error) {
	var out []models.Category
	for _, id := range ids {
		if c, ok := f.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeSettingsRepo) ListCategories() ([]models.Category, error) { return nil, nil }

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	for _, s := range a {
		if contains(b, s) {
			return true
		}
	}
	return false
}

// --- fixtures ---

// Points around central Zurich; eastService is roughly 75 km away.
var (
	zurich      = models.GeoPoint{Latitude: 47.3769, Longitude: 8.5417}
	nearService = models.ServiceListing{
		ID: "svc-near", OwnerID: "owner-1", CategoryID: "cat-clean",
		Title: "Apartment deep clean", Tags: []string{"cleaning"},
		Location:  models.GeoPoint{Latitude: 47.3800, Longitude: 8.5400},
		PlaceName: "Zurich Kreis 1",
	}
	eastService = models.ServiceListing{
		ID: "svc-east", OwnerID: "owner-2", CategoryID: "cat-tutor",
		Title: "Guitar lessons for beginners", Tags: []string{"music"},
		Location:  models.GeoPoint{Latitude: 47.5000, Longitude: 9.5000},
		PlaceName: "St. Gallen",
		Free:      true,
	}
)

func newTestEngine(services []models.ServiceListing, users []models.User) *Engine {
	return &Engine{
		Services: &fakeServiceRepo{services: services},
		Users: &fakeUserRepo{users: append(users, models.User{
			ID: "owner-1", Name: "Clara Keller", Email: "clara@example.com",
			Status: models.UserStatusActive,
		}, models.User{
			ID: "owner-2", Name: "Jon Rivera", Email: "jon@example.com",
			Status: models.UserStatusActive,
		})},
		Settings: &fakeSettingsRepo{categories: map[string]models.Category{
			"cat-clean": {ID: "cat-clean", Name: "Cleaning", Tags: []string{"home"}},
			"cat-tutor": {ID: "cat-tutor", Name: "Tutoring", Tags: []string{"education"}},
		}},
		Logger: zap.NewNop(),
	}
}

// --- tests ---

func TestKeywordOverridesRadius(t *testing.T) {
	e := newTestEngine([]models.ServiceListing{nearService, eastService}, nil)

	run := func(radius float64) []models.ServiceResult {
		resp, err := e.SearchServices(context.Background(), models.SearchQuery{
			Keyword:   "guitar",
			Reference: &zurich,
			RadiusKm:  radius,
		})
		require.NoError(t, err)
		return resp.ListResults
	}

	tiny := run(1)
	huge := run(100000)
	require.Len(t, tiny, 1)
	require.Len(t, huge, 1)
	assert.Equal(t, "svc-east", tiny[0].Service.ID)
	assert.Equal(t, huge[0].Service.ID, tiny[0].Service.ID)
}

func TestKeywordMatchesFixedFieldList(t *testing.T) {
	e := newTestEngine([]models.ServiceListing{nearService, eastService}, nil)

	cases := map[string]string{
		"deep clean":      "svc-near", // title
		"kreis":           "svc-near", // place name
		"Cleaning":        "svc-near", // category name
		"education":       "svc-east", // category tags
		"jon@example.com": "svc-east", // owner email
		"clara":           "svc-near", // owner name
	}
	for kw, want := range cases {
		resp, err := e.SearchServices(context.Background(), models.SearchQuery{Keyword: kw})
		require.NoError(t, err)
		require.Len(t, resp.ListResults, 1, "keyword %q", kw)
		assert.Equal(t, want, resp.ListResults[0].Service.ID, "keyword %q", kw)
	}
}

func TestKeywordEscapesRegexMetacharacters(t *testing.T) {
	svc := nearService
	svc.ID = "svc-cpp"
	svc.Title = "C++ programming help"
	e := newTestEngine([]models.ServiceListing{svc, eastService}, nil)

	resp, err := e.SearchServices(context.Background(), models.SearchQuery{Keyword: "c++"})
	require.NoError(t, err)
	require.Len(t, resp.ListResults, 1)
	assert.Equal(t, "svc-cpp", resp.ListResults[0].Service.ID)

	// A keyword that is only metacharacters must not blow up or match everything.
	resp, err = e.SearchServices(context.Background(), models.SearchQuery{Keyword: ".*"})
	require.NoError(t, err)
	assert.Empty(t, resp.ListResults)
}

func TestBlankKeywordMeansNoKeyword(t *testing.T) {
	e := newTestEngine([]models.ServiceListing{nearService, eastService}, nil)

	resp, err := e.SearchServices(context.Background(), models.SearchQuery{
		Keyword:   "   ",
		Reference: &zurich,
		RadiusKm:  5,
	})
	require.NoError(t, err)
	// Radius applies because the keyword is blank after trimming.
	require.Len(t, resp.ListResults, 1)
	assert.Equal(t, "svc-near", resp.ListResults[0].Service.ID)
}

func TestRadiusFilterAndCenterPriority(t *testing.T) {
	e := newTestEngine([]models.ServiceListing{nearService, eastService}, nil)
	stGallen := models.GeoPoint{Latitude: 47.4245, Longitude: 9.3767}

	// Area center takes priority for filtering, but distance annotation
	// stays relative to the reference point.
	resp, err := e.SearchServices(context.Background(), models.SearchQuery{
		Reference:  &zurich,
		AreaCenter: &stGallen,
		RadiusKm:   20,
	})
	require.NoError(t, err)
	require.Len(t, resp.ListResults, 1)
	got := resp.ListResults[0]
	assert.Equal(t, "svc-east", got.Service.ID)
	require.NotNil(t, got.DistanceKm)
	// ~75 km from Zurich, far beyond the 20 km filter radius around St. Gallen.
	assert.Greater(t, *got.DistanceKm, 50.0)
}

func TestZeroRadiusMeansNoFilter(t *testing.T) {
	e := newTestEngine([]models.ServiceListing{nearService, eastService}, nil)

	resp, err := e.SearchServices(context.Background(), models.SearchQuery{
		Reference: &zurich,
		RadiusKm:  0,
	})
	require.NoError(t, err)
	assert.Len(t, resp.ListResults, 2)
}

func TestDistanceSortAndNilAnnotation(t *testing.T) {
	e := newTestEngine([]models.ServiceListing{eastService, nearService}, nil)

	// With a reference point, nearer comes first.
	resp, err := e.SearchServices(context.Background(), models.SearchQuery{Reference: &zurich})
	require.NoError(t, err)
	require.Len(t, resp.ListResults, 2)
	assert.Equal(t, "svc-near", resp.ListResults[0].Service.ID)
	assert.Less(t, *resp.ListResults[0].DistanceKm, *resp.ListResults[1].DistanceKm)

	// Without one, distance is nil everywhere and input order is preserved.
	resp, err = e.SearchServices(context.Background(), models.SearchQuery{})
	require.NoError(t, err)
	require.Len(t, resp.ListResults, 2)
	assert.Nil(t, resp.ListResults[0].DistanceKm)
	assert.Equal(t, "svc-east", resp.ListResults[0].Service.ID)
}

func TestViewportFiltersMapViewOnly(t *testing.T) {
	e := newTestEngine([]models.ServiceListing{nearService, eastService}, nil)

	resp, err := e.SearchServices(context.Background(), models.SearchQuery{
		Viewport: &models.Viewport{North: 47.40, South: 47.35, East: 8.60, West: 8.50},
	})
	require.NoError(t, err)
	// Map view sees only what is inside the box.
	require.Len(t, resp.MapResults, 1)
	assert.Equal(t, "svc-near", resp.MapResults[0].Service.ID)
	// List view is untouched by the viewport.
	assert.Len(t, resp.ListResults, 2)
}

func TestViewportBoundsInclusive(t *testing.T) {
	edge := nearService
	edge.ID = "svc-edge"
	edge.Location = models.GeoPoint{Latitude: 47.40, Longitude: 8.60} // exactly on NE corner
	e := newTestEngine([]models.ServiceListing{edge}, nil)

	resp, err := e.SearchServices(context.Background(), models.SearchQuery{
		Viewport: &models.Viewport{North: 47.40, South: 47.35, East: 8.60, West: 8.50},
	})
	require.NoError(t, err)
	assert.Len(t, resp.MapResults, 1)
}

func TestMapViewCapKeepsNearest(t *testing.T) {
	// Candidates arrive farthest-first so a cap applied before sorting would
	// drop the nearest entries.
	var services []models.ServiceListing
	for i := MapViewCap; i >= 0; i-- {
		svc := nearService
		svc.ID = fmt.Sprintf("svc-%d", i)
		svc.Location = models.GeoPoint{
			Latitude:  zurich.Latitude + float64(i)*0.01,
			Longitude: zurich.Longitude,
		}
		services = append(services, svc)
	}
	e := newTestEngine(services, nil)

	resp, err := e.SearchServices(context.Background(), models.SearchQuery{Reference: &zurich})
	require.NoError(t, err)
	require.Len(t, resp.MapResults, MapViewCap)
	assert.Equal(t, "svc-0", resp.MapResults[0].Service.ID)
	for _, r := range resp.MapResults {
		assert.NotEqual(t, fmt.Sprintf("svc-%d", MapViewCap), r.Service.ID)
	}
}

func TestPaginationListViewOnly(t *testing.T) {
	var services []models.ServiceListing
	for i := 0; i < 25; i++ {
		svc := nearService
		svc.ID = "svc-" + string(rune('a'+i))
		services = append(services, svc)
	}
	e := newTestEngine(services, nil)

	resp, err := e.SearchServices(context.Background(), models.SearchQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Total)
	assert.Len(t, resp.ListResults, 10)
	assert.Len(t, resp.MapResults, 25) // never paginated

	resp, err = e.SearchServices(context.Background(), models.SearchQuery{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, resp.ListResults)
}

func TestNearbyUserSearch(t *testing.T) {
	users := []models.User{
		{
			ID: "u-near", Name: "Nina Close", Status: models.UserStatusActive,
			Location: models.UserLocation{Point: models.GeoPoint{Latitude: 47.3780, Longitude: 8.5430}},
		},
		{
			ID: "u-far", Name: "Felix Distant", Status: models.UserStatusActive,
			Location: models.UserLocation{Point: models.GeoPoint{Latitude: 46.0, Longitude: 7.0}},
		},
	}
	e := newTestEngine(nil, users)

	resp, err := e.SearchNearbyUsers(context.Background(), models.SearchQuery{
		Reference: &zurich,
		RadiusKm:  5,
	})
	require.NoError(t, err)
	require.Len(t, resp.ListResults, 1)
	assert.Equal(t, "u-near", resp.ListResults[0].User.ID)

	// Keyword precedence applies identically: the far user matches by name
	// regardless of the tiny radius.
	resp, err = e.SearchNearbyUsers(context.Background(), models.SearchQuery{
		Keyword:   "felix",
		Reference: &zurich,
		RadiusKm:  1,
	})
	require.NoError(t, err)
	require.Len(t, resp.ListResults, 1)
	assert.Equal(t, "u-far", resp.ListResults[0].User.ID)
}
