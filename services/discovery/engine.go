package discovery

import (
	"context"
	"regexp"
	"sort"
	"strings"

	serviceRepo "servora/database/repository/service"
	settingsRepo "servora/database/repository/settings"
	userRepo "servora/database/repository/user"
	"servora/models"
	"servora/utils"

	"go.uber.org/zap"
)

// Sweeper is the rate-limited housekeeping hook the engine pokes on each
// search; the sweep itself decides whether it is due.
type Sweeper interface {
	SweepStaleLocationsIfDue()
}

// Engine computes the dual list/map result sets for service and nearby-user
// search. It is read-only apart from the best-effort staleness sweep.
type Engine struct {
	Services serviceRepo.ServiceRepository
	Users    userRepo.UserRepository
	Settings settingsRepo.SettingsRepository
	Sweeper  Sweeper
	Logger   *zap.Logger
}

// SearchServices runs the full discovery pipeline for service listings.
func (e *Engine) SearchServices(ctx context.Context, q models.SearchQuery) (*models.ServiceSearchResponse, error) {
	normalizePagination(&q)
	if e.Sweeper != nil {
		e.Sweeper.SweepStaleLocationsIfDue()
	}

	candidates, err := e.Services.FindCandidates(serviceRepo.CandidateFilter{
		CategoryIDs: q.CategoryIDs,
		Tags:        q.Tags,
		FreeOnly:    q.FreeOnly,
		Date:        q.Date,
	})
	if err != nil {
		return nil, err
	}

	if re := compileKeyword(q.Keyword); re != nil {
		candidates = e.filterServicesByKeyword(candidates, re)
	}

	// List view: radius filtering only applies when no keyword was given.
	listSet := candidates
	if listMode(q) == models.ModeRadius {
		listSet = filterByRadius(candidates, *radiusCenter(q), q.RadiusKm)
	}

	// Map view: viewport instead of radius, same keyword precedence.
	mapSet := candidates
	if mapMode(q) == models.ModeViewport {
		mapSet = filterByViewport(candidates, *q.Viewport)
	}

	listResults := annotateServices(listSet, q.Reference)
	sortByDistance(listResults, func(r models.ServiceResult) *float64 { return r.DistanceKm })
	mapResults := annotateServices(mapSet, q.Reference)
	sortByDistance(mapResults, func(r models.ServiceResult) *float64 { return r.DistanceKm })
	// Cap after sorting so the map keeps the nearest entries, not an
	// arbitrary prefix of the candidate set.
	if len(mapResults) > MapViewCap {
		mapResults = mapResults[:MapViewCap]
	}

	total := len(listResults)
	return &models.ServiceSearchResponse{
		Total:       total,
		Page:        q.Page,
		Limit:       q.Limit,
		ListResults: paginate(listResults, q.Page, q.Limit),
		MapResults:  mapResults,
	}, nil
}

// SearchNearbyUsers mirrors SearchServices over the user set; keyword
// precedence applies identically.
func (e *Engine) SearchNearbyUsers(ctx context.Context, q models.SearchQuery) (*models.UserSearchResponse, error) {
	normalizePagination(&q)
	if e.Sweeper != nil {
		e.Sweeper.SweepStaleLocationsIfDue()
	}

	candidates, err := e.Users.FindCandidates(userRepo.CandidateFilter{
		Statuses:     []string{models.UserStatusActive},
		WithLocation: strings.TrimSpace(q.Keyword) == "",
	})
	if err != nil {
		return nil, err
	}

	re := compileKeyword(q.Keyword)
	if re != nil {
		matched := candidates[:0:0]
		for _, u := range candidates {
			if matchAny(re, u.Name, u.Email) {
				matched = append(matched, u)
			}
		}
		candidates = matched
	}

	listSet := candidates
	if listMode(q) == models.ModeRadius {
		listSet = filterUsersByRadius(candidates, *radiusCenter(q), q.RadiusKm)
	}

	mapSet := candidates
	if mapMode(q) == models.ModeViewport {
		filtered := candidates[:0:0]
		for _, u := range candidates {
			if !u.Location.Point.IsZero() && q.Viewport.Contains(u.Location.Point) {
				filtered = append(filtered, u)
			}
		}
		mapSet = filtered
	}

	listResults := annotateUsers(listSet, q.Reference)
	sortByDistance(listResults, func(r models.UserResult) *float64 { return r.DistanceKm })
	mapResults := annotateUsers(mapSet, q.Reference)
	sortByDistance(mapResults, func(r models.UserResult) *float64 { return r.DistanceKm })
	if len(mapResults) > MapViewCap {
		mapResults = mapResults[:MapViewCap]
	}

	total := len(listResults)
	return &models.UserSearchResponse{
		Total:       total,
		Page:        q.Page,
		Limit:       q.Limit,
		ListResults: paginate(listResults, q.Page, q.Limit),
		MapResults:  mapResults,
	}, nil
}

// filterServicesByKeyword applies the fixed field list: title, description,
// tags, category name and tags, place name, owner name and email.
func (e *Engine) filterServicesByKeyword(candidates []models.ServiceListing, re *regexp.Regexp) []models.ServiceListing {
	categories := e.categoryLookup(candidates)
	owners := e.ownerLookup(candidates)

	matched := candidates[:0:0]
	for _, svc := range candidates {
		fields := []string{svc.Title, svc.Description, svc.PlaceName}
		fields = append(fields, svc.Tags...)
		if cat, ok := categories[svc.CategoryID]; ok {
			fields = append(fields, cat.Name)
			fields = append(fields, cat.Tags...)
		}
		if owner, ok := owners[svc.OwnerID]; ok {
			fields = append(fields, owner.Name, owner.Email)
		}
		if matchAny(re, fields...) {
			matched = append(matched, svc)
		}
	}
	return matched
}

func (e *Engine) categoryLookup(candidates []models.ServiceListing) map[string]models.Category {
	seen := make(map[string]struct{})
	var ids []string
	for _, svc := range candidates {
		if _, ok := seen[svc.CategoryID]; !ok && svc.CategoryID != "" {
			seen[svc.CategoryID] = struct{}{}
			ids = append(ids, svc.CategoryID)
		}
	}
	out := make(map[string]models.Category, len(ids))
	if len(ids) == 0 {
		return out
	}
	cats, err := e.Settings.GetCategories(ids)
	if err != nil {
		e.Logger.Warn("category lookup failed, keyword match degrades", zap.Error(err))
		return out
	}
	for _, c := range cats {
		out[c.ID] = c
	}
	return out
}

func (e *Engine) ownerLookup(candidates []models.ServiceListing) map[string]models.User {
	seen := make(map[string]struct{})
	var ids []string
	for _, svc := range candidates {
		if _, ok := seen[svc.OwnerID]; !ok && svc.OwnerID != "" {
			seen[svc.OwnerID] = struct{}{}
			ids = append(ids, svc.OwnerID)
		}
	}
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out
	}
	owners, err := e.Users.GetByIDs(ids)
	if err != nil {
		e.Logger.Warn("owner lookup failed, keyword match degrades", zap.Error(err))
		return out
	}
	for _, u := range owners {
		out[u.ID] = u
	}
	return out
}

func filterByRadius(candidates []models.ServiceListing, center models.GeoPoint, radiusKm float64) []models.ServiceListing {
	filtered := candidates[:0:0]
	for _, svc := range candidates {
		d := utils.HaversineKm(center.Latitude, center.Longitude,
			svc.Location.Latitude, svc.Location.Longitude)
		if d <= radiusKm {
			filtered = append(filtered, svc)
		}
	}
	return filtered
}

func filterUsersByRadius(candidates []models.User, center models.GeoPoint, radiusKm float64) []models.User {
	filtered := candidates[:0:0]
	for _, u := range candidates {
		if u.Location.Point.IsZero() {
			continue
		}
		d := utils.HaversineKm(center.Latitude, center.Longitude,
			u.Location.Point.Latitude, u.Location.Point.Longitude)
		if d <= radiusKm {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func filterByViewport(candidates []models.ServiceListing, vp models.Viewport) []models.ServiceListing {
	filtered := candidates[:0:0]
	for _, svc := range candidates {
		if vp.Contains(svc.Location) {
			filtered = append(filtered, svc)
		}
	}
	return filtered
}

// annotateServices computes distance_km from the reference point (never the
// area center); nil when no reference point was supplied.
func annotateServices(items []models.ServiceListing, ref *models.GeoPoint) []models.ServiceResult {
	results := make([]models.ServiceResult, 0, len(items))
	for _, svc := range items {
		var dist *float64
		if ref != nil {
			d := utils.HaversineKm(ref.Latitude, ref.Longitude,
				svc.Location.Latitude, svc.Location.Longitude)
			dist = &d
		}
		results = append(results, models.ServiceResult{Service: svc, DistanceKm: dist})
	}
	return results
}

func annotateUsers(items []models.User, ref *models.GeoPoint) []models.UserResult {
	results := make([]models.UserResult, 0, len(items))
	for _, u := range items {
		var dist *float64
		if ref != nil && !u.Location.Point.IsZero() {
			d := utils.HaversineKm(ref.Latitude, ref.Longitude,
				u.Location.Point.Latitude, u.Location.Point.Longitude)
			dist = &d
		}
		results = append(results, models.UserResult{User: u, DistanceKm: dist})
	}
	return results
}

// sortByDistance sorts ascending by distance with nil distances last; the
// sort is stable so tied or unmeasured items keep their incoming order.
func sortByDistance[T any](items []T, dist func(T) *float64) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := dist(items[i]), dist(items[j])
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})
}
