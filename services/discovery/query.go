package discovery

import (
	"regexp"
	"strings"

	"servora/models"
)

// MapViewCap bounds the unpaginated map view so one viewport cannot produce
// an unbounded payload.
const MapViewCap = 500

const (
	defaultPage  = 1
	defaultLimit = 20
)

// listMode resolves the list-view filtering strategy. Keyword intent always
// wins over geographic intent; a missing or zero radius means no radius
// filter, never a zero-radius empty result.
func listMode(q models.SearchQuery) models.DiscoveryMode {
	if strings.TrimSpace(q.Keyword) != "" {
		return models.ModeKeyword
	}
	if radiusCenter(q) != nil && q.RadiusKm > 0 {
		return models.ModeRadius
	}
	return models.ModeUnconstrained
}

// mapMode resolves the map-view strategy: keyword still wins, then the
// viewport box, then unconstrained.
func mapMode(q models.SearchQuery) models.DiscoveryMode {
	if strings.TrimSpace(q.Keyword) != "" {
		return models.ModeKeyword
	}
	if q.Viewport != nil {
		return models.ModeViewport
	}
	return models.ModeUnconstrained
}

// radiusCenter picks the radius-filter center: an explicit area/city center
// takes priority over the caller's own position. Distance annotation always
// uses the caller's position regardless of which center filters.
func radiusCenter(q models.SearchQuery) *models.GeoPoint {
	if q.AreaCenter != nil {
		return q.AreaCenter
	}
	return q.Reference
}

// compileKeyword builds a case-insensitive substring matcher from the raw
// keyword. Every regex metacharacter is escaped except whitespace, which
// stays a literal token (spaces are not collapsed). Returns nil when the
// keyword is empty after trimming.
func compileKeyword(raw string) *regexp.Regexp {
	kw := strings.TrimSpace(raw)
	if kw == "" {
		return nil
	}
	var b strings.Builder
	b.WriteString("(?i)")
	for _, r := range kw {
		if r == ' ' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		// QuoteMeta output always compiles; fall back to matching nothing.
		return nil
	}
	return re
}

// matchAny reports whether the matcher hits any of the given fields.
func matchAny(re *regexp.Regexp, fields ...string) bool {
	for _, f := range fields {
		if f != "" && re.MatchString(f) {
			return true
		}
	}
	return false
}

func normalizePagination(q *models.SearchQuery) {
	if q.Page <= 0 {
		q.Page = defaultPage
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
}

// paginate slices out one page; out-of-range pages yield an empty slice.
func paginate[T any](items []T, page, limit int) []T {
	skip := (page - 1) * limit
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
