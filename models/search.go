package models

// DiscoveryMode names the filtering strategy a query resolves to. Exactly one
// mode applies per view; keyword intent always overrides geographic intent.
type DiscoveryMode int

const (
	ModeUnconstrained DiscoveryMode = iota
	ModeKeyword
	ModeRadius
	ModeViewport
)

func (m DiscoveryMode) String() string {
	switch m {
	case ModeKeyword:
		return "keyword"
	case ModeRadius:
		return "radius"
	case ModeViewport:
		return "viewport"
	default:
		return "unconstrained"
	}
}

// SearchQuery is the typed discovery request. Every optional field's absence
// maps to a specific mode; there is no untyped filter bag.
type SearchQuery struct {
	CategoryIDs []string `json:"category_ids,omitempty"` // OR-matched
	Tags        []string `json:"tags,omitempty"`         // OR-matched
	FreeOnly    bool     `json:"free_only,omitempty"`
	Date        string   `json:"date,omitempty"` // services only, "YYYY-MM-DD"
	Keyword     string   `json:"keyword,omitempty"`

	// Reference is the caller's own position: the distance-annotation origin.
	// AreaCenter, when set, takes priority as the radius-filter center.
	Reference  *GeoPoint `json:"reference,omitempty"`
	AreaCenter *GeoPoint `json:"area_center,omitempty"`
	RadiusKm   float64   `json:"radius_km,omitempty"` // 0 means no radius filter

	Viewport *Viewport `json:"viewport,omitempty"` // map view only

	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// ServiceResult is one service hit, annotated with distance from the
// reference point when one was supplied.
type ServiceResult struct {
	Service    ServiceListing `json:"service"`
	DistanceKm *float64       `json:"distance_km"`
}

// UserResult is one nearby-user hit.
type UserResult struct {
	User       User     `json:"user"`
	DistanceKm *float64 `json:"distance_km"`
}

// ServiceSearchResponse carries both the paginated list view and the
// unpaginated map view.
type ServiceSearchResponse struct {
	Total       int             `json:"total"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
	ListResults []ServiceResult `json:"listResults"`
	MapResults  []ServiceResult `json:"mapResults"`
}

// UserSearchResponse mirrors ServiceSearchResponse for nearby-user search.
type UserSearchResponse struct {
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
	ListResults []UserResult `json:"listResults"`
	MapResults  []UserResult `json:"mapResults"`
}
