package models

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// ProviderType distinguishes independent therapists from massage places.
type ProviderType string

const (
	ProviderTypeTherapist ProviderType = "therapist"
	ProviderTypePlace     ProviderType = "place"
)

// Valid reports whether t is a known provider type.
func (t ProviderType) Valid() bool {
	return t == ProviderTypeTherapist || t == ProviderTypePlace
}

// ProviderRef is the minimal provider projection returned by directory lookups.
type ProviderRef struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ProviderType ProviderType `json:"providerType"`
	Rating       float64      `json:"rating"`
	DistanceKm   float64      `json:"distanceKm"`
}
