package directory

import (
	"context"
	"fmt"
	"testing"

	"indastreet/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProviderRepo serves a fixed provider set.
type stubProviderRepo struct {
	providers []models.Provider
}

func (s *stubProviderRepo) Create(p *models.Provider) error { return nil }
func (s *stubProviderRepo) Update(p *models.Provider) error { return nil }

func (s *stubProviderRepo) GetByID(id string) (*models.Provider, error) {
	for i := range s.providers {
		if s.providers[i].ID == id {
			return &s.providers[i], nil
		}
	}
	return nil, fmt.Errorf("provider with id %s not found", id)
}

func (s *stubProviderRepo) GetByEmail(email string) (*models.Provider, error) { return nil, nil }

func (s *stubProviderRepo) GetActiveByType(t models.ProviderType) ([]models.Provider, error) {
	var out []models.Provider
	for _, p := range s.providers {
		if p.Active && p.ProviderType == t {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProviderRepo) AdjustRating(id string, delta float64) error { return nil }
func (s *stubProviderRepo) AdjustCoins(id string, delta int64) error { return nil }
func (s *stubProviderRepo) SetFCMToken(id, token string) error { return nil }
func (s *stubProviderRepo) IncrementCompletedBookings(id string) error { return nil }

func therapist(id string, lat, lng float64) models.Provider {
	return models.Provider{
		ID:           id,
		Name:         "Therapist " + id,
		ProviderType: models.ProviderTypeTherapist,
		Location:     models.GeoPoint{Lat: lat, Lng: lng},
		Rating:       4.5,
		Active:       true,
	}
}

// Roughly 1 degree of latitude is 111 km, so small offsets give distances
// well inside a 15 km radius.
var origin = models.GeoPoint{Lat: -8.6500, Lng: 115.2100}

func TestFindNearbyCandidatesOrdersByDistance(t *testing.T) {
	repo := &stubProviderRepo{providers: []models.Provider{
		therapist("far", -8.7200, 115.2100),  // ~7.8 km
		therapist("near", -8.6550, 115.2100), // ~0.6 km
		therapist("mid", -8.6800, 115.2100),  // ~3.3 km
	}}
	d := &DefaultProviderDirectory{Repo: repo}

	refs, err := d.FindNearbyCandidates(context.Background(), origin, models.ProviderTypeTherapist, nil, 15)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "near", refs[0].ID)
	assert.Equal(t, "mid", refs[1].ID)
	assert.Equal(t, "far", refs[2].ID)
	assert.Less(t, refs[0].DistanceKm, refs[1].DistanceKm)
}

func TestFindNearbyCandidatesBreaksTiesByID(t *testing.T) {
	repo := &stubProviderRepo{providers: []models.Provider{
		therapist("bbb", -8.6550, 115.2100),
		therapist("aaa", -8.6550, 115.2100),
	}}
	d := &DefaultProviderDirectory{Repo: repo}

	refs, err := d.FindNearbyCandidates(context.Background(), origin, models.ProviderTypeTherapist, nil, 15)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "aaa", refs[0].ID)
	assert.Equal(t, "bbb", refs[1].ID)
}

func TestFindNearbyCandidatesAppliesExclusions(t *testing.T) {
	repo := &stubProviderRepo{providers: []models.Provider{
		therapist("a", -8.6550, 115.2100),
		therapist("b", -8.6600, 115.2100),
		therapist("c", -8.6650, 115.2100),
	}}
	d := &DefaultProviderDirectory{Repo: repo}

	refs, err := d.FindNearbyCandidates(context.Background(), origin, models.ProviderTypeTherapist, []string{"a", "c"}, 15)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "b", refs[0].ID)
}

func TestFindNearbyCandidatesEnforcesRadius(t *testing.T) {
	repo := &stubProviderRepo{providers: []models.Provider{
		therapist("inside", -8.6550, 115.2100),  // ~0.6 km
		therapist("outside", -8.9500, 115.2100), // ~33 km
	}}
	d := &DefaultProviderDirectory{Repo: repo}

	refs, err := d.FindNearbyCandidates(context.Background(), origin, models.ProviderTypeTherapist, nil, 15)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "inside", refs[0].ID)
}

func TestFindNearbyCandidatesFiltersType(t *testing.T) {
	place := therapist("place-1", -8.6550, 115.2100)
	place.ProviderType = models.ProviderTypePlace
	repo := &stubProviderRepo{providers: []models.Provider{
		place,
		therapist("therapist-1", -8.6600, 115.2100),
	}}
	d := &DefaultProviderDirectory{Repo: repo}

	refs, err := d.FindNearbyCandidates(context.Background(), origin, models.ProviderTypePlace, nil, 15)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "place-1", refs[0].ID)
}

func TestFindNearbyCandidatesEmptyResultIsNotAnError(t *testing.T) {
	d := &DefaultProviderDirectory{Repo: &stubProviderRepo{}}

	refs, err := d.FindNearbyCandidates(context.Background(), origin, models.ProviderTypeTherapist, nil, 15)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestProviderExists(t *testing.T) {
	inactive := therapist("inactive", -8.6550, 115.2100)
	inactive.Active = false
	repo := &stubProviderRepo{providers: []models.Provider{
		therapist("active", -8.6550, 115.2100),
		inactive,
	}}
	d := &DefaultProviderDirectory{Repo: repo}

	ok, err := d.ProviderExists(context.Background(), "active", models.ProviderTypeTherapist)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = d.ProviderExists(context.Background(), "inactive", models.ProviderTypeTherapist)
	assert.False(t, ok)

	ok, _ = d.ProviderExists(context.Background(), "active", models.ProviderTypePlace)
	assert.False(t, ok)

	ok, _ = d.ProviderExists(context.Background(), "missing", models.ProviderTypeTherapist)
	assert.False(t, ok)
}

type failingProviderRepo struct {
	stubProviderRepo
}

func (f *failingProviderRepo) GetByID(id string) (*models.Provider, error) {
	return nil, fmt.Errorf("connection reset")
}

func TestProviderExistsMapsStoreFailureToUnavailable(t *testing.T) {
	d := &DefaultProviderDirectory{Repo: &failingProviderRepo{}}

	ok, err := d.ProviderExists(context.Background(), "prov-1", models.ProviderTypeTherapist)
	require.NoError(t, err)
	assert.False(t, ok)
}
