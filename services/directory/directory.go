package directory

import (
	"context"
	"fmt"
	"math"
	"sort"

	providerRepo "indastreet/database/repository/provider"
	"indastreet/models"
	"indastreet/utils"

	"go.uber.org/zap"
)

// ProviderDirectory answers "who else could take this booking" queries for
// the assignment workflow.
type ProviderDirectory interface {
	// FindNearbyCandidates returns eligible providers of the given type within
	// radiusKm of origin, ascending by distance with ties broken by provider
	// id. Providers in excludeIDs are filtered out. An empty result is a
	// valid, expected outcome.
	FindNearbyCandidates(ctx context.Context, origin models.GeoPoint, providerType models.ProviderType, excludeIDs []string, radiusKm float64) ([]models.ProviderRef, error)
	// ProviderExists reports whether an active provider of the given type exists.
	ProviderExists(ctx context.Context, providerID string, providerType models.ProviderType) (bool, error)
}

// DefaultProviderDirectory is the Mongo-backed implementation.
type DefaultProviderDirectory struct {
	Repo providerRepo.ProviderRepository
}

func (d *DefaultProviderDirectory) FindNearbyCandidates(ctx context.Context, origin models.GeoPoint, providerType models.ProviderType, excludeIDs []string, radiusKm float64) ([]models.ProviderRef, error) {
	providers, err := d.Repo.GetActiveByType(providerType)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve candidates: %w", err)
	}

	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	var refs []models.ProviderRef
	for _, p := range providers {
		if _, skip := excluded[p.ID]; skip {
			continue
		}
		distanceKm := haversine(origin.Lat, origin.Lng, p.Location.Lat, p.Location.Lng)
		if distanceKm > radiusKm {
			continue
		}
		refs = append(refs, models.ProviderRef{
			ID:           p.ID,
			Name:         p.Name,
			ProviderType: p.ProviderType,
			Rating:       p.Rating,
			DistanceKm:   distanceKm,
		})
	}

	// Ascending distance; ties broken by id for determinism.
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].DistanceKm != refs[j].DistanceKm {
			return refs[i].DistanceKm < refs[j].DistanceKm
		}
		return refs[i].ID < refs[j].ID
	})
	return refs, nil
}

func (d *DefaultProviderDirectory) ProviderExists(ctx context.Context, providerID string, providerType models.ProviderType) (bool, error) {
	p, err := d.Repo.GetByID(providerID)
	if err != nil {
		// Callers treat an unresolvable provider as unavailable either way;
		// keep a trace of the store failure behind that answer.
		utils.GetLogger().Warn("provider lookup failed",
			zap.String("providerID", providerID),
			zap.Error(err))
		return false, nil
	}
	return p.Active && p.ProviderType == providerType, nil
}

// haversine calculates the great-circle distance (in km) between two lat/lon points.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
