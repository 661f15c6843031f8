package services

import (
	"context"
	"encoding/json"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/geo"
	"auxchat_backend/pkg/apperrors"
)

type GeoService interface {
	Reverse(ctx context.Context, lat, lon float64) (*dto.GeocodeResponse, error)
}

type GeoServiceImpl struct {
	geocoder geo.Geocoder
}

func NewGeoService(geocoder geo.Geocoder) GeoService {
	return &GeoServiceImpl{geocoder: geocoder}
}

func (s *GeoServiceImpl) Reverse(ctx context.Context, lat, lon float64) (*dto.GeocodeResponse, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return nil, apperrors.ValidationError(map[string]string{"lat": "Coordinates are out of range"})
	}
	place, err := s.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		return nil, apperrors.ExternalServiceError(err, "geo", "Geocoding unavailable")
	}
	return &dto.GeocodeResponse{
		Latitude:    lat,
		Longitude:   lon,
		City:        place.City,
		DisplayName: place.DisplayName,
		Address:     json.RawMessage(place.Address),
	}, nil
}
