package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/cache"
)

func TestNominatimClient_Reverse(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "55.75", r.URL.Query().Get("lat"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Тверская, Москва","address":{"town":"Химки","state":"Московская область"}}`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "AuxChat/test")
	place, err := client.Reverse(context.Background(), 55.75, 37.61)
	require.NoError(t, err)

	assert.Equal(t, "AuxChat/test", gotUA)
	assert.Equal(t, "Химки", place.City, "town имеет приоритет над state")
	assert.Contains(t, string(place.Address), "Московская область")
}

func TestNominatimClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewNominatimClient(srv.URL, "ua").Reverse(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrGeocoderUnavailable)
}

type countingGeocoder struct {
	calls atomic.Int32
}

func (g *countingGeocoder) Reverse(_ context.Context, lat, lon float64) (*Place, error) {
	g.calls.Add(1)
	return &Place{Lat: lat, Lon: lon, City: "Казань"}, nil
}

func TestCachedGeocoder_UsesCache(t *testing.T) {
	inner := &countingGeocoder{}
	g := NewCachedGeocoder(inner, cache.NewMemoryCache(), time.Hour)

	p1, err := g.Reverse(context.Background(), 55.79612, 49.10641)
	require.NoError(t, err)
	p2, err := g.Reverse(context.Background(), 55.79608, 49.10644)
	require.NoError(t, err)

	assert.Equal(t, "Казань", p1.City)
	assert.Equal(t, "Казань", p2.City)
	assert.Equal(t, int32(1), inner.calls.Load(), "соседние координаты берутся из кэша")
}
