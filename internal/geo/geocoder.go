package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"auxchat_backend/internal/cache"
	"auxchat_backend/internal/logger"
)

var ErrGeocoderUnavailable = errors.New("geocoder unavailable")

// Place - результат обратного геокодирования
type Place struct {
	Lat         float64        `json:"lat"`
	Lon         float64        `json:"lon"`
	City        string         `json:"city"`
	DisplayName string         `json:"display_name"`
	Address     datatypes.JSON `json:"address,omitempty"`
}

type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

// NominatimClient - клиент reverse API в формате Nominatim
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewNominatimClient(baseURL, userAgent string) *NominatimClient {
	return &NominatimClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResponse struct {
	DisplayName string                     `json:"display_name"`
	Address     map[string]json.RawMessage `json:"address"`
	Error       string                     `json:"error"`
}

// порядок, в котором берется название населенного пункта
var cityKeys = []string{"city", "town", "village", "municipality", "state"}

func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("accept-language", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocoderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGeocoderUnavailable, resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrGeocoderUnavailable, err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrGeocoderUnavailable, body.Error)
	}

	place := &Place{
		Lat:         lat,
		Lon:         lon,
		DisplayName: body.DisplayName,
		City:        pickCity(body.Address),
	}
	if len(body.Address) > 0 {
		raw, err := json.Marshal(body.Address)
		if err == nil {
			place.Address = datatypes.JSON(raw)
		}
	}
	return place, nil
}

func pickCity(address map[string]json.RawMessage) string {
	for _, key := range cityKeys {
		raw, ok := address[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// CachedGeocoder кэширует ответы по координатам, округленным до 3 знаков (~100 м)
type CachedGeocoder struct {
	next  Geocoder
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedGeocoder(next Geocoder, c cache.Cache, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: c, ttl: ttl}
}

func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("geo:%.3f:%.3f", lat, lon)
}

func (g *CachedGeocoder) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	key := CacheKey(lat, lon)

	if raw, ok, err := g.cache.Get(ctx, key); err != nil {
		logger.CtxWarn(ctx, "geocode cache read failed", "error", err.Error())
	} else if ok {
		var place Place
		if err := json.Unmarshal([]byte(raw), &place); err == nil {
			place.Lat, place.Lon = lat, lon
			return &place, nil
		}
	}

	place, err := g.next.Reverse(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(place); err == nil {
		if err := g.cache.Set(ctx, key, string(raw), g.ttl); err != nil {
			logger.CtxWarn(ctx, "geocode cache write failed", "error", err.Error())
		}
	}
	return place, nil
}
