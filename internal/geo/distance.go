package geo

import "math"

// EarthRadiusKm - средний радиус Земли
const EarthRadiusKm = 6371.0

type Point struct {
	Lat float64
	Lon float64
}

// HaversineKm - расстояние по большой окружности в километрах
func HaversineKm(a, b Point) float64 {
	if a == b {
		return 0
	}

	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// ошибки округления могут дать h чуть больше 1
	h = math.Min(1, h)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Box - прямоугольник, гарантированно содержащий круг радиуса radiusKm
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

func BoundingBox(center Point, radiusKm float64) Box {
	if radiusKm <= 0 {
		return Box{MinLat: center.Lat, MaxLat: center.Lat, MinLon: center.Lon, MaxLon: center.Lon}
	}

	dLat := radiusKm / EarthRadiusKm * 180 / math.Pi
	box := Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	// у полюсов долготный фильтр бесполезен
	cosLat := math.Cos(toRad(center.Lat))
	if box.MinLat > -90 && box.MaxLat < 90 && cosLat > 1e-9 {
		dLon := dLat / cosLat
		if dLon < 180 && center.Lon-dLon >= -180 && center.Lon+dLon <= 180 {
			box.MinLon = center.Lon - dLon
			box.MaxLon = center.Lon + dLon
		}
	}
	return box
}

func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
