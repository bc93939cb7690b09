// Package geo provides great-circle distance helpers for building distance
// matrices from raw coordinates. Pure functions, no part of the search.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// DistanceMatrix builds the pairwise matrix in whole meters.
func DistanceMatrix(points []Point) [][]int64 {
	n := len(points)
	out := make([][]int64, n)
	for i := range out {
		out[i] = make([]int64, n)
		for j := range out[i] {
			if i == j {
				continue
			}
			out[i][j] = int64(HaversineMeters(points[i].Lat, points[i].Lng, points[j].Lat, points[j].Lng))
		}
	}
	return out
}
