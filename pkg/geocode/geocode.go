// package geocode turns a coordinate pair back into place names. It fills in
// the city/country of a location estimate that only came with coordinates;
// it never overrides names another source already provided.
package geocode

type Client interface {
	ReverseGeocode(lat, lon float64) (*Location, error)
}

type Location struct {
	Latitude    float64
	Longitude   float64
	Name        string
	City        string
	Country     string
	CountryCode string
}
