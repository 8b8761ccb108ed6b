package geocode

import (
	"fmt"

	"github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
)

func NewOpenstreetmapClient() *oc {
	geocoder := openstreetmap.Geocoder()
	return &oc{geocoder: geocoder}
}

type oc struct {
	geocoder geo.Geocoder
}

var _ Client = (*oc)(nil)

func (c *oc) ReverseGeocode(lat, lon float64) (*Location, error) {
	address, err := c.geocoder.ReverseGeocode(lat, lon)
	if err != nil {
		return nil, err
	}

	if address == nil {
		return nil, fmt.Errorf("unable to reverse geocode location")
	}

	return &Location{
		Latitude:    lat,
		Longitude:   lon,
		Name:        fmt.Sprintf("%s, %s", address.City, address.Country),
		City:        address.City,
		Country:     address.Country,
		CountryCode: address.CountryCode,
	}, nil
}
