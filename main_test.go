package main

import (
	"context"
	"errors"
	"testing"

	"github.com/manzanit0/whereabouts/pkg/geocode"
	"github.com/manzanit0/whereabouts/pkg/locate"
)

func TestAllowedExtension(t *testing.T) {
	testCases := []struct {
		desc     string
		filename string
		want     bool
	}{
		{desc: "lowercase jpg", filename: "holiday.jpg", want: true},
		{desc: "uppercase extension is normalised", filename: "HOLIDAY.JPEG", want: true},
		{desc: "png", filename: "screenshot.png", want: true},
		{desc: "webp", filename: "photo.webp", want: true},
		{desc: "gif is rejected", filename: "animation.gif", want: false},
		{desc: "no extension is rejected", filename: "photo", want: false},
		{desc: "extension hidden behind a valid one is rejected", filename: "photo.jpg.exe", want: false},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			if got := allowedExtension(tC.filename); got != tC.want {
				t.Errorf("allowedExtension(%q) = %v, expected %v", tC.filename, got, tC.want)
			}
		})
	}
}

type fakeGeocoder struct {
	loc   *geocode.Location
	err   error
	calls int
}

func (g *fakeGeocoder) ReverseGeocode(lat, lon float64) (*geocode.Location, error) {
	g.calls++
	return g.loc, g.err
}

func TestEnrichLocation(t *testing.T) {
	t.Run("fills missing place names from coordinates", func(t *testing.T) {
		g := &fakeGeocoder{loc: &geocode.Location{Name: "The Hague, Netherlands", City: "The Hague", Country: "Netherlands"}}
		r := &locate.Result{Latitude: f(52.08), Longitude: f(4.3)}

		enrichLocation(context.Background(), g, r)

		if r.City != "The Hague" || r.Country != "Netherlands" {
			t.Errorf("expected place names to be filled in, got %+v", r)
		}
	})

	t.Run("never overwrites what the model already said", func(t *testing.T) {
		g := &fakeGeocoder{loc: &geocode.Location{City: "Rotterdam", Country: "Netherlands"}}
		r := &locate.Result{Latitude: f(52.08), Longitude: f(4.3), City: "The Hague", Country: "Netherlands"}

		enrichLocation(context.Background(), g, r)

		if g.calls != 0 {
			t.Error("expected no geocoding call when the names are already present")
		}

		if r.City != "The Hague" {
			t.Errorf("got city %q, expected %q", r.City, "The Hague")
		}
	})

	t.Run("does nothing without a coordinate pair", func(t *testing.T) {
		g := &fakeGeocoder{}
		r := &locate.Result{Latitude: f(52.08)}

		enrichLocation(context.Background(), g, r)

		if g.calls != 0 {
			t.Error("expected no geocoding call without both coordinates")
		}
	})

	t.Run("a geocoding failure leaves the result untouched", func(t *testing.T) {
		g := &fakeGeocoder{err: errors.New("nominatim is having a day")}
		r := &locate.Result{Latitude: f(52.08), Longitude: f(4.3)}

		enrichLocation(context.Background(), g, r)

		if r.City != "" || r.Country != "" {
			t.Errorf("expected the result untouched on failure, got %+v", r)
		}
	})
}

func f(v float64) *float64 {
	return &v
}
