// package exif pulls the small set of photo attributes we care about out of
// an image's embedded tag directories: GPS position, camera, capture date and
// dimensions. Extraction is strictly best-effort; a photo without metadata is
// a perfectly fine photo.
package exif

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Metadata holds everything extracted from a single photo. Zero values mean
// "the photo didn't say": a nil coordinate, an empty string, a zero time.
type Metadata struct {
	Latitude    *float64
	Longitude   *float64
	CameraMake  string
	CameraModel string
	DateTaken   time.Time
	Width       int
	Height      int
	Orientation string
	RawTags     map[string]string
}

// HasCoordinates reports whether the camera wrote a usable GPS position.
// Coordinates only count as a pair; a latitude without a longitude is noise.
func (m *Metadata) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// Extract reads the tag directories of an image and returns whatever typed
// metadata could be recovered. It never fails: when the image is malformed or
// carries no metadata, the returned record simply has no typed fields and an
// "Error" entry in RawTags explaining why.
func Extract(data []byte) *Metadata {
	m := &Metadata{RawTags: map[string]string{}}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		m.RawTags["Error"] = err.Error()
		return m
	}

	if err := x.Walk(tagCollector{m.RawTags}); err != nil {
		m.RawTags["Error"] = err.Error()
	}

	m.Latitude = coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	m.Longitude = coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	m.CameraMake = stringTag(x, exif.Make)
	m.CameraModel = stringTag(x, exif.Model)
	m.DateTaken = dateTag(x, exif.DateTimeOriginal, exif.DateTime)
	m.Width = intTag(x, exif.PixelXDimension, exif.ImageWidth)
	m.Height = intTag(x, exif.PixelYDimension, exif.ImageLength)

	if tag, err := x.Get(exif.Orientation); err == nil {
		m.Orientation = tag.String()
	}

	return m
}

// tagCollector copies every tag the walker visits into the raw map, keyed by
// its canonical name. Later occurrences overwrite earlier ones.
type tagCollector struct {
	tags map[string]string
}

func (c tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	switch name {
	case exif.GPSLatitude, exif.GPSLongitude:
		c.tags[string(name)] = sexagesimal(tag)
	default:
		if s, err := tag.StringVal(); err == nil {
			c.tags[string(name)] = s
		} else {
			c.tags[string(name)] = tag.String()
		}
	}

	return nil
}

// sexagesimal renders a GPS rational triple the way a human would read it,
// e.g. `52° 5' 0.00"`.
func sexagesimal(tag *tiff.Tag) string {
	deg := ratFloat(tag, 0)
	min := ratFloat(tag, 1)
	sec := ratFloat(tag, 2)
	return fmt.Sprintf("%g° %g' %.2f\"", deg, min, sec)
}

func ratFloat(tag *tiff.Tag, i int) float64 {
	num, den, err := tag.Rat2(i)
	if err != nil || den == 0 {
		return 0
	}

	return float64(num) / float64(den)
}

func coordinate(x *exif.Exif, field, refField exif.FieldName) *float64 {
	tag, err := x.Get(field)
	if err != nil {
		return nil
	}

	var ref string
	if refTag, err := x.Get(refField); err == nil {
		ref, _ = refTag.StringVal()
	}

	return ParseCoordinate(sexagesimal(tag), ref)
}

// ParseCoordinate decodes a human-readable coordinate rendering into signed
// decimal degrees. The expected shape is sexagesimal, `52° 5' 0.00"`, but a
// plain decimal number is accepted as a fallback. A ref of "S" or "W" negates
// the sexagesimal value. Returns nil when the rendering is not a coordinate.
func ParseCoordinate(rendering, ref string) *float64 {
	parts := strings.FieldsFunc(rendering, func(r rune) bool {
		return r == '°' || r == '\'' || r == '"' || unicode.IsSpace(r)
	})

	if len(parts) >= 3 {
		degrees, errD := strconv.ParseFloat(parts[0], 64)
		minutes, errM := strconv.ParseFloat(parts[1], 64)
		seconds, errS := strconv.ParseFloat(parts[2], 64)
		if errD == nil && errM == nil && errS == nil {
			decimal := degrees + minutes/60 + seconds/3600
			if ref == "S" || ref == "W" {
				decimal = -decimal
			}

			return &decimal
		}
	}

	// Some writers store the coordinate as a single decimal number.
	if v, err := strconv.ParseFloat(strings.TrimSpace(rendering), 64); err == nil {
		return &v
	}

	return nil
}

var dateLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate decodes a capture-date tag rendering. Returns the zero time when
// no known layout matches; a half-guessed date is worse than none.
func ParseDate(rendering string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(rendering)); err == nil {
			return t
		}
	}

	return time.Time{}
}

func stringTag(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}

	s, err := tag.StringVal()
	if err != nil {
		return ""
	}

	return s
}

func dateTag(x *exif.Exif, fields ...exif.FieldName) time.Time {
	for _, field := range fields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}

		s, err := tag.StringVal()
		if err != nil {
			continue
		}

		if t := ParseDate(s); !t.IsZero() {
			return t
		}
	}

	return time.Time{}
}

func intTag(x *exif.Exif, fields ...exif.FieldName) int {
	for _, field := range fields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}

		if v, err := tag.Int(0); err == nil && v > 0 {
			return v
		}
	}

	return 0
}
