// package locate holds the location-estimate model shared by the inference
// client and the web front end, plus the rule that merges the model's answer
// with the camera's own GPS tags.
package locate

import "github.com/manzanit0/whereabouts/pkg/exif"

// Result is a single location estimate. Every field is optional; a fully
// empty Result means "no idea". When ErrorMessage is set the estimate never
// got made and the remaining fields carry nothing.
//
// The field names double as the JSON schema the vision model is asked to
// answer in, so renaming one here changes the wire contract.
type Result struct {
	LocationName string   `json:"locationName,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Country      string   `json:"country,omitempty"`
	City         string   `json:"city,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Clues        []string `json:"clues,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

// Reconcile merges the camera's GPS tags into the model's answer. The model
// wins whenever it has an opinion; only when it returned no latitude at all
// do the photo's own coordinates fill the gap, and then always as a pair --
// a latitude is meaningless without its longitude. Neither input is mutated.
func Reconcile(meta *exif.Metadata, inferred *Result) *Result {
	out := *inferred

	if out.Latitude == nil && meta != nil && meta.HasCoordinates() {
		out.Latitude = meta.Latitude
		out.Longitude = meta.Longitude
	}

	return &out
}
