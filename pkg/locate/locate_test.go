package locate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/manzanit0/whereabouts/pkg/exif"
	"github.com/manzanit0/whereabouts/pkg/locate"
)

func TestReconcile(t *testing.T) {
	testCases := []struct {
		desc     string
		meta     *exif.Metadata
		inferred *locate.Result
		want     *locate.Result
	}{
		{
			desc:     "camera coordinates fill in when the model found nothing",
			meta:     &exif.Metadata{Latitude: f(52.0), Longitude: f(4.0)},
			inferred: &locate.Result{},
			want:     &locate.Result{Latitude: f(52.0), Longitude: f(4.0)},
		},
		{
			desc:     "the model wins whenever it has an opinion",
			meta:     &exif.Metadata{Latitude: f(52.0), Longitude: f(4.0)},
			inferred: &locate.Result{Latitude: f(10.0), Longitude: f(20.0)},
			want:     &locate.Result{Latitude: f(10.0), Longitude: f(20.0)},
		},
		{
			desc:     "a lone camera latitude is never copied without its longitude",
			meta:     &exif.Metadata{Latitude: f(52.0)},
			inferred: &locate.Result{},
			want:     &locate.Result{},
		},
		{
			desc:     "no metadata leaves the model's answer untouched",
			meta:     nil,
			inferred: &locate.Result{City: "Paris", Confidence: f(90)},
			want:     &locate.Result{City: "Paris", Confidence: f(90)},
		},
		{
			desc:     "metadata without coordinates leaves everything untouched",
			meta:     &exif.Metadata{CameraMake: "Apple"},
			inferred: &locate.Result{Explanation: "no idea", Confidence: f(50)},
			want:     &locate.Result{Explanation: "no idea", Confidence: f(50)},
		},
		{
			desc: "non-coordinate fields pass through alongside the fallback",
			meta: &exif.Metadata{Latitude: f(52.0), Longitude: f(4.0)},
			inferred: &locate.Result{
				City:    "The Hague",
				Country: "Netherlands",
				Clues:   []string{"low brick houses", "cycle paths"},
			},
			want: &locate.Result{
				City:      "The Hague",
				Country:   "Netherlands",
				Clues:     []string{"low brick houses", "cycle paths"},
				Latitude:  f(52.0),
				Longitude: f(4.0),
			},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got := locate.Reconcile(tC.meta, tC.inferred)

			if diff := cmp.Diff(tC.want, got); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconcileDoesNotMutateItsInputs(t *testing.T) {
	meta := &exif.Metadata{Latitude: f(52.0), Longitude: f(4.0)}
	inferred := &locate.Result{Explanation: "coastline"}

	_ = locate.Reconcile(meta, inferred)

	if inferred.Latitude != nil {
		t.Error("the inferred result was mutated")
	}
}

func f(v float64) *float64 {
	return &v
}
